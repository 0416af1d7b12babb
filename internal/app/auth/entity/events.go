package entity

import "time"

// Типы событий аудита, публикуемых в топик auth_events
const (
	EventUserCreated      = "USER_CREATED"
	EventUserUpdated      = "USER_UPDATED"
	EventUserDeleted      = "USER_DELETED"
	EventUserRolesChanged = "USER_ROLES_CHANGED"
	EventRoleCreated      = "ROLE_CREATED"
	EventRoleUpdated      = "ROLE_UPDATED"
	EventRoleDeleted      = "ROLE_DELETED"
)

// AuthEvent - событие аудита об изменении пользователей и ролей.
// Ключом сообщения служит ID пользователя или роли для сохранения порядка.
type AuthEvent struct {
	Type      string    `json:"type"`
	UserID    int       `json:"user_id,omitempty"`
	RoleID    int       `json:"role_id,omitempty"`
	RoleIDs   []int     `json:"role_ids,omitempty"` // для USER_ROLES_CHANGED
	Timestamp time.Time `json:"timestamp"`
}
