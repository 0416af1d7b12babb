package entity

import (
	"strings"
	"time"
)

// Коды встроенных ролей. Встроенные роли нельзя изменять и удалять,
// ADMIN дополнительно обходит все проверки разрешений.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Статусы пользователей и ролей
const (
	StatusDisabled = 0
	StatusEnabled  = 1
)

// User представляет пользователя в системе
type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email,omitempty" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // не возвращаем в JSON
	Role         string    `json:"role" db:"role"`       // основная роль (ADMIN приоритетнее остальных)
	Status       int       `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin проверяет, является ли основная роль пользователя ADMIN
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive проверяет, активен ли пользователь
func (u *User) IsActive() bool {
	return u.Status == StatusEnabled
}

// Role представляет роль (встроенную или пользовательскую)
type Role struct {
	ID          int    `json:"id" db:"id"`
	Code        string `json:"code" db:"code"` // уникальный бизнес-ключ, например "ADMIN"
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	Status      int    `json:"status" db:"status"`
	BuiltIn     bool   `json:"built_in" db:"built_in"`
}

// IsBuiltIn проверяет, является ли роль встроенной.
// Проверяем и флаг, и код: встроенность определяется кодом ADMIN/USER,
// даже если флаг в хранилище не выставлен.
func (r *Role) IsBuiltIn() bool {
	return r.BuiltIn || r.Code == RoleAdmin || r.Code == RoleUser
}

// IsAdmin проверяет, является ли роль системным администратором
func (r *Role) IsAdmin() bool {
	return r.Code == RoleAdmin
}

// Permission представляет разрешение (например, sys:user:edit)
type Permission struct {
	ID          int    `json:"id" db:"id"`
	Code        string `json:"code" db:"code"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

// Category возвращает категорию разрешения - первый сегмент кода.
// Для "sys:user:edit" категория "sys".
func (p *Permission) Category() string {
	if idx := strings.Index(p.Code, ":"); idx > 0 {
		return p.Code[:idx]
	}
	return p.Code
}

// UserWithRoles содержит пользователя вместе с полным набором его ролей
type UserWithRoles struct {
	User
	Roles []Role `json:"roles"`
}

// BlacklistedToken хранит отозванный до истечения срока токен
type BlacklistedToken struct {
	ID        int       `json:"id" db:"id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PrimaryRole вычисляет основную роль по набору назначенных ролей:
// ADMIN имеет приоритет, иначе первая назначенная роль, иначе USER.
func PrimaryRole(roles []Role) string {
	for _, r := range roles {
		if r.Code == RoleAdmin {
			return RoleAdmin
		}
	}
	if len(roles) > 0 {
		return roles[0].Code
	}
	return RoleUser
}
