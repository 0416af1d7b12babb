package repository

import (
	"context"
	"time"

	"rawlogin/internal/app/auth/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id int) error
	BatchDelete(ctx context.Context, ids []int) error
	List(ctx context.Context) ([]entity.User, error)
	Search(ctx context.Context, filter entity.UserSearchFilter) ([]entity.User, error)
}

// RoleRepository покрывает роли, разрешения и связи многие-ко-многим
// (роль-разрешение и пользователь-роль)
type RoleRepository interface {
	GetByID(ctx context.Context, id int) (*entity.Role, error)
	GetByCode(ctx context.Context, code string) (*entity.Role, error)
	List(ctx context.Context) ([]entity.Role, error)
	Search(ctx context.Context, filter entity.RoleSearchFilter) ([]entity.Role, error)
	Create(ctx context.Context, role *entity.Role) error
	Update(ctx context.Context, role *entity.Role) error
	Delete(ctx context.Context, id int) error
	BatchDelete(ctx context.Context, ids []int) error

	GetPermissionsByRoleID(ctx context.Context, roleID int) ([]entity.Permission, error)
	GetPermissionByCode(ctx context.Context, code string) (*entity.Permission, error)
	ListPermissions(ctx context.Context) ([]entity.Permission, error)
	AddRolePermission(ctx context.Context, roleID, permissionID int) error
	RemoveRolePermission(ctx context.Context, roleID, permissionID int) error

	GetRolesByUserID(ctx context.Context, userID int) ([]entity.Role, error)
	GetUserIDsByRoleID(ctx context.Context, roleID int) ([]int, error)
	ReplaceUserRoles(ctx context.Context, userID int, roleIDs []int, primaryRole string) error
}

// TokenRepository - черный список отозванных токенов.
// Истекшие записи вычищаются по TTL (Redis) или периодической очисткой (Postgres).
type TokenRepository interface {
	AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	CleanupExpiredTokens(ctx context.Context) error
}
