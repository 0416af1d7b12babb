package service

import (
	"context"

	"rawlogin/internal/app/auth/entity"
	"rawlogin/internal/app/auth/util"
)

// MessagePublisher интерфейс для публикации событий аудита (Kafka).
// Используется для dependency injection и упрощения тестирования.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.LoginResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*util.TokenClaims, error)
	GetCurrentUser(ctx context.Context, userID int) (*entity.UserWithRoles, error)
}

type UserServiceInterface interface {
	GetByID(ctx context.Context, id int) (*entity.UserWithRoles, error)
	List(ctx context.Context) ([]entity.UserWithRoles, error)
	Search(ctx context.Context, filter entity.UserSearchFilter) ([]entity.UserWithRoles, error)
	Create(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error)
	Update(ctx context.Context, id int, req *entity.UpdateUserRequest) (*entity.User, error)
	ChangePassword(ctx context.Context, id int, oldPassword, newPassword string) error
	Delete(ctx context.Context, id int) error
	BatchDelete(ctx context.Context, ids []int) error
	AssignRoles(ctx context.Context, userID int, roleIDs []int) error
	GetUserRoles(ctx context.Context, userID int) ([]entity.Role, error)
}
