package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"rawlogin/internal/app/auth/entity"
	"rawlogin/internal/app/auth/repository"
	"rawlogin/internal/app/auth/util"
	"rawlogin/pkg/logger"

	"github.com/jackc/pgx/v5"
)

// UserService обрабатывает бизнес-логику работы с пользователями
type UserService struct {
	userRepo  repository.UserRepository
	roleRepo  repository.RoleRepository
	publisher MessagePublisher
}

// NewUserService создает новый сервис пользователей
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	publisher MessagePublisher,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		publisher: publisher,
	}
}

// GetByID получает пользователя с его ролями
func (s *UserService) GetByID(ctx context.Context, id int) (*entity.UserWithRoles, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := s.roleRepo.GetRolesByUserID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	return &entity.UserWithRoles{
		User:  *user,
		Roles: roles,
	}, nil
}

// List получает список всех пользователей с ролями
func (s *UserService) List(ctx context.Context) ([]entity.UserWithRoles, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return s.attachRoles(ctx, users)
}

// Search ищет пользователей по фильтру (имя, email, статус,
// постраничная выборка) и подгружает их роли
func (s *UserService) Search(ctx context.Context, filter entity.UserSearchFilter) ([]entity.UserWithRoles, error) {
	users, err := s.userRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return s.attachRoles(ctx, users)
}

func (s *UserService) attachRoles(ctx context.Context, users []entity.User) ([]entity.UserWithRoles, error) {
	result := make([]entity.UserWithRoles, 0, len(users))
	for _, user := range users {
		roles, err := s.roleRepo.GetRolesByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get roles for user %d: %w", user.ID, err)
		}

		result = append(result, entity.UserWithRoles{
			User:  user,
			Roles: roles,
		})
	}

	return result, nil
}

// Create создает пользователя от имени администратора
func (s *UserService) Create(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error) {
	existingUser, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserExists
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	status := entity.StatusEnabled
	if req.Status != nil {
		status = *req.Status
	}

	user := &entity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         entity.RoleUser,
		Status:       status,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.publishEvent(ctx, entity.AuthEvent{
		Type:      entity.EventUserCreated,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})

	return user, nil
}

// Update обновляет данные пользователя (имя, email, статус).
// Роли меняются только через AssignRoles.
func (s *UserService) Update(ctx context.Context, id int, req *entity.UpdateUserRequest) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Username != "" && req.Username != user.Username {
		existing, err := s.userRepo.GetByUsername(ctx, req.Username)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if existing != nil {
			return nil, ErrUserExists
		}
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.publishEvent(ctx, entity.AuthEvent{
		Type:      entity.EventUserUpdated,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})

	return user, nil
}

// ChangePassword обновляет пароль после проверки старого
func (s *UserService) ChangePassword(ctx context.Context, id int, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	newPasswordHash, err := util.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = newPasswordHash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}

	return nil
}

// Delete удаляет пользователя
func (s *UserService) Delete(ctx context.Context, id int) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.publishEvent(ctx, entity.AuthEvent{
		Type:      entity.EventUserDeleted,
		UserID:    id,
		Timestamp: time.Now(),
	})

	return nil
}

// BatchDelete удаляет несколько пользователей. Всё или ничего:
// если хотя бы один ID не существует, состояние не меняется.
func (s *UserService) BatchDelete(ctx context.Context, ids []int) error {
	if err := s.userRepo.BatchDelete(ctx, ids); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to batch delete users: %w", err)
	}

	for _, id := range ids {
		s.publishEvent(ctx, entity.AuthEvent{
			Type:      entity.EventUserDeleted,
			UserID:    id,
			Timestamp: time.Now(),
		})
	}

	return nil
}

// AssignRoles полностью заменяет набор ролей пользователя.
// Основная роль пересчитывается: ADMIN приоритетнее, иначе первая
// назначенная, при пустом наборе - USER.
func (s *UserService) AssignRoles(ctx context.Context, userID int, roleIDs []int) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	roles := make([]entity.Role, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		role, err := s.roleRepo.GetByID(ctx, roleID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("failed to get role %d: %w", roleID, err)
		}
		roles = append(roles, *role)
	}

	primaryRole := entity.PrimaryRole(roles)

	if err := s.roleRepo.ReplaceUserRoles(ctx, userID, roleIDs, primaryRole); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to replace user roles: %w", err)
	}

	s.publishEvent(ctx, entity.AuthEvent{
		Type:      entity.EventUserRolesChanged,
		UserID:    userID,
		RoleIDs:   roleIDs,
		Timestamp: time.Now(),
	})

	return nil
}

// GetUserRoles получает роли пользователя
func (s *UserService) GetUserRoles(ctx context.Context, userID int) ([]entity.Role, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := s.roleRepo.GetRolesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	return roles, nil
}

// publishEvent отправляет событие аудита, не прерывая операцию при сбое
func (s *UserService) publishEvent(ctx context.Context, event entity.AuthEvent) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("type", event.Type).Msg("failed to marshal auth event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, strconv.Itoa(event.UserID), payload); err != nil {
		logger.Error().Err(err).Str("type", event.Type).Msg("failed to publish auth event")
	}
}
