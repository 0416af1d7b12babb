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
	"rawlogin/pkg/logger"

	"github.com/jackc/pgx/v5"
)

// RoleService обрабатывает бизнес-логику работы с ролями.
// Встроенные роли (ADMIN, USER) защищены от любых изменений.
type RoleService struct {
	roleRepo  repository.RoleRepository
	publisher MessagePublisher
}

// NewRoleService создает новый сервис ролей
func NewRoleService(roleRepo repository.RoleRepository, publisher MessagePublisher) *RoleService {
	return &RoleService{
		roleRepo:  roleRepo,
		publisher: publisher,
	}
}

// GetByID получает роль по ID
func (s *RoleService) GetByID(ctx context.Context, id int) (*entity.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return role, nil
}

// GetByCode получает роль по коду
func (s *RoleService) GetByCode(ctx context.Context, code string) (*entity.Role, error) {
	role, err := s.roleRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return role, nil
}

// List получает все роли
func (s *RoleService) List(ctx context.Context) ([]entity.Role, error) {
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

// Search ищет роли по фильтру
func (s *RoleService) Search(ctx context.Context, filter entity.RoleSearchFilter) ([]entity.Role, error) {
	roles, err := s.roleRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search roles: %w", err)
	}

	return roles, nil
}

// Create создает новую роль. Код должен быть уникален,
// создать встроенную роль через этот путь нельзя.
func (s *RoleService) Create(ctx context.Context, req *entity.CreateRoleRequest) (*entity.Role, error) {
	existing, err := s.roleRepo.GetByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check role code: %w", err)
	}
	if existing != nil {
		return nil, ErrRoleCodeExists
	}

	status := entity.StatusEnabled
	if req.Status != nil {
		status = *req.Status
	}

	role := &entity.Role{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		BuiltIn:     false,
	}

	if role.IsBuiltIn() {
		return nil, ErrBuiltInRole
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.publishEvent(ctx, entity.AuthEvent{
		Type:      entity.EventRoleCreated,
		RoleID:    role.ID,
		Timestamp: time.Now(),
	})

	return role, nil
}

// Update обновляет роль. Встроенные роли изменять нельзя, код неизменяем.
func (s *RoleService) Update(ctx context.Context, id int, req *entity.UpdateRoleRequest) (*entity.Role, error) {
	role, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role.IsBuiltIn() {
		return nil, ErrBuiltInRole
	}

	if req.Name != "" {
		role.Name = req.Name
	}
	if req.Description != "" {
		role.Description = req.Description
	}
	if req.Status != nil {
		role.Status = *req.Status
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.publishEvent(ctx, entity.AuthEvent{
		Type:      entity.EventRoleUpdated,
		RoleID:    role.ID,
		Timestamp: time.Now(),
	})

	return role, nil
}

// Delete удаляет роль вместе с её связями. Встроенные роли удалять нельзя.
func (s *RoleService) Delete(ctx context.Context, id int) error {
	role, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if role.IsBuiltIn() {
		return ErrBuiltInRole
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("failed to delete role: %w", err)
	}

	s.publishEvent(ctx, entity.AuthEvent{
		Type:      entity.EventRoleDeleted,
		RoleID:    id,
		Timestamp: time.Now(),
	})

	return nil
}

// BatchDelete удаляет несколько ролей. Все роли проверяются до удаления:
// несуществующая или встроенная роль в списке отменяет операцию целиком.
func (s *RoleService) BatchDelete(ctx context.Context, ids []int) error {
	for _, id := range ids {
		role, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if role.IsBuiltIn() {
			return ErrBuiltInRole
		}
	}

	if err := s.roleRepo.BatchDelete(ctx, ids); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("failed to batch delete roles: %w", err)
	}

	for _, id := range ids {
		s.publishEvent(ctx, entity.AuthEvent{
			Type:      entity.EventRoleDeleted,
			RoleID:    id,
			Timestamp: time.Now(),
		})
	}

	return nil
}

// GetPermissions получает разрешения роли
func (s *RoleService) GetPermissions(ctx context.Context, roleID int) ([]entity.Permission, error) {
	if _, err := s.GetByID(ctx, roleID); err != nil {
		return nil, err
	}

	permissions, err := s.roleRepo.GetPermissionsByRoleID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions: %w", err)
	}

	return permissions, nil
}

// ListPermissions получает каталог всех разрешений
func (s *RoleService) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	permissions, err := s.roleRepo.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return permissions, nil
}

// GetRoleUsers получает ID пользователей роли
func (s *RoleService) GetRoleUsers(ctx context.Context, roleID int) ([]int, error) {
	if _, err := s.GetByID(ctx, roleID); err != nil {
		return nil, err
	}

	userIDs, err := s.roleRepo.GetUserIDsByRoleID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role users: %w", err)
	}

	return userIDs, nil
}

// publishEvent отправляет событие аудита, не прерывая операцию при сбое
func (s *RoleService) publishEvent(ctx context.Context, event entity.AuthEvent) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("type", event.Type).Msg("failed to marshal auth event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, strconv.Itoa(event.RoleID), payload); err != nil {
		logger.Error().Err(err).Str("type", event.Type).Msg("failed to publish auth event")
	}
}
