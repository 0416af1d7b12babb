package service

import (
	"context"
	"errors"
	"fmt"

	"rawlogin/internal/app/auth/entity"
	"rawlogin/internal/app/auth/repository"

	"github.com/jackc/pgx/v5"
)

// PermissionResolver решает, обладает ли принципал заданным разрешением.
// Единственное место в системе, где действует правило обхода для ADMIN -
// обработчики и middleware не дублируют сравнение ролей.
type PermissionResolver struct {
	roleRepo repository.RoleRepository
}

// NewPermissionResolver создает новый резолвер разрешений
func NewPermissionResolver(roleRepo repository.RoleRepository) *PermissionResolver {
	return &PermissionResolver{
		roleRepo: roleRepo,
	}
}

// HasPermission проверяет, дает ли набор ролей разрешение permissionCode.
// ADMIN в наборе дает любое разрешение, включая несуществующие коды.
// Встроенные роли не ищутся в таблице связей: USER сам по себе прав не дает.
// Роль без связей имеет ноль разрешений - это не ошибка.
func (r *PermissionResolver) HasPermission(ctx context.Context, roles []entity.Role, permissionCode string) (bool, error) {
	for _, role := range roles {
		if role.IsAdmin() {
			return true, nil
		}
	}

	for _, role := range roles {
		if role.IsBuiltIn() {
			continue
		}

		permissions, err := r.roleRepo.GetPermissionsByRoleID(ctx, role.ID)
		if err != nil {
			return false, fmt.Errorf("failed to get permissions for role %d: %w", role.ID, err)
		}

		for _, p := range permissions {
			if p.Code == permissionCode {
				return true, nil
			}
		}
	}

	return false, nil
}

// AddPermission добавляет роли разрешение по коду.
// Повторное добавление - успешный no-op. Встроенные роли менять нельзя.
func (r *PermissionResolver) AddPermission(ctx context.Context, roleID int, permissionCode string) error {
	role, permission, err := r.resolveEdge(ctx, roleID, permissionCode)
	if err != nil {
		return err
	}

	if err := r.roleRepo.AddRolePermission(ctx, role.ID, permission.ID); err != nil {
		return fmt.Errorf("failed to add permission: %w", err)
	}

	return nil
}

// RemovePermission снимает с роли разрешение по коду.
// Удаление отсутствующей связи - успешный no-op. Встроенные роли менять нельзя.
func (r *PermissionResolver) RemovePermission(ctx context.Context, roleID int, permissionCode string) error {
	role, permission, err := r.resolveEdge(ctx, roleID, permissionCode)
	if err != nil {
		return err
	}

	if err := r.roleRepo.RemoveRolePermission(ctx, role.ID, permission.ID); err != nil {
		return fmt.Errorf("failed to remove permission: %w", err)
	}

	return nil
}

// resolveEdge проверяет существование роли и разрешения и защиту встроенных ролей
func (r *PermissionResolver) resolveEdge(ctx context.Context, roleID int, permissionCode string) (*entity.Role, *entity.Permission, error) {
	role, err := r.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrRoleNotFound
		}
		return nil, nil, fmt.Errorf("failed to get role: %w", err)
	}

	if role.IsBuiltIn() {
		return nil, nil, ErrBuiltInRole
	}

	permission, err := r.roleRepo.GetPermissionByCode(ctx, permissionCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrPermissionNotFound
		}
		return nil, nil, fmt.Errorf("failed to get permission: %w", err)
	}

	return role, permission, nil
}
