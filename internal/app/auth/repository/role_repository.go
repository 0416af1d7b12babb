package repository

import (
	"context"
	"fmt"
	"strings"

	"rawlogin/internal/app/auth/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type roleRepository struct {
	db *pgxpool.Pool
}

// NewRoleRepository создает новый репозиторий ролей
func NewRoleRepository(db *pgxpool.Pool) RoleRepository {
	return &roleRepository{db: db}
}

// GetByID получает роль по ID
func (r *roleRepository) GetByID(ctx context.Context, id int) (*entity.Role, error) {
	query := `SELECT id, code, name, description, status, built_in FROM roles WHERE id = $1`

	var role entity.Role
	err := r.db.QueryRow(ctx, query, id).Scan(
		&role.ID, &role.Code, &role.Name, &role.Description, &role.Status, &role.BuiltIn,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get role by id: %w", err)
	}

	return &role, nil
}

// GetByCode получает роль по коду
func (r *roleRepository) GetByCode(ctx context.Context, code string) (*entity.Role, error) {
	query := `SELECT id, code, name, description, status, built_in FROM roles WHERE code = $1`

	var role entity.Role
	err := r.db.QueryRow(ctx, query, code).Scan(
		&role.ID, &role.Code, &role.Name, &role.Description, &role.Status, &role.BuiltIn,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get role by code: %w", err)
	}

	return &role, nil
}

// List получает все роли
func (r *roleRepository) List(ctx context.Context) ([]entity.Role, error) {
	query := `SELECT id, code, name, description, status, built_in FROM roles ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	return scanRoles(rows)
}

// Search ищет роли по необязательным условиям
func (r *roleRepository) Search(ctx context.Context, filter entity.RoleSearchFilter) ([]entity.Role, error) {
	var conditions []string
	var args []interface{}

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Code != "" {
		args = append(args, "%"+filter.Code+"%")
		conditions = append(conditions, fmt.Sprintf("code ILIKE $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.BuiltIn != nil {
		args = append(args, *filter.BuiltIn)
		conditions = append(conditions, fmt.Sprintf("built_in = $%d", len(args)))
	}

	query := `SELECT id, code, name, description, status, built_in FROM roles`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search roles: %w", err)
	}
	defer rows.Close()

	return scanRoles(rows)
}

// Create создает новую роль, ID генерируется базой
func (r *roleRepository) Create(ctx context.Context, role *entity.Role) error {
	query := `
		INSERT INTO roles (code, name, description, status, built_in)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx, query,
		role.Code, role.Name, role.Description, role.Status, role.BuiltIn,
	).Scan(&role.ID)

	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	return nil
}

// Update обновляет роль. Код роли неизменяем и не обновляется.
func (r *roleRepository) Update(ctx context.Context, role *entity.Role) error {
	query := `UPDATE roles SET name = $1, description = $2, status = $3 WHERE id = $4`

	result, err := r.db.Exec(ctx, query, role.Name, role.Description, role.Status, role.ID)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// Delete удаляет роль, каскадно снимая её связи с разрешениями и пользователями
func (r *roleRepository) Delete(ctx context.Context, id int) error {
	return r.BatchDelete(ctx, []int{id})
}

// BatchDelete удаляет несколько ролей одной транзакцией вместе со связями
func (r *roleRepository) BatchDelete(ctx context.Context, ids []int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM roles_permissions WHERE role_id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to delete role permission links: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM users_roles WHERE role_id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to delete user role links: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to delete roles: %w", err)
	}

	if result.RowsAffected() != int64(len(ids)) {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// GetPermissionsByRoleID получает все разрешения роли
func (r *roleRepository) GetPermissionsByRoleID(ctx context.Context, roleID int) ([]entity.Permission, error) {
	query := `
		SELECT p.id, p.code, p.name, p.description
		FROM permissions p
		INNER JOIN roles_permissions rp ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.code
	`

	rows, err := r.db.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions for role: %w", err)
	}
	defer rows.Close()

	return scanPermissions(rows)
}

// GetPermissionByCode получает разрешение по коду
func (r *roleRepository) GetPermissionByCode(ctx context.Context, code string) (*entity.Permission, error) {
	query := `SELECT id, code, name, description FROM permissions WHERE code = $1`

	var p entity.Permission
	err := r.db.QueryRow(ctx, query, code).Scan(&p.ID, &p.Code, &p.Name, &p.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to get permission by code: %w", err)
	}

	return &p, nil
}

// ListPermissions получает каталог всех разрешений
func (r *roleRepository) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	query := `SELECT id, code, name, description FROM permissions ORDER BY code`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	return scanPermissions(rows)
}

// AddRolePermission добавляет связь роль-разрешение.
// Повторное добавление существующей связи - no-op.
func (r *roleRepository) AddRolePermission(ctx context.Context, roleID, permissionID int) error {
	query := `
		INSERT INTO roles_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, roleID, permissionID); err != nil {
		return fmt.Errorf("failed to add role permission: %w", err)
	}

	return nil
}

// RemoveRolePermission удаляет связь роль-разрешение.
// Удаление отсутствующей связи - no-op.
func (r *roleRepository) RemoveRolePermission(ctx context.Context, roleID, permissionID int) error {
	query := `DELETE FROM roles_permissions WHERE role_id = $1 AND permission_id = $2`

	if _, err := r.db.Exec(ctx, query, roleID, permissionID); err != nil {
		return fmt.Errorf("failed to remove role permission: %w", err)
	}

	return nil
}

// GetRolesByUserID получает все роли пользователя
func (r *roleRepository) GetRolesByUserID(ctx context.Context, userID int) ([]entity.Role, error) {
	query := `
		SELECT r.id, r.code, r.name, r.description, r.status, r.built_in
		FROM roles r
		INNER JOIN users_roles ur ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles for user: %w", err)
	}
	defer rows.Close()

	return scanRoles(rows)
}

// GetUserIDsByRoleID получает ID всех пользователей роли
func (r *roleRepository) GetUserIDsByRoleID(ctx context.Context, roleID int) ([]int, error) {
	query := `SELECT user_id FROM users_roles WHERE role_id = $1 ORDER BY user_id`

	rows, err := r.db.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for role: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}

	return ids, nil
}

// ReplaceUserRoles полностью заменяет набор ролей пользователя одной транзакцией:
// старые связи удаляются, новые вставляются, основная роль в таблице users
// обновляется атомарно. Параллельный читатель не увидит промежуточного состояния.
func (r *roleRepository) ReplaceUserRoles(ctx context.Context, userID int, roleIDs []int, primaryRole string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM users_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to remove existing user roles: %w", err)
	}

	for _, roleID := range roleIDs {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO users_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, roleID,
		); err != nil {
			return fmt.Errorf("failed to assign role %d: %w", roleID, err)
		}
	}

	result, err := tx.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, primaryRole, userID)
	if err != nil {
		return fmt.Errorf("failed to update primary role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

func scanRoles(rows pgx.Rows) ([]entity.Role, error) {
	var roles []entity.Role
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(
			&role.ID, &role.Code, &role.Name, &role.Description, &role.Status, &role.BuiltIn,
		); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}

	return roles, nil
}

func scanPermissions(rows pgx.Rows) ([]entity.Permission, error) {
	var permissions []entity.Permission
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		permissions = append(permissions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating permissions: %w", err)
	}

	return permissions, nil
}
