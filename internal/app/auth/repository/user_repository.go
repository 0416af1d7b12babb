package repository

import (
	"context"
	"fmt"
	"strings"

	"rawlogin/internal/app/auth/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

// Create создает нового пользователя, ID генерируется базой
func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Role, user.Status, user.CreatedAt,
	).Scan(&user.ID)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *userRepository) GetByID(ctx context.Context, id int) (*entity.User, error) {
	query := `SELECT id, username, email, password_hash, role, status, created_at FROM users WHERE id = $1`

	var user entity.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// GetByUsername получает пользователя по имени
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT id, username, email, password_hash, role, status, created_at FROM users WHERE username = $1`

	var user entity.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

// Update обновляет данные пользователя
func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, role = $4, status = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(
		ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Role, user.Status, user.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// Delete удаляет пользователя вместе со связями пользователь-роль
func (r *userRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM users_roles WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete user role links: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// BatchDelete удаляет несколько пользователей одной транзакцией.
// Либо удаляются все, либо никто.
func (r *userRepository) BatchDelete(ctx context.Context, ids []int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM users_roles WHERE user_id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to delete user role links: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to batch delete users: %w", err)
	}

	if result.RowsAffected() != int64(len(ids)) {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// List получает список всех пользователей
func (r *userRepository) List(ctx context.Context) ([]entity.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, status, created_at
		FROM users
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// Search ищет пользователей по необязательным условиям.
// При PageSize > 0 выборка постраничная, страницы считаются с единицы.
func (r *userRepository) Search(ctx context.Context, filter entity.UserSearchFilter) ([]entity.User, error) {
	var conditions []string
	var args []interface{}

	if filter.Username != "" {
		args = append(args, "%"+filter.Username+"%")
		conditions = append(conditions, fmt.Sprintf("username ILIKE $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, "%"+filter.Email+"%")
		conditions = append(conditions, fmt.Sprintf("email ILIKE $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT id, username, email, password_hash, role, status, created_at FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.PageSize)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, (page-1)*filter.PageSize)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]entity.User, error) {
	var users []entity.User
	for rows.Next() {
		var user entity.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.Status,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
