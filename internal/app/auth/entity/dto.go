package entity

// RegisterRequest - запрос на регистрацию
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse - ответ на вход с токеном и профилем
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expires_in"` // время жизни токена в секундах
	User      UserWithRoles `json:"user"`
}

// CreateUserRequest - запрос на создание пользователя администратором
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Status   *int   `json:"status,omitempty" validate:"omitempty,oneof=0 1"`
}

// UpdateUserRequest - запрос на обновление пользователя
type UpdateUserRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Status   *int   `json:"status,omitempty" validate:"omitempty,oneof=0 1"`
}

// ChangePasswordRequest - запрос на смену пароля
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// BatchDeleteRequest - запрос на пакетное удаление по ID
type BatchDeleteRequest struct {
	IDs []int `json:"ids" validate:"required,min=1"`
}

// AssignRolesRequest - запрос на полную замену набора ролей пользователя
type AssignRolesRequest struct {
	RoleIDs []int `json:"role_ids"`
}

// CreateRoleRequest - запрос на создание роли
type CreateRoleRequest struct {
	Code        string `json:"code" validate:"required,min=2,max=50"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Status      *int   `json:"status,omitempty" validate:"omitempty,oneof=0 1"`
}

// UpdateRoleRequest - запрос на обновление роли
type UpdateRoleRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Status      *int   `json:"status,omitempty" validate:"omitempty,oneof=0 1"`
}

// UserSearchFilter - фильтр поиска пользователей.
// Page действует только вместе с PageSize; PageSize == 0 отключает
// постраничную выборку.
type UserSearchFilter struct {
	Username string
	Email    string
	Status   *int
	Page     int
	PageSize int
}

// RoleSearchFilter - фильтр поиска ролей
type RoleSearchFilter struct {
	Name    string
	Code    string
	Status  *int
	BuiltIn *bool
}

// PermissionCatalogItem - элемент каталога разрешений.
// Категория вычисляется из кода и отдается клиенту для группировки.
type PermissionCatalogItem struct {
	ID          int    `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

// PermissionRequest - запрос на добавление/удаление разрешения роли
type PermissionRequest struct {
	Code string `json:"code" validate:"required"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
