package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"rawlogin/internal/app/auth/entity"
	"rawlogin/internal/app/auth/service"
)

type UserHandler struct {
	userService service.UserServiceInterface
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

// ListUsers отдает пользователей, опционально фильтруя по query-параметрам
// username, email, status. Параметры page и page_size включают
// постраничную выборку; page без page_size игнорируется.
func (h *UserHandler) ListUsers(c *gin.Context) {
	filter := entity.UserSearchFilter{
		Username: c.Query("username"),
		Email:    c.Query("email"),
	}

	if s := c.Query("status"); s != "" {
		status, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "Invalid status filter",
			})
			return
		}
		filter.Status = &status
	}

	if ps := c.Query("page_size"); ps != "" {
		pageSize, err := strconv.Atoi(ps)
		if err != nil || pageSize < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "Invalid page_size",
			})
			return
		}
		filter.PageSize = pageSize

		if p := c.Query("page"); p != "" {
			page, err := strconv.Atoi(p)
			if err != nil || page < 1 {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Bad Request",
					"message": "Invalid page",
				})
				return
			}
			filter.Page = page
		}
	}

	var (
		users []entity.UserWithRoles
		err   error
	)
	if filter.Username == "" && filter.Email == "" && filter.Status == nil && filter.PageSize == 0 {
		users, err = h.userService.List(c.Request.Context())
	} else {
		users, err = h.userService.Search(c.Request.Context(), filter)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to list users",
		})
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get user",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req entity.CreateUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": formatValidationErrors(err.(validator.ValidationErrors)),
		})
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "User with this username already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to create user",
		})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": formatValidationErrors(err.(validator.ValidationErrors)),
		})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "User not found",
			})
		case errors.Is(err, service.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "Username already taken",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to update user",
			})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword меняет пароль. Чужой пароль менять нельзя даже администратору:
// операция требует знания старого пароля.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	callerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	if id != callerID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Cannot change another user's password",
		})
		return
	}

	var req entity.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": formatValidationErrors(err.(validator.ValidationErrors)),
		})
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "Old password is incorrect",
			})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "User not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to change password",
			})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Password changed successfully"})
}

// DeleteUser удаляет пользователя. Удаление собственного аккаунта
// запрещено независимо от разрешений - проверяется после авторизации
// и до любых изменений состояния.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	callerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	if id == callerID {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Cannot delete own account",
		})
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to delete user",
		})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "User deleted successfully"})
}

// BatchDeleteUsers удаляет несколько пользователей.
// Список, содержащий ID самого вызывающего, отклоняется целиком.
func (h *UserHandler) BatchDeleteUsers(c *gin.Context) {
	var req entity.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": formatValidationErrors(err.(validator.ValidationErrors)),
		})
		return
	}

	callerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	for _, id := range req.IDs {
		if id == callerID {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "Cannot delete own account",
			})
			return
		}
	}

	if err := h.userService.BatchDelete(c.Request.Context(), req.IDs); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "One or more users not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to delete users",
		})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Users deleted successfully"})
}

func (h *UserHandler) GetUserRoles(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	roles, err := h.userService.GetUserRoles(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get user roles",
		})
		return
	}

	c.JSON(http.StatusOK, roles)
}

// AssignRoles полностью заменяет набор ролей пользователя.
// Менять собственные роли может только администратор.
func (h *UserHandler) AssignRoles(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	callerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	if id == callerID && !currentUserIsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Cannot modify own roles",
		})
		return
	}

	var req entity.AssignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if err := h.userService.AssignRoles(c.Request.Context(), id, req.RoleIDs); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "User not found",
			})
		case errors.Is(err, service.ErrRoleNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "One or more roles not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to assign roles",
			})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Roles assigned successfully"})
}

// parseIDParam разбирает path-параметр :id, отвечая 400 при ошибке
func parseIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid ID",
		})
		return 0, false
	}
	return id, true
}
