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

type RoleHandler struct {
	roleService *service.RoleService
	resolver    *service.PermissionResolver
	validator   *validator.Validate
}

func NewRoleHandler(roleService *service.RoleService, resolver *service.PermissionResolver) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		resolver:    resolver,
		validator:   validator.New(),
	}
}

// ListRoles отдает роли, опционально фильтруя по query-параметрам
// name, code, status, built_in
func (h *RoleHandler) ListRoles(c *gin.Context) {
	filter := entity.RoleSearchFilter{
		Name: c.Query("name"),
		Code: c.Query("code"),
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

	if b := c.Query("built_in"); b != "" {
		builtIn, err := strconv.ParseBool(b)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "Invalid built_in filter",
			})
			return
		}
		filter.BuiltIn = &builtIn
	}

	var (
		roles []entity.Role
		err   error
	)
	if filter.Name == "" && filter.Code == "" && filter.Status == nil && filter.BuiltIn == nil {
		roles, err = h.roleService.List(c.Request.Context())
	} else {
		roles, err = h.roleService.Search(c.Request.Context(), filter)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to list roles",
		})
		return
	}

	c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) GetRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	role, err := h.roleService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRoleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Role not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get role",
		})
		return
	}

	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req entity.CreateRoleRequest

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

	role, err := h.roleService.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleCodeExists):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "Role with this code already exists",
			})
		case errors.Is(err, service.ErrBuiltInRole):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Cannot create built-in role",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to create role",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, role)
}

func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.UpdateRoleRequest
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

	role, err := h.roleService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Role not found",
			})
		case errors.Is(err, service.ErrBuiltInRole):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Built-in roles cannot be modified",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to update role",
			})
		}
		return
	}

	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrRoleNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Role not found",
			})
		case errors.Is(err, service.ErrBuiltInRole):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Built-in roles cannot be deleted",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to delete role",
			})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Role deleted successfully"})
}

func (h *RoleHandler) BatchDeleteRoles(c *gin.Context) {
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

	if err := h.roleService.BatchDelete(c.Request.Context(), req.IDs); err != nil {
		switch {
		case errors.Is(err, service.ErrRoleNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "One or more roles not found",
			})
		case errors.Is(err, service.ErrBuiltInRole):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Built-in roles cannot be deleted",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to delete roles",
			})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Roles deleted successfully"})
}

func (h *RoleHandler) GetRolePermissions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	permissions, err := h.roleService.GetPermissions(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRoleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Role not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get role permissions",
		})
		return
	}

	c.JSON(http.StatusOK, permissions)
}

// AddRolePermission выдает роли разрешение по коду. Повторная выдача - no-op.
func (h *RoleHandler) AddRolePermission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.PermissionRequest
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

	if err := h.resolver.AddPermission(c.Request.Context(), id, req.Code); err != nil {
		h.respondPermissionEdgeError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Permission granted"})
}

// RemoveRolePermission снимает с роли разрешение по коду.
// Снятие отсутствующего разрешения - no-op.
func (h *RoleHandler) RemoveRolePermission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Permission code required",
		})
		return
	}

	if err := h.resolver.RemovePermission(c.Request.Context(), id, code); err != nil {
		h.respondPermissionEdgeError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Permission revoked"})
}

// ListPermissions отдает каталог всех разрешений с категориями
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	permissions, err := h.roleService.ListPermissions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to list permissions",
		})
		return
	}

	catalog := make([]entity.PermissionCatalogItem, 0, len(permissions))
	for _, p := range permissions {
		catalog = append(catalog, entity.PermissionCatalogItem{
			ID:          p.ID,
			Code:        p.Code,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category(),
		})
	}

	c.JSON(http.StatusOK, catalog)
}

// GetRoleUsers отдает ID пользователей, которым назначена роль
func (h *RoleHandler) GetRoleUsers(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	userIDs, err := h.roleService.GetRoleUsers(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRoleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Role not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get role users",
		})
		return
	}

	c.JSON(http.StatusOK, userIDs)
}

func (h *RoleHandler) respondPermissionEdgeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoleNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Role not found",
		})
	case errors.Is(err, service.ErrPermissionNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Permission not found",
		})
	case errors.Is(err, service.ErrBuiltInRole):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Built-in roles cannot be modified",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to modify role permissions",
		})
	}
}
