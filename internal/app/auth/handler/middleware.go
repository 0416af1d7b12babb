package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rawlogin/internal/app/auth/entity"
	"rawlogin/internal/app/auth/repository"
	"rawlogin/internal/app/auth/service"
	"rawlogin/internal/app/auth/util"
	"rawlogin/pkg/metrics"
)

// Ключи контекста запроса для данных аутентифицированного принципала
const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxRole     = "role"
	ctxRoles    = "roles"
)

// AuthMiddleware - единая точка авторизации запросов.
// Извлекает токен, проверяет его через сервис аутентификации, заново
// разрешает роли принципала из хранилища (изменения ролей действуют
// сразу, а не при следующем входе) и спрашивает резолвер разрешений.
// Любая внутренняя ошибка проверки приводит к отказу, никогда к допуску.
type AuthMiddleware struct {
	authService service.AuthServiceInterface
	resolver    *service.PermissionResolver
	roleRepo    repository.RoleRepository
}

// NewAuthMiddleware создает новый authorization middleware
func NewAuthMiddleware(
	authService service.AuthServiceInterface,
	resolver *service.PermissionResolver,
	roleRepo repository.RoleRepository,
) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		resolver:    resolver,
		roleRepo:    roleRepo,
	}
}

// Authenticate проверяет токен и кладет принципала в контекст запроса.
// Публичные маршруты просто не вешают этот middleware.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			metrics.AuthDenied.WithLabelValues("unauthenticated").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			metrics.AuthDenied.WithLabelValues("unauthenticated").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		token := parts[1]

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			metrics.AuthDenied.WithLabelValues("unauthenticated").Inc()
			if errors.Is(err, util.ErrExpiredToken) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "Unauthorized",
					"message": "Token has expired",
				})
				c.Abort()
				return
			}
			if errors.Is(err, util.ErrInvalidToken) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "Unauthorized",
					"message": "Invalid token",
				})
				c.Abort()
				return
			}
			// Внутренняя ошибка проверки - отказываем, не пропускаем
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to validate token",
			})
			c.Abort()
			return
		}

		// Роли разрешаются заново при каждом запросе, а не из claims токена:
		// отзыв роли вступает в силу немедленно
		roles, err := m.roleRepo.GetRolesByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to resolve user roles",
			})
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username())
		c.Set(ctxRole, claims.Role)
		c.Set(ctxRoles, roles)

		c.Next()
	}
}

// RequirePermission пропускает запрос только при наличии разрешения.
// Пустой код разрешения означает "достаточно аутентификации".
// Ставится после Authenticate.
func (m *AuthMiddleware) RequirePermission(permissionCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if permissionCode == "" {
			c.Next()
			return
		}

		rolesVal, exists := c.Get(ctxRoles)
		if !exists {
			metrics.AuthDenied.WithLabelValues("unauthenticated").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Unauthorized",
			})
			c.Abort()
			return
		}

		roles, ok := rolesVal.([]entity.Role)
		if !ok {
			metrics.AuthDenied.WithLabelValues("unauthenticated").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Unauthorized",
			})
			c.Abort()
			return
		}

		hasPermission, err := m.resolver.HasPermission(c.Request.Context(), roles, permissionCode)
		if err != nil {
			metrics.PermissionChecks.WithLabelValues("denied").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to check permission",
			})
			c.Abort()
			return
		}

		if !hasPermission {
			metrics.PermissionChecks.WithLabelValues("denied").Inc()
			metrics.AuthDenied.WithLabelValues("forbidden").Inc()
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		metrics.PermissionChecks.WithLabelValues("allowed").Inc()
		c.Next()
	}
}

// currentUserID достает ID аутентифицированного пользователя из контекста
func currentUserID(c *gin.Context) (int, bool) {
	val, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := val.(int)
	return id, ok
}

// currentUserIsAdmin проверяет по заново разрешенным ролям,
// является ли текущий пользователь администратором
func currentUserIsAdmin(c *gin.Context) bool {
	val, exists := c.Get(ctxRoles)
	if !exists {
		return false
	}

	roles, ok := val.([]entity.Role)
	if !ok {
		return false
	}

	for _, role := range roles {
		if role.IsAdmin() {
			return true
		}
	}
	return false
}
