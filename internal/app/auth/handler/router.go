package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rawlogin/pkg/logger"
	"rawlogin/pkg/metrics"
)

// Коды разрешений защищенных операций.
// Категория - первый сегмент кода до ':'.
const (
	PermUserList   = "sys:user:list"
	PermUserCreate = "sys:user:create"
	PermUserEdit   = "sys:user:edit"
	PermUserDelete = "sys:user:delete"
	PermUserAssign = "sys:user:assign"

	PermRoleList   = "sys:role:list"
	PermRoleCreate = "sys:role:create"
	PermRoleEdit   = "sys:role:edit"
	PermRoleDelete = "sys:role:delete"
	PermRoleAssign = "sys:role:assign"

	PermPermList = "sys:perm:list"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	roleHandler *RoleHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("rawlogin"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "rawlogin",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты (без аутентификации).
	// Logout тоже публичный: выход с мертвым токеном - все равно выход.
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)

		// Защищенные эндпоинты (требуют аутентификации)
		protected := auth.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.GET("/me", authHandler.Me)
		}
	}

	// Управление пользователями - по разрешениям.
	// Смена собственного пароля требует только аутентификации,
	// принадлежность аккаунта проверяет обработчик.
	users := router.Group("/api/users")
	users.Use(authMiddleware.Authenticate())
	{
		users.GET("", authMiddleware.RequirePermission(PermUserList), userHandler.ListUsers)
		users.GET("/:id", authMiddleware.RequirePermission(PermUserList), userHandler.GetUser)
		users.POST("", authMiddleware.RequirePermission(PermUserCreate), userHandler.CreateUser)
		users.PUT("/:id", authMiddleware.RequirePermission(PermUserEdit), userHandler.UpdateUser)
		users.PUT("/:id/password", userHandler.ChangePassword)
		users.DELETE("/:id", authMiddleware.RequirePermission(PermUserDelete), userHandler.DeleteUser)
		users.POST("/batch-delete", authMiddleware.RequirePermission(PermUserDelete), userHandler.BatchDeleteUsers)
		users.GET("/:id/roles", authMiddleware.RequirePermission(PermUserList), userHandler.GetUserRoles)
		users.PUT("/:id/roles", authMiddleware.RequirePermission(PermUserAssign), userHandler.AssignRoles)
	}

	// Управление ролями и разрешениями
	roles := router.Group("/api/roles")
	roles.Use(authMiddleware.Authenticate())
	{
		roles.GET("", authMiddleware.RequirePermission(PermRoleList), roleHandler.ListRoles)
		roles.GET("/:id", authMiddleware.RequirePermission(PermRoleList), roleHandler.GetRole)
		roles.POST("", authMiddleware.RequirePermission(PermRoleCreate), roleHandler.CreateRole)
		roles.PUT("/:id", authMiddleware.RequirePermission(PermRoleEdit), roleHandler.UpdateRole)
		roles.DELETE("/:id", authMiddleware.RequirePermission(PermRoleDelete), roleHandler.DeleteRole)
		roles.POST("/batch-delete", authMiddleware.RequirePermission(PermRoleDelete), roleHandler.BatchDeleteRoles)
		roles.GET("/:id/users", authMiddleware.RequirePermission(PermRoleList), roleHandler.GetRoleUsers)
		roles.GET("/:id/permissions", authMiddleware.RequirePermission(PermRoleList), roleHandler.GetRolePermissions)
		roles.POST("/:id/permissions", authMiddleware.RequirePermission(PermRoleAssign), roleHandler.AddRolePermission)
		roles.DELETE("/:id/permissions/:code", authMiddleware.RequirePermission(PermRoleAssign), roleHandler.RemoveRolePermission)
	}

	// Каталог разрешений
	permissions := router.Group("/api/permissions")
	permissions.Use(authMiddleware.Authenticate())
	{
		permissions.GET("", authMiddleware.RequirePermission(PermPermList), roleHandler.ListPermissions)
	}

	return router
}
