package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"rawlogin/internal/app/auth/entity"
	"rawlogin/internal/app/auth/service"
	"rawlogin/pkg/metrics"
)

type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest

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

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "User with this username already exists",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to register user",
			})
		}
		return
	}

	metrics.AuthRegistrations.Inc()
	metrics.AuthTokensIssued.Inc()
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Invalid username or password",
			})
		case errors.Is(err, service.ErrUserDisabled):
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "User account is disabled",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to login",
			})
		}
		return
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	metrics.AuthTokensIssued.Inc()

	c.JSON(http.StatusOK, resp)
}

// Logout инвалидирует предъявленный токен. Маршрут публичный:
// выход с отсутствующим, истекшим или мусорным токеном - тоже успех,
// клиент в любом случае получает подтверждение.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := extractBearerToken(c)
	if token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to logout",
			})
			return
		}
		metrics.AuthTokensRevoked.Inc()
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Logged out successfully",
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
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
			"message": "Failed to get current user",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// extractBearerToken достает токен из заголовка Authorization,
// возвращает пустую строку для отсутствующего или кривого заголовка
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// formatValidationErrors собирает человекочитаемое сообщение об ошибках валидации
func formatValidationErrors(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, "invalid field: "+e.Field())
	}
	return strings.Join(messages, "; ")
}
