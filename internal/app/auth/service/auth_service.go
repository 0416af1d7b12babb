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
	"rawlogin/internal/app/auth/util"
	"rawlogin/pkg/logger"

	"github.com/jackc/pgx/v5"
)

// AuthService обрабатывает бизнес-логику аутентификации:
// регистрацию, вход, выход и проверку токенов.
type AuthService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	tokenRepo  repository.TokenRepository
	jwtManager *util.JWTManager
	publisher  MessagePublisher
}

// NewAuthService создает новый сервис аутентификации.
// publisher может быть nil - тогда события аудита не публикуются.
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *util.JWTManager,
	publisher MessagePublisher,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
		publisher:  publisher,
	}
}

// Register регистрирует нового пользователя с встроенной ролью USER
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.LoginResponse, error) {
	existingUser, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserExists
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userRole, err := s.roleRepo.GetByCode(ctx, entity.RoleUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get default role: %w", err)
	}

	user := &entity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         entity.RoleUser,
		Status:       entity.StatusEnabled,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.roleRepo.ReplaceUserRoles(ctx, user.ID, []int{userRole.ID}, entity.RoleUser); err != nil {
		return nil, fmt.Errorf("failed to assign default role: %w", err)
	}

	s.publishEvent(ctx, entity.AuthEvent{
		Type:      entity.EventUserCreated,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})

	return s.generateLoginResponse(ctx, user)
}

// Login выполняет вход пользователя и выпускает новый токен.
// Ранее выданные токены остаются действительными - пользователь
// может держать несколько одновременных сессий.
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, ErrUserDisabled
	}

	return s.generateLoginResponse(ctx, user)
}

// Logout инвалидирует токен, помещая его в черный список.
// Идемпотентен: выход с уже отозванным, истекшим или мусорным токеном -
// успешный no-op, клиент всегда получает подтверждение выхода.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtManager.Parse(token)
	if err != nil {
		// Невалидный или истекший токен и так не пройдет проверку
		return nil
	}

	if err := s.tokenRepo.AddToBlacklist(ctx, token, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

// ValidateToken проверяет токен: структуру, подпись, срок и черный список.
// Все ожидаемые отказы возвращаются как ошибки-значения, не паники.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*util.TokenClaims, error) {
	isBlacklisted, err := s.tokenRepo.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, util.ErrInvalidToken
	}

	claims, err := s.jwtManager.Parse(token)
	if err != nil {
		return nil, err
	}

	return claims, nil
}

// GetCurrentUser получает профиль текущего пользователя с его ролями
func (s *AuthService) GetCurrentUser(ctx context.Context, userID int) (*entity.UserWithRoles, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := s.roleRepo.GetRolesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	return &entity.UserWithRoles{
		User:  *user,
		Roles: roles,
	}, nil
}

// generateLoginResponse выпускает токен и собирает ответ с профилем
func (s *AuthService) generateLoginResponse(ctx context.Context, user *entity.User) (*entity.LoginResponse, error) {
	roles, err := s.roleRepo.GetRolesByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	token, err := s.jwtManager.Issue(user.Username, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &entity.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtManager.TokenDuration().Seconds()),
		User: entity.UserWithRoles{
			User:  *user,
			Roles: roles,
		},
	}, nil
}

// publishEvent отправляет событие аудита.
// Сбой публикации логируется, но не валит бизнес-операцию.
func (s *AuthService) publishEvent(ctx context.Context, event entity.AuthEvent) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("type", event.Type).Msg("failed to marshal auth event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, strconv.Itoa(event.UserID), payload); err != nil {
		logger.Error().Err(err).Str("type", event.Type).Msg("failed to publish auth event")
	}
}
