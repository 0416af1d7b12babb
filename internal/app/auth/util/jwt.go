package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims - полезная нагрузка токена доступа.
// Subject содержит имя пользователя, роль - основную роль на момент входа.
type TokenClaims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Username возвращает имя пользователя из токена
func (c *TokenClaims) Username() string {
	return c.Subject
}

// JWTManager выпускает и проверяет токены доступа (HS256)
type JWTManager struct {
	secretKey     string
	tokenDuration time.Duration
}

// NewJWTManager создает новый менеджер токенов
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
	}
}

// Issue выпускает новый токен для пользователя.
// Каждый вызов дает уникальный токен (jti), поэтому у пользователя может
// быть несколько одновременно действующих сессий - выпуск нового токена
// не затрагивает ранее выданные.
func (m *JWTManager) Issue(username string, userID int, role string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// Parse разбирает и проверяет токен.
// Возвращает ErrExpiredToken для структурно корректного, но истекшего токена,
// ErrInvalidToken для всех остальных проблем (подпись, формат, алгоритм).
func (m *JWTManager) Parse(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&TokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secretKey), nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Validate проверяет токен, сводя любую ошибку к "невалиден".
// Никогда не паникует - все пути отказа схлопываются в false.
func (m *JWTManager) Validate(tokenString string) bool {
	_, err := m.Parse(tokenString)
	return err == nil
}

// TokenDuration возвращает настроенное время жизни токена
func (m *JWTManager) TokenDuration() time.Duration {
	return m.tokenDuration
}
