package util

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword хэширует пароль bcrypt со стоимостью по умолчанию.
// Соль генерируется на каждый вызов, поэтому одинаковые пароли
// дают разные хэши.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword сверяет пароль с хэшем. Любая причина несовпадения,
// включая битый хэш, схлопывается в false.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
