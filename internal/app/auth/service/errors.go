package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user with this username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleCodeExists     = errors.New("role with this code already exists")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrBuiltInRole        = errors.New("built-in role cannot be modified")
)
