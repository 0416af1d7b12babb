package service

import (
	"context"
	"testing"

	"rawlogin/internal/app/auth/entity"
	"rawlogin/internal/app/auth/repository/mocks"
	"rawlogin/internal/app/auth/util"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==================== Create Tests ====================

func TestUserService_Create_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("GetByUsername", ctx, "newuser").Return(nil, pgx.ErrNoRows)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	user, err := service.Create(ctx, &entity.CreateUserRequest{
		Username: "newuser",
		Password: "password123",
		Email:    "new@example.com",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "newuser", user.Username)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.Equal(t, entity.StatusEnabled, user.Status)
	assert.True(t, util.CheckPassword("password123", user.PasswordHash))

	userRepo.AssertExpectations(t)
}

func TestUserService_Create_DuplicateUsername(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("GetByUsername", ctx, "taken").Return(newTestUser(), nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	user, err := service.Create(ctx, &entity.CreateUserRequest{
		Username: "taken",
		Password: "password123",
	})

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUserExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Create_DisabledStatus(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("GetByUsername", ctx, "newuser").Return(nil, pgx.ErrNoRows)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)

	service := NewUserService(userRepo, roleRepo, nil)

	disabled := entity.StatusDisabled

	// Act
	user, err := service.Create(ctx, &entity.CreateUserRequest{
		Username: "newuser",
		Password: "password123",
		Status:   &disabled,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDisabled, user.Status)
}

// ==================== Update Tests ====================

func TestUserService_Update_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	user := newTestUser()
	userRepo.On("GetByID", ctx, 1).Return(user, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*entity.User")).Return(nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	updated, err := service.Update(ctx, 1, &entity.UpdateUserRequest{
		Email: "changed@example.com",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "changed@example.com", updated.Email)
	userRepo.AssertExpectations(t)
}

func TestUserService_Update_UsernameTaken(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	user := newTestUser()
	other := newTestUser()
	other.ID = 2
	other.Username = "occupied"

	userRepo.On("GetByID", ctx, 1).Return(user, nil)
	userRepo.On("GetByUsername", ctx, "occupied").Return(other, nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	updated, err := service.Update(ctx, 1, &entity.UpdateUserRequest{
		Username: "occupied",
	})

	// Assert
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrUserExists)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_Update_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("GetByID", ctx, 99).Return(nil, pgx.ErrNoRows)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	updated, err := service.Update(ctx, 99, &entity.UpdateUserRequest{Email: "x@example.com"})

	// Assert
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// ==================== ChangePassword Tests ====================

func TestUserService_ChangePassword_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	user := newTestUser()
	userRepo.On("GetByID", ctx, 1).Return(user, nil)
	userRepo.On("Update", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return util.CheckPassword("newpassword456", u.PasswordHash)
	})).Return(nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	err := service.ChangePassword(ctx, 1, "password123", "newpassword456")

	// Assert
	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestUserService_ChangePassword_WrongOldPassword(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("GetByID", ctx, 1).Return(newTestUser(), nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	err := service.ChangePassword(ctx, 1, "wrongoldpassword", "newpassword456")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// ==================== Delete Tests ====================

func TestUserService_Delete_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("Delete", ctx, 1).Return(nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	err := service.Delete(ctx, 1)

	// Assert
	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestUserService_Delete_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("Delete", ctx, 99).Return(pgx.ErrNoRows)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	err := service.Delete(ctx, 99)

	// Assert
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_BatchDelete_AllOrNothing(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	// Репозиторий откатывает транзакцию, если хотя бы один ID не существует
	userRepo.On("BatchDelete", ctx, []int{1, 99}).Return(pgx.ErrNoRows)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	err := service.BatchDelete(ctx, []int{1, 99})

	// Assert
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// ==================== AssignRoles Tests ====================

func TestUserService_AssignRoles_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	manager := &entity.Role{ID: 3, Code: "MANAGER", Name: "Manager"}
	userRepo.On("GetByID", ctx, 1).Return(newTestUser(), nil)
	roleRepo.On("GetByID", ctx, 3).Return(manager, nil)
	roleRepo.On("ReplaceUserRoles", ctx, 1, []int{3}, "MANAGER").Return(nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	err := service.AssignRoles(ctx, 1, []int{3})

	// Assert: основная роль пересчитана в первую назначенную
	require.NoError(t, err)
	roleRepo.AssertExpectations(t)
}

func TestUserService_AssignRoles_AdminBecomesPrimary(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	manager := &entity.Role{ID: 3, Code: "MANAGER", Name: "Manager"}
	admin := &entity.Role{ID: 1, Code: entity.RoleAdmin, Name: "Administrator", BuiltIn: true}

	userRepo.On("GetByID", ctx, 1).Return(newTestUser(), nil)
	roleRepo.On("GetByID", ctx, 3).Return(manager, nil)
	roleRepo.On("GetByID", ctx, 1).Return(admin, nil)
	// ADMIN приоритетнее, хотя идет вторым в списке
	roleRepo.On("ReplaceUserRoles", ctx, 1, []int{3, 1}, entity.RoleAdmin).Return(nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	err := service.AssignRoles(ctx, 1, []int{3, 1})

	// Assert
	require.NoError(t, err)
	roleRepo.AssertExpectations(t)
}

func TestUserService_AssignRoles_EmptySetFallsBackToUser(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("GetByID", ctx, 1).Return(newTestUser(), nil)
	roleRepo.On("ReplaceUserRoles", ctx, 1, []int{}, entity.RoleUser).Return(nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act: снятие всех ролей
	err := service.AssignRoles(ctx, 1, []int{})

	// Assert: основная роль падает до USER
	require.NoError(t, err)
	roleRepo.AssertExpectations(t)
}

func TestUserService_AssignRoles_RoleNotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("GetByID", ctx, 1).Return(newTestUser(), nil)
	roleRepo.On("GetByID", ctx, 99).Return(nil, pgx.ErrNoRows)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	err := service.AssignRoles(ctx, 1, []int{99})

	// Assert: ничего не заменено
	assert.ErrorIs(t, err, ErrRoleNotFound)
	roleRepo.AssertNotCalled(t, "ReplaceUserRoles", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_AssignRoles_UserNotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("GetByID", ctx, 99).Return(nil, pgx.ErrNoRows)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	err := service.AssignRoles(ctx, 99, []int{3})

	// Assert
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// ==================== GetUserRoles Tests ====================

func TestUserService_GetUserRoles_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	roles := []entity.Role{*newUserRole()}
	userRepo.On("GetByID", ctx, 1).Return(newTestUser(), nil)
	roleRepo.On("GetRolesByUserID", ctx, 1).Return(roles, nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	result, err := service.GetUserRoles(ctx, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, roles, result)
}

// ==================== List Tests ====================

func TestUserService_List_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	users := []entity.User{*newTestUser()}
	userRepo.On("List", ctx).Return(users, nil)
	roleRepo.On("GetRolesByUserID", ctx, 1).Return([]entity.Role{*newUserRole()}, nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	result, err := service.List(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "testuser", result[0].Username)
	require.Len(t, result[0].Roles, 1)
}

func TestUserService_Search_PassesFilterThrough(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	status := entity.StatusEnabled
	filter := entity.UserSearchFilter{
		Username: "test",
		Status:   &status,
		Page:     2,
		PageSize: 10,
	}

	userRepo.On("Search", ctx, filter).Return([]entity.User{*newTestUser()}, nil)
	roleRepo.On("GetRolesByUserID", ctx, 1).Return([]entity.Role{*newUserRole()}, nil)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	result, err := service.Search(ctx, filter)

	// Assert: фильтр уходит в хранилище как есть, роли подгружаются
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "testuser", result[0].Username)
	require.Len(t, result[0].Roles, 1)
	userRepo.AssertExpectations(t)
}

func TestUserService_Search_RepositoryError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	roleRepo := new(mocks.MockRoleRepository)

	userRepo.On("Search", ctx, mock.Anything).Return(nil, assert.AnError)

	service := NewUserService(userRepo, roleRepo, nil)

	// Act
	result, err := service.Search(ctx, entity.UserSearchFilter{Username: "test"})

	// Assert
	assert.Nil(t, result)
	assert.Error(t, err)
}
