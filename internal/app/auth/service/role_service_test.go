package service

import (
	"context"
	"testing"

	"rawlogin/internal/app/auth/entity"
	"rawlogin/internal/app/auth/repository/mocks"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==================== Create Tests ====================

func TestRoleService_Create_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	roleRepo.On("GetByCode", ctx, "MANAGER").Return(nil, pgx.ErrNoRows)
	roleRepo.On("Create", ctx, mock.AnythingOfType("*entity.Role")).Return(nil)

	service := NewRoleService(roleRepo, nil)

	// Act
	role, err := service.Create(ctx, &entity.CreateRoleRequest{
		Code: "MANAGER",
		Name: "Manager",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "MANAGER", role.Code)
	assert.False(t, role.BuiltIn)
	assert.Equal(t, entity.StatusEnabled, role.Status)

	roleRepo.AssertExpectations(t)
}

func TestRoleService_Create_DuplicateCode(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	existing := managerRole()
	roleRepo.On("GetByCode", ctx, "MANAGER").Return(&existing, nil)

	service := NewRoleService(roleRepo, nil)

	// Act
	role, err := service.Create(ctx, &entity.CreateRoleRequest{
		Code: "MANAGER",
		Name: "Manager Again",
	})

	// Assert
	assert.Nil(t, role)
	assert.ErrorIs(t, err, ErrRoleCodeExists)
	roleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoleService_Create_BuiltInCodeRejected(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	roleRepo.On("GetByCode", ctx, entity.RoleAdmin).Return(nil, pgx.ErrNoRows)

	service := NewRoleService(roleRepo, nil)

	// Act: попытка создать вторую роль с кодом ADMIN
	role, err := service.Create(ctx, &entity.CreateRoleRequest{
		Code: entity.RoleAdmin,
		Name: "Fake Admin",
	})

	// Assert
	assert.Nil(t, role)
	assert.ErrorIs(t, err, ErrBuiltInRole)
	roleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ==================== Update Tests ====================

func TestRoleService_Update_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	role := managerRole()
	roleRepo.On("GetByID", ctx, 3).Return(&role, nil)
	roleRepo.On("Update", ctx, mock.AnythingOfType("*entity.Role")).Return(nil)

	service := NewRoleService(roleRepo, nil)

	// Act
	updated, err := service.Update(ctx, 3, &entity.UpdateRoleRequest{
		Name: "Senior Manager",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Senior Manager", updated.Name)
	assert.Equal(t, "MANAGER", updated.Code) // код неизменяем
}

func TestRoleService_Update_BuiltInRole(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	role := adminRole()
	roleRepo.On("GetByID", ctx, 1).Return(&role, nil)

	service := NewRoleService(roleRepo, nil)

	// Act
	updated, err := service.Update(ctx, 1, &entity.UpdateRoleRequest{Name: "Hacked"})

	// Assert
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrBuiltInRole)
	roleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRoleService_Update_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	roleRepo.On("GetByID", ctx, 99).Return(nil, pgx.ErrNoRows)

	service := NewRoleService(roleRepo, nil)

	// Act
	updated, err := service.Update(ctx, 99, &entity.UpdateRoleRequest{Name: "Ghost"})

	// Assert
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

// ==================== Delete Tests ====================

func TestRoleService_Delete_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	role := managerRole()
	roleRepo.On("GetByID", ctx, 3).Return(&role, nil)
	roleRepo.On("Delete", ctx, 3).Return(nil)

	service := NewRoleService(roleRepo, nil)

	// Act
	err := service.Delete(ctx, 3)

	// Assert
	require.NoError(t, err)
	roleRepo.AssertExpectations(t)
}

func TestRoleService_Delete_BuiltInRole(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	testCases := []struct {
		name string
		role entity.Role
	}{
		{"admin", adminRole()},
		{"user", userRole()},
	}

	service := NewRoleService(roleRepo, nil)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			role := tc.role
			roleRepo.On("GetByID", ctx, role.ID).Return(&role, nil)

			// Act
			err := service.Delete(ctx, role.ID)

			// Assert
			assert.ErrorIs(t, err, ErrBuiltInRole)
		})
	}

	roleRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRoleService_BatchDelete_BuiltInRoleAbortsAll(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	manager := managerRole()
	admin := adminRole()
	roleRepo.On("GetByID", ctx, 3).Return(&manager, nil)
	roleRepo.On("GetByID", ctx, 1).Return(&admin, nil)

	service := NewRoleService(roleRepo, nil)

	// Act: встроенная роль в списке отменяет операцию целиком
	err := service.BatchDelete(ctx, []int{3, 1})

	// Assert
	assert.ErrorIs(t, err, ErrBuiltInRole)
	roleRepo.AssertNotCalled(t, "BatchDelete", mock.Anything, mock.Anything)
}

func TestRoleService_BatchDelete_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	manager := managerRole()
	auditor := entity.Role{ID: 4, Code: "AUDITOR", Name: "Auditor"}
	roleRepo.On("GetByID", ctx, 3).Return(&manager, nil)
	roleRepo.On("GetByID", ctx, 4).Return(&auditor, nil)
	roleRepo.On("BatchDelete", ctx, []int{3, 4}).Return(nil)

	service := NewRoleService(roleRepo, nil)

	// Act
	err := service.BatchDelete(ctx, []int{3, 4})

	// Assert
	require.NoError(t, err)
	roleRepo.AssertExpectations(t)
}

// ==================== Permissions Tests ====================

func TestRoleService_GetPermissions_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	role := managerRole()
	permissions := []entity.Permission{{ID: 1, Code: "sys:user:list"}}
	roleRepo.On("GetByID", ctx, 3).Return(&role, nil)
	roleRepo.On("GetPermissionsByRoleID", ctx, 3).Return(permissions, nil)

	service := NewRoleService(roleRepo, nil)

	// Act
	result, err := service.GetPermissions(ctx, 3)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, permissions, result)
}

func TestRoleService_GetPermissions_RoleNotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	roleRepo.On("GetByID", ctx, 99).Return(nil, pgx.ErrNoRows)

	service := NewRoleService(roleRepo, nil)

	// Act
	result, err := service.GetPermissions(ctx, 99)

	// Assert
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRoleService_GetRoleUsers_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	roleRepo := new(mocks.MockRoleRepository)

	role := managerRole()
	roleRepo.On("GetByID", ctx, 3).Return(&role, nil)
	roleRepo.On("GetUserIDsByRoleID", ctx, 3).Return([]int{1, 5, 8}, nil)

	service := NewRoleService(roleRepo, nil)

	// Act
	userIDs, err := service.GetRoleUsers(ctx, 3)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 8}, userIDs)
}
