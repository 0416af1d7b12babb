package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsBuiltIn(t *testing.T) {
	testCases := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin by code", Role{Code: RoleAdmin}, true},
		{"user by code", Role{Code: RoleUser}, true},
		{"flag without builtin code", Role{Code: "MANAGER", BuiltIn: true}, true},
		{"custom role", Role{Code: "MANAGER"}, false},
		{"lowercase admin is not builtin", Role{Code: "admin"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.role.IsBuiltIn())
		})
	}
}

func TestPermission_Category(t *testing.T) {
	testCases := []struct {
		name     string
		code     string
		expected string
	}{
		{"three segments", "sys:user:edit", "sys"},
		{"two segments", "report:view", "report"},
		{"no separator", "standalone", "standalone"},
		{"empty code", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Permission{Code: tc.code}
			assert.Equal(t, tc.expected, p.Category())
		})
	}
}

func TestPrimaryRole(t *testing.T) {
	testCases := []struct {
		name     string
		roles    []Role
		expected string
	}{
		{
			"admin wins regardless of position",
			[]Role{{Code: "MANAGER"}, {Code: RoleAdmin}, {Code: "AUDITOR"}},
			RoleAdmin,
		},
		{
			"first role without admin",
			[]Role{{Code: "MANAGER"}, {Code: "AUDITOR"}},
			"MANAGER",
		},
		{
			"empty set falls back to USER",
			nil,
			RoleUser,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PrimaryRole(tc.roles))
		})
	}
}

func TestUser_IsActive(t *testing.T) {
	assert.True(t, (&User{Status: StatusEnabled}).IsActive())
	assert.False(t, (&User{Status: StatusDisabled}).IsActive())
}
