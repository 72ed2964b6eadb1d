package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanEdit(t *testing.T) {
	testCases := []struct {
		name     string
		op       *Operator
		expected bool
	}{
		{"admin", &Operator{Role: RoleAdmin}, true},
		{"moderator", &Operator{Role: RoleModerator}, true},
		{"viewer", &Operator{Role: RoleViewer}, false},
		{"unknown role", &Operator{Role: "owner"}, false},
		{"nil", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.op.CanEdit())
		})
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleViewer.Valid())
	assert.False(t, Role("").Valid())
}
