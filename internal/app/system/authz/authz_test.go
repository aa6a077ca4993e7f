package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/app/system/authz"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func reqAs(role string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	return auth.WithTestUser(req, &auth.SessionUser{
		ID:       "p1",
		Username: "siti",
		Role:     role,
		Period:   models.PeriodScope{AcademicYear: "2024/2025", Semester: "2"},
	})
}

func TestUserCtx_NoUser(t *testing.T) {
	role, name, id, ok := authz.UserCtx(httptest.NewRequest("GET", "/", nil))
	assert.False(t, ok)
	assert.Equal(t, "visitor", role)
	assert.Empty(t, name)
	assert.Empty(t, id)
}

func TestUserCtx_LowercasesRole(t *testing.T) {
	role, name, id, ok := authz.UserCtx(reqAs("Super_Admin"))
	assert.True(t, ok)
	assert.Equal(t, models.RoleSuperAdmin, role)
	assert.Equal(t, "siti", name)
	assert.Equal(t, "p1", id)
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, models.PeriodScope{AcademicYear: "2024/2025", Semester: "2"}, authz.Period(reqAs(models.RoleAcademicAdmin)))
	assert.True(t, authz.Period(httptest.NewRequest("GET", "/", nil)).IsZero())
}

func TestRoleChecks(t *testing.T) {
	tests := []struct {
		role      string
		super     bool
		academic  bool
		dormitory bool
	}{
		{models.RoleSuperAdmin, true, true, true},
		{models.RoleAcademicAdmin, false, true, false},
		{models.RoleDormitoryAdmin, false, false, true},
		{"guest", false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			r := reqAs(tc.role)
			assert.Equal(t, tc.super, authz.IsSuperAdmin(r))
			assert.Equal(t, tc.academic, authz.CanManageAcademic(r))
			assert.Equal(t, tc.dormitory, authz.CanManageDormitory(r))
		})
	}
}

func TestHasAnyRole(t *testing.T) {
	r := reqAs(models.RoleDormitoryAdmin)
	assert.True(t, authz.HasAnyRole(r, models.RoleAcademicAdmin, " DORMITORY_ADMIN "))
	assert.False(t, authz.HasAnyRole(r, models.RoleAcademicAdmin))
	assert.False(t, authz.HasAnyRole(httptest.NewRequest("GET", "/", nil), models.RoleSuperAdmin))
}
