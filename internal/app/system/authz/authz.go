// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"slices"
	"strings"

	"github.com/dalemusser/rekaphub/internal/app/system/auth"
	"github.com/dalemusser/rekaphub/internal/domain/models"
)

// UserCtx returns the user's role (lowercased), username, profile id and a
// found flag. Without a signed-in user it returns "visitor", "", "", false.
func UserCtx(r *http.Request) (role, username, userID string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ID == "" {
		return "visitor", "", "", false
	}
	return strings.ToLower(user.Role), user.Username, user.ID, true
}

// Period returns the academic period chosen at sign-in.
func Period(r *http.Request) models.PeriodScope {
	if user, ok := auth.CurrentUser(r); ok {
		return user.Period
	}
	return models.PeriodScope{}
}

// HasAnyRole reports whether a signed-in user holds one of roles.
// Roles compare case-insensitively.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	return slices.ContainsFunc(roles, func(want string) bool {
		return strings.EqualFold(role, strings.TrimSpace(want))
	})
}

func IsSuperAdmin(r *http.Request) bool {
	return HasAnyRole(r, models.RoleSuperAdmin)
}

// CanManageAcademic reports whether the current user may read and write
// academic permission and absence records.
func CanManageAcademic(r *http.Request) bool {
	return HasAnyRole(r, models.RoleSuperAdmin, models.RoleAcademicAdmin)
}

// CanManageDormitory reports whether the current user may read and write
// dormitory leave and absence records.
func CanManageDormitory(r *http.Request) bool {
	return HasAnyRole(r, models.RoleSuperAdmin, models.RoleDormitoryAdmin)
}
