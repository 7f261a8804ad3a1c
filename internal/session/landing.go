package session

import "toko-kelontong-pos/internal/model"

const (
	PublicLanding       = "/"
	SuperAdminDashboard = "/superadmin/dashboard"
	OwnerDashboard      = "/owner/dashboard"
	KasirDashboard      = "/kasir/dashboard"
)

// LandingRoute maps a role to its dashboard. Unknown or empty roles land on
// the owner dashboard; owner routes still reject them by role.
func LandingRoute(role model.Role) string {
	switch role {
	case model.RoleSuperAdmin:
		return SuperAdminDashboard
	case model.RoleKasir:
		return KasirDashboard
	default:
		return OwnerDashboard
	}
}
