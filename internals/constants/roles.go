package constants

import "fmt"

const (
	RoleUser           = "user"
	RoleSessionManager = "session_manager"
	RoleAdmin          = "admin"
	RoleOwner          = "owner"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess   = "❌ Hanya admin yang boleh mengakses fitur %s."
	ErrOnlyManagersCanAccess = "❌ Hanya session manager, admin, atau owner yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorManager(feature string) string {
	return fmt.Sprintf(ErrOnlyManagersCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleUser,
		RoleSessionManager,
		RoleAdmin,
		RoleOwner,
	}

	ManagerAndAbove = []string{
		RoleSessionManager,
		RoleAdmin,
		RoleOwner,
	}

	AdminAndAbove = []string{
		RoleAdmin,
		RoleOwner,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)

// IsAdminRole dipakai decision engine untuk kebijakan self check-in admin.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleOwner
}
