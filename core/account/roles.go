package account

// Roles, straight from the access-control chapter.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
	RoleViewer  = "viewer"
)

// Permissions
const (
	PermRead           = "read"
	PermWrite          = "write"
	PermDelete         = "delete"
	PermManageUsers    = "manage_users"
	PermViewAnalytics  = "view_analytics"
	PermSystemSettings = "system_settings"
	PermManageTeam     = "manage_team"
	PermEditProfile    = "edit_profile"
)

type Role struct {
	Name        string   `json:"name"`
	Value       string   `json:"value"`
	Permissions []string `json:"permissions"`
}

// RolePermissions is the whole access model: a plain role -> permissions map,
// checked by membership tests. Centralized on purpose, as the chapter
// teaches: change a role here and every holder is affected.
var RolePermissions = map[string][]string{
	RoleAdmin:   {PermRead, PermWrite, PermDelete, PermManageUsers, PermViewAnalytics, PermSystemSettings},
	RoleManager: {PermRead, PermWrite, PermViewAnalytics, PermManageTeam},
	RoleUser:    {PermRead, PermWrite, PermEditProfile},
	RoleViewer:  {PermRead},
}

// PageAccess lists which roles may open which lesson-app page.
var PageAccess = map[string][]string{
	"home":      {RoleAdmin, RoleManager, RoleUser, RoleViewer},
	"dashboard": {RoleAdmin, RoleManager, RoleUser},
	"analytics": {RoleAdmin, RoleManager},
	"users":     {RoleAdmin},
	"settings":  {RoleAdmin},
}

var Roles = []Role{
	{Name: "Viewer", Value: RoleViewer, Permissions: RolePermissions[RoleViewer]},
	{Name: "User", Value: RoleUser, Permissions: RolePermissions[RoleUser]},
	{Name: "Manager", Value: RoleManager, Permissions: RolePermissions[RoleManager]},
	{Name: "Admin", Value: RoleAdmin, Permissions: RolePermissions[RoleAdmin]},
}

func IsValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

// PermissionsFor returns the permission set granted to role; nil for an
// unknown role.
func PermissionsFor(role string) []string {
	return RolePermissions[role]
}

// HasPermission is a simple membership test on the role's permission list.
func HasPermission(role, permission string) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// CanAccessPage is a simple membership test on the page's access list.
// Unknown pages are open to everyone; the chapters only guard the pages they
// name.
func CanAccessPage(role, page string) bool {
	allowed, ok := PageAccess[page]
	if !ok {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// KnownPage reports whether page appears in the access table.
func KnownPage(page string) bool {
	_, ok := PageAccess[page]
	return ok
}
