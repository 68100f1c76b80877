package authz

// Permission names checked by route guards.
const (
	PermViewDashboard     = "view_dashboard"
	PermViewDrivers       = "view_drivers"
	PermManageDrivers     = "manage_drivers"
	PermViewCompanies     = "view_companies"
	PermManageMatching    = "manage_matching"
	PermViewReports       = "view_reports"
	PermManageSettings    = "manage_settings"
	PermManageRequests    = "manage_requests"
	PermSendNotifications = "send_notifications"
	PermViewRoles         = "view_roles"
	PermManageRoles       = "manage_roles"
)

// CatalogEntry describes one permission row seeded into the catalog.
type CatalogEntry struct {
	Name        string
	DisplayName string
	Group       string
}

// Catalog is the default permission set installed by the seeder.
var Catalog = []CatalogEntry{
	{PermViewDashboard, "View dashboard", "dashboard"},
	{PermViewDrivers, "View drivers", "drivers"},
	{PermManageDrivers, "Manage drivers and KYC", "drivers"},
	{PermViewCompanies, "View companies", "companies"},
	{PermManageMatching, "Manage matching", "matching"},
	{PermViewReports, "View reports", "reports"},
	{PermManageSettings, "Manage settings", "settings"},
	{PermManageRequests, "Manage requests", "requests"},
	{PermSendNotifications, "Send notifications", "notifications"},
	{PermViewRoles, "View roles", "access"},
	{PermManageRoles, "Manage roles", "access"},
}
