package auth

// Permission constants define the fixed capability catalog. The catalog only
// grows at deploy time; rows are never updated or deleted by the seeder.
const (
	PermCreateBot = "CREATE_BOT"
	PermReadBot   = "READ_BOT"
	PermUpdateBot = "UPDATE_BOT"
	PermDeleteBot = "DELETE_BOT"

	PermCreateKBSource = "CREATE_KB_SOURCE"
	PermReadKBSource   = "READ_KB_SOURCE"
	PermUpdateKBSource = "UPDATE_KB_SOURCE"
	PermDeleteKBSource = "DELETE_KB_SOURCE"

	PermCreateCollection = "CREATE_COLLECTION"
	PermReadCollection   = "READ_COLLECTION"
	PermUpdateCollection = "UPDATE_COLLECTION"
	PermDeleteCollection = "DELETE_COLLECTION"

	PermReadAuditLog = "READ_AUDIT_LOG"
)

// Role names. The first registered user gets RoleSuperAdmin; everyone else
// starts as RoleTenant.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleTenant     = "TENANT"
)

var AllPermissions = []string{
	PermCreateBot, PermReadBot, PermUpdateBot, PermDeleteBot,
	PermCreateKBSource, PermReadKBSource, PermUpdateKBSource, PermDeleteKBSource,
	PermCreateCollection, PermReadCollection, PermUpdateCollection, PermDeleteCollection,
	PermReadAuditLog,
}

var AllRoles = []string{RoleSuperAdmin, RoleTenant}

// RoleGrants maps each role to the permissions it is seeded with. Every role
// currently receives the full catalog; differentiated grants are a data
// change here, not a code change in the seeder.
var RoleGrants = map[string][]string{
	RoleSuperAdmin: AllPermissions,
	RoleTenant:     AllPermissions,
}
