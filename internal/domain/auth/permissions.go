package auth

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	PermBanksRead          = "banks.read"
	PermBanksWrite         = "banks.write"
	PermEvaluationsAssign  = "evaluations.assign"
	PermEvaluationsRespond = "evaluations.respond"
	PermReportsRead        = "reports.read"
	PermReportsReadOwn     = "reports.read_own"
	PermReportsExport      = "reports.export"
	PermAuditRead          = "audit.read"
)

var DefaultPermissions = []string{
	PermBanksRead,
	PermBanksWrite,
	PermEvaluationsAssign,
	PermEvaluationsRespond,
	PermReportsRead,
	PermReportsReadOwn,
	PermReportsExport,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermBanksRead,
		PermBanksWrite,
		PermEvaluationsAssign,
		PermEvaluationsRespond,
		PermReportsRead,
		PermReportsReadOwn,
		PermReportsExport,
		PermAuditRead,
	},
	RoleUser: {
		PermBanksRead,
		PermEvaluationsRespond,
		PermReportsReadOwn,
	},
}
