package auth

const UserStatusActive = "active"

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	UserID    string
	CompanyID string
	RoleID    string
	RoleName  string
}

func (u UserContext) IsAdmin() bool {
	return u.RoleName == RoleAdmin
}

type AuthUser struct {
	ID        string
	CompanyID string
	RoleID    string
	RoleName  string
	FullName  string
	Password  string
}

type LoginResult struct {
	Token string            `json:"token"`
	User  map[string]string `json:"user"`
}
