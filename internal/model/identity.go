package model

// Role is the identity-service role of a user.
type Role string

const (
	RoleStudent  Role = "STUDENT"
	RoleLecturer Role = "LECTURER"
	RoleAdmin    Role = "ADMIN"
)

// UserView is the read-only user shape owned by the identity service.
type UserView struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	GradeID   *int64 `json:"gradeId,omitempty"`
	GradeName string `json:"gradeName,omitempty"`
}

// GradeView is the read-only grade shape owned by the identity service.
type GradeView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Principal is the authenticated acting user, established by the transport adapter.
// The core trusts it as given.
type Principal struct {
	UserID int64
	Role   Role
}

// Authenticated reports whether an acting user id is present.
func (p Principal) Authenticated() bool { return p.UserID > 0 }

func (p Principal) IsAdmin() bool    { return p.Role == RoleAdmin }
func (p Principal) IsStudent() bool  { return p.Role == RoleStudent }
func (p Principal) IsLecturer() bool { return p.Role == RoleLecturer }
