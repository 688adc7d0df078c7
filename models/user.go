package models

type UserRole string

const (
	RoleWriter UserRole = "writer"
	RoleEditor UserRole = "editor"
	RoleAdmin  UserRole = "admin"
)

// Actor identifies who performs an operation. Users themselves live in the
// identity service; only the id and role carried by the token are known here.
type Actor struct {
	ID   uint     `json:"id"`
	Role UserRole `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
