package entity

// Role names known to the application. Every registered user gets
// RoleUser; RoleAdmin is assigned out of band.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Role is an authorization role, many-to-many with User via user_roles.
type Role struct {
	ID   string
	Name string
}
