package models

// UserRole represents the roles a principal can hold.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// User is a principal known to the identity store. The JSON layout matches the
// persisted session record.
type User struct {
	ID        string   `db:"id" json:"id" yaml:"id"`
	Name      string   `db:"name" json:"name" yaml:"name"`
	Email     string   `db:"email" json:"email" yaml:"email"`
	Role      UserRole `db:"role" json:"role" yaml:"role"`
	Matricula *string  `db:"matricula" json:"matricula,omitempty" yaml:"matricula,omitempty"`
	Curso     *string  `db:"curso" json:"curso,omitempty" yaml:"curso,omitempty"`
}

// IsAdmin is a convenience for role checks.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Matricula = cloneString(u.Matricula)
	out.Curso = cloneString(u.Curso)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
