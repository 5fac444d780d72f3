// Package schemas holds the shared data model for the campus graph:
// identities, departments, social edges, marketplace entities, and the
// store interfaces the engines consume.
package schemas

import "fmt"

// IdentityKind is the closed set of identity node labels. Role lookups
// dispatch on this enumeration, never on caller-supplied strings.
type IdentityKind string

const (
	KindStudent IdentityKind = "Student"
	KindAlumni  IdentityKind = "Alumni"
	KindFaculty IdentityKind = "Faculty"
)

// ParseIdentityKind maps a raw role string onto the enumeration.
func ParseIdentityKind(s string) (IdentityKind, error) {
	switch IdentityKind(s) {
	case KindStudent, KindAlumni, KindFaculty:
		return IdentityKind(s), nil
	default:
		return "", fmt.Errorf("unknown identity kind %q", s)
	}
}

// Valid reports whether the kind is one of the three known labels.
func (k IdentityKind) Valid() bool {
	_, err := ParseIdentityKind(string(k))
	return err == nil
}

// DepartmentEdge returns the academic/employment edge type linking an
// identity of this kind to its department.
func (k IdentityKind) DepartmentEdge() string {
	switch k {
	case KindStudent:
		return RelStudiesIn
	case KindAlumni:
		return RelStudiedIn
	case KindFaculty:
		return RelWorksIn
	default:
		return ""
	}
}

// Identity is the display projection of a Student, Alumni, or Faculty
// node. Email is the globally unique key across all identity kinds.
// Identity records are created by the directory; the engines treat
// them as read-only.
type Identity struct {
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Kind  IdentityKind `json:"kind"`
}

// Department is a department node. Read-only to the core engines; used
// only for the same-department recommendation signal.
type Department struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Branches []string `json:"branches,omitempty"`
}
