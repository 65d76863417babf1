package entities

import (
	"fmt"
	"strings"
	"time"
)

// Role is the platform role of a user.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professeur"
)

// ParseRole converts a raw role string into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleStudent, RoleProfessor:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User represents a platform user provisioned from the identity provider.
type User struct {
	ID        int64     // internal user ID
	ClerkID   string    // external identity provider ID
	Email     string    // primary email address
	FirstName string    // given name
	LastName  string    // family name
	Role      Role      // student or professeur
	CreatedAt time.Time // timestamp when the user was provisioned
}

// NewUser creates a student user for the given external identity.
func NewUser(clerkID, email, firstName, lastName string) *User {
	return &User{
		ClerkID:   clerkID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      RoleStudent,
		CreatedAt: time.Now().UTC(),
	}
}

// IsProfessor reports whether the user may author quizzes.
func (u *User) IsProfessor() bool {
	return u.Role == RoleProfessor
}

// FullName returns the display name of the user.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
