package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type User struct {
	ID             int64      `json:"id"`
	Role           string     `json:"role"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Phone          string     `json:"phone"`
	ProfilePicture string     `json:"-"`
	IsVerified     bool       `json:"is_verified"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Role      string `json:"role,omitempty"`

	// ProfilePicture is the stored path of an already-accepted upload,
	// filled in by the handler, never by the client payload.
	ProfilePicture string `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the public view of a User: no password hash, no secrets.
type Profile struct {
	ID             int64   `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Role           string  `json:"role"`
	IsVerified     bool    `json:"is_verified"`
	ProfilePicture *string `json:"profile_picture"`
}

// Valid user roles
const (
	RoleAdmin         = "admin"
	RolePropertyOwner = "property_owner"
	RoleManager       = "manager"
	RoleAgency        = "agency"
	RoleSecurityGuard = "security_guard"
	RoleGuest         = "guest"
)

var validRoles = map[string]bool{
	RoleAdmin:         true,
	RolePropertyOwner: true,
	RoleManager:       true,
	RoleAgency:        true,
	RoleSecurityGuard: true,
	RoleGuest:         true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

// Validation methods
func (r *RegisterRequest) Validate() error {
	if r.FirstName == "" {
		return fmt.Errorf("first name is required")
	}
	if r.LastName == "" {
		return fmt.Errorf("last name is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !isValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if !isValidPhone(r.Phone) {
		return fmt.Errorf("invalid phone format")
	}
	if r.Role != "" && !validRoles[r.Role] {
		return fmt.Errorf("invalid role")
	}
	return nil
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Helper functions
func isValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

func isValidPhone(phone string) bool {
	phoneRegex := regexp.MustCompile(`^[\+]?[\d\s\-\(\)]+$`)
	return phoneRegex.MatchString(phone) && len(phone) >= 7
}

// Normalize methods
func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Role == "" {
		r.Role = RoleGuest // Default role
	}
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// PublicProfile converts User to its public view. The profile picture
// is rendered as a fully qualified URL only when one is stored.
func (u *User) PublicProfile(backendURL string) *Profile {
	p := &Profile{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		IsVerified: u.IsVerified,
	}
	if u.ProfilePicture != "" {
		url := strings.TrimSuffix(backendURL, "/") + "/" + u.ProfilePicture
		p.ProfilePicture = &url
	}
	return p
}
