package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func validRegisterRequest() *RegisterRequest {
	return &RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct-horse",
		Phone:     "+1 555 0100",
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(r *RegisterRequest)
		wantErr bool
	}{
		{"valid", func(r *RegisterRequest) {}, false},
		{"missing first name", func(r *RegisterRequest) { r.FirstName = "" }, true},
		{"missing last name", func(r *RegisterRequest) { r.LastName = "" }, true},
		{"missing email", func(r *RegisterRequest) { r.Email = "" }, true},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, true},
		{"missing password", func(r *RegisterRequest) { r.Password = "" }, true},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }, true},
		{"missing phone", func(r *RegisterRequest) { r.Phone = "" }, true},
		{"bad phone", func(r *RegisterRequest) { r.Phone = "abc" }, true},
		{"unknown role", func(r *RegisterRequest) { r.Role = "superuser" }, true},
		{"known role", func(r *RegisterRequest) { r.Role = RoleManager }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegisterRequest()
			tc.mutate(req)
			err := req.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestRegisterRequestNormalizeDefaultsRole(t *testing.T) {
	req := validRegisterRequest()
	req.Email = "  ada@example.com "
	req.Normalize()

	if req.Role != RoleGuest {
		t.Fatalf("expected default role %q, got %q", RoleGuest, req.Role)
	}
	if req.Email != "ada@example.com" {
		t.Fatalf("expected trimmed email, got %q", req.Email)
	}
}

func TestNormalizeKeepsEmailCase(t *testing.T) {
	// Emails are unique case-sensitive as stored.
	req := validRegisterRequest()
	req.Email = "Ada@Example.com"
	req.Normalize()

	if req.Email != "Ada@Example.com" {
		t.Fatalf("email case changed by Normalize: %q", req.Email)
	}
}

func TestPublicProfileExcludesSecrets(t *testing.T) {
	u := &User{
		ID:           7,
		Role:         RolePropertyOwner,
		Email:        "owner@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FirstName:    "Olu",
		LastName:     "Eze",
		Phone:        "+2348012345678",
	}

	p := u.PublicProfile("http://localhost:5000")

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	if strings.Contains(string(raw), u.PasswordHash) {
		t.Fatalf("public profile leaks password hash: %s", raw)
	}
	if p.ProfilePicture != nil {
		t.Fatalf("expected nil profile picture, got %q", *p.ProfilePicture)
	}
}

func TestPublicProfilePictureURL(t *testing.T) {
	u := &User{ID: 1, ProfilePicture: "uploads/images/profilePicture-abc.png"}

	p := u.PublicProfile("http://localhost:5000/")
	if p.ProfilePicture == nil {
		t.Fatal("expected profile picture URL")
	}
	want := "http://localhost:5000/uploads/images/profilePicture-abc.png"
	if *p.ProfilePicture != want {
		t.Fatalf("picture URL mismatch: got %q want %q", *p.ProfilePicture, want)
	}
}
