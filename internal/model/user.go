package model

import (
	"github.com/google/uuid"
)

// User accounts are keyed by email and provisioned automatically the
// first time a login code is verified; there is no password.
type User struct {
	Base
	Email string `db:"email" json:"email"`
}

// UserProfile holds the editable part of an account. Onboarding is
// considered complete once both full name and phone number are set.
type UserProfile struct {
	UserID      uuid.UUID `db:"user_id" json:"-"`
	FullName    *string   `db:"full_name" json:"full_name,omitempty"`
	PhoneNumber *string   `db:"phone_number" json:"phone_number,omitempty"`
	AvatarURL   *string   `db:"avatar_url" json:"avatar_url,omitempty"`
}

// OnboardingRequired reports whether the profile still misses fields
// the client must collect before normal use.
func (p *UserProfile) OnboardingRequired() bool {
	return p.FullName == nil || *p.FullName == "" || p.PhoneNumber == nil || *p.PhoneNumber == ""
}

type UpdateProfileRequest struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	AvatarURL   *string `json:"avatar_url"`
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken        string `json:"access_token"`
	RefreshToken       string `json:"refresh_token"`
	UserID             string `json:"user_id"`
	OnboardingRequired bool   `json:"onboarding_required"`
}

// TokenClaims is the validated identity extracted from a JWT.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}
