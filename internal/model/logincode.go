package model

import (
	"time"
)

// LoginCodeTTL is how long an issued code stays redeemable.
const LoginCodeTTL = 10 * time.Minute

// LoginCode is a single-use 6-digit code mailed to an address. The code
// itself is stored as a bcrypt hash; CodeHash never leaves the server.
type LoginCode struct {
	Base
	Email    string `db:"email" json:"email"`
	CodeHash string `db:"code_hash" json:"-"`
	Used     bool   `db:"used" json:"used"`
}

// IsValid reports whether the code can still be redeemed at the given
// instant: unused and younger than LoginCodeTTL.
func (c *LoginCode) IsValid(now time.Time) bool {
	return !c.Used && now.Sub(c.CreatedAt) < LoginCodeTTL
}

type RequestCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}
