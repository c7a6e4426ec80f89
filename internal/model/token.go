package model

import "time"

const (
	TokenPurposeReset  = "reset"
	TokenPurposeVerify = "verify"
)

// AuthToken is a short-lived single-use credential (password reset or
// email verification). Persisting them with an expiry and a consumed
// marker means a process restart neither loses outstanding tokens nor
// allows one to be replayed.
type AuthToken struct {
	Token      string     `gorm:"column:token;primaryKey" json:"-"`
	Email      string     `gorm:"column:email;index" json:"email"`
	Purpose    string     `gorm:"column:purpose" json:"purpose"`
	ExpiresAt  time.Time  `gorm:"column:expires_at" json:"expires_at"`
	ConsumedAt *time.Time `gorm:"column:consumed_at" json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
