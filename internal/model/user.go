package model

import "time"

type User struct {
	ID            string       `gorm:"column:id;primaryKey" json:"id"`
	Email         string       `gorm:"column:email;uniqueIndex" json:"email"`
	PasswordHash  string       `gorm:"column:password_hash" json:"-"`
	RiskTolerance float64      `gorm:"column:risk_tolerance" json:"risk_tolerance"`
	RiskLevel     string       `gorm:"column:risk_level" json:"risk_level,omitempty"`
	RiskProfile   *RiskProfile `gorm:"column:risk_profile;type:jsonb" json:"risk_profile,omitempty"`
	RiskAnswers   RawJSON      `gorm:"column:risk_answers;type:jsonb" json:"risk_answers,omitempty"`
	EmailVerified bool         `gorm:"column:email_verified" json:"email_verified"`
	CreatedAt     time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// RiskProfile captures the outcome of the onboarding questionnaire.
type RiskProfile struct {
	RiskLevel     string    `json:"riskLevel"`
	AnsweredAt    time.Time `json:"answeredAt"`
	QuestionCount int       `json:"questionCount"`
}
