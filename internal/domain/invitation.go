package domain

import "time"

// RegistrationToken is an HR-issued invite. Only the SHA-256 hash of the secret is kept.
type RegistrationToken struct {
	ID        int32      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	UsedBy    *int32     `json:"used_by,omitempty"`
	CreatedBy int32      `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

type InvitationStatus string

const (
	InvitationStatusActive  InvitationStatus = "active"
	InvitationStatusUsed    InvitationStatus = "used"
	InvitationStatusExpired InvitationStatus = "expired"
)

// Status derives the token state at now.
func (t *RegistrationToken) Status(now time.Time) InvitationStatus {
	if t.Used {
		return InvitationStatusUsed
	}
	if !now.Before(t.ExpiresAt) {
		return InvitationStatusExpired
	}
	return InvitationStatusActive
}

// InvitationRecord is one row of the HR invitation history.
type InvitationRecord struct {
	RegistrationToken
	Status              InvitationStatus  `json:"status"`
	OnboardingStatus    ApplicationStatus `json:"onboarding_status,omitempty"`
	OnboardingSubmitted bool              `json:"onboarding_submitted"`
}
