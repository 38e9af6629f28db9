package domain

import (
	"fmt"
	"time"
)

const (
	HistoryActionStarted    = "Started Onboarding"
	HistoryActionSubmission = "Submission"
	historyActionReview     = "HR Review: "
)

type HistoryEntry struct {
	Status    ApplicationStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
}

// OnboardingApplication is the versioned onboarding record of one employee.
// History is append-only and its last entry always carries the current status.
type OnboardingApplication struct {
	ID          int32             `json:"id"`
	UserID      int32             `json:"user_id"`
	Status      ApplicationStatus `json:"status"`
	FormData    FormData          `json:"form_data"`
	Version     int32             `json:"version"`
	History     []HistoryEntry    `json:"history"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy  *int32            `json:"reviewed_by,omitempty"`
	HRFeedback  string            `json:"hr_feedback"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewOnboardingApplication returns a never-submitted application at version 0.
func NewOnboardingApplication(userID int32, now time.Time) *OnboardingApplication {
	return &OnboardingApplication{
		UserID:   userID,
		Status:   ApplicationStatusNeverSubmitted,
		FormData: NewFormData(),
		Version:  0,
		History: []HistoryEntry{{
			Status:    ApplicationStatusNeverSubmitted,
			Timestamp: now,
			Action:    HistoryActionStarted,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LastHistory returns the newest history entry.
func (a *OnboardingApplication) LastHistory() HistoryEntry {
	if len(a.History) == 0 {
		return HistoryEntry{}
	}
	return a.History[len(a.History)-1]
}

// Submit moves the application to pending. expectedVersion must match the
// loaded version; on success the version is incremented. The application is
// unchanged on error.
func (a *OnboardingApplication) Submit(form FormData, expectedVersion int32, now time.Time) error {
	if expectedVersion != a.Version {
		return fmt.Errorf("expected version %d, stored %d: %w", expectedVersion, a.Version, ErrOptimisticLockConflict)
	}
	if !CanTransition(a.Status, ApplicationStatusPending) {
		return &TransitionError{Subject: "application", From: string(a.Status), To: string(ApplicationStatusPending)}
	}

	a.FormData = form
	a.FormData.SchemaVersion = FormSchemaVersion
	a.Status = ApplicationStatusPending
	a.SubmittedAt = &now
	a.appendHistory(HistoryActionSubmission, now)
	return nil
}

// Review applies an HR decision to a pending application.
func (a *OnboardingApplication) Review(decision ApplicationStatus, feedback string, reviewerID int32, now time.Time) error {
	if a.Status == ApplicationStatusApproved {
		return fmt.Errorf("application %d: %w", a.ID, ErrAlreadyFinalized)
	}
	if decision != ApplicationStatusApproved && decision != ApplicationStatusRejected {
		return NewValidationError("decision", "must be approved or rejected")
	}
	if a.Status != ApplicationStatusPending || !CanTransition(a.Status, decision) {
		return &TransitionError{Subject: "application", From: string(a.Status), To: string(decision)}
	}

	a.Status = decision
	a.HRFeedback = feedback
	a.ReviewedAt = &now
	a.ReviewedBy = &reviewerID
	a.appendHistory(historyActionReview+string(decision), now)
	return nil
}

func (a *OnboardingApplication) appendHistory(action string, now time.Time) {
	a.History = append(a.History, HistoryEntry{Status: a.Status, Timestamp: now, Action: action})
	a.Version++
	a.UpdatedAt = now
}
