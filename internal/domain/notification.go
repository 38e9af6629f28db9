package domain

import (
	"fmt"
	"strconv"
	"time"
)

type NotificationKind string

const (
	NotificationOnboardingApproved        NotificationKind = "ONBOARDING_APPROVED"
	NotificationOnboardingRejected        NotificationKind = "ONBOARDING_REJECTED"
	NotificationVisaUploadRequired        NotificationKind = "VISA_UPLOAD_REQUIRED"
	NotificationDocumentApproved          NotificationKind = "DOCUMENT_APPROVED"
	NotificationDocumentRejected          NotificationKind = "DOCUMENT_REJECTED"
	NotificationWorkAuthorizationExpiring NotificationKind = "WORK_AUTHORIZATION_EXPIRING"
)

const defaultDecisionMessage = "Your application status has been updated."

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	Kind       NotificationKind  `json:"kind"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OnboardingDecisionNotification tells an employee the outcome of their application review.
func OnboardingDecisionNotification(app *OnboardingApplication) Notification {
	n := Notification{
		UserID:     app.UserID,
		Message:    app.HRFeedback,
		Attributes: map[string]string{"application_id": strconv.Itoa(int(app.ID))},
	}
	if n.Message == "" {
		n.Message = defaultDecisionMessage
	}
	if app.Status == ApplicationStatusApproved {
		n.Kind = NotificationOnboardingApproved
		n.Title = "Onboarding Approved"
	} else {
		n.Kind = NotificationOnboardingRejected
		n.Title = "Onboarding Rejected"
	}
	return n
}

// DocumentDecisionNotification tells an employee how HR reviewed one of their documents.
func DocumentDecisionNotification(doc *Document) Notification {
	n := Notification{
		UserID: doc.UserID,
		Attributes: map[string]string{
			"document_id":   strconv.Itoa(int(doc.ID)),
			"document_type": string(doc.Type),
		},
	}
	label := doc.Type.Label()
	if doc.Status == DocumentStatusApproved {
		n.Kind = NotificationDocumentApproved
		n.Title = label + " Approved"
		n.Message = fmt.Sprintf("Your %s has been approved.", label)
		if next, ok := NextVisaStep(doc.Type); ok {
			n.Message += fmt.Sprintf(" You can now upload your %s.", next.Label())
		}
	} else {
		n.Kind = NotificationDocumentRejected
		n.Title = label + " Rejected"
		n.Message = fmt.Sprintf("Your %s was rejected. Please upload a new file.", label)
		if doc.Feedback != "" {
			n.Message += " Feedback: " + doc.Feedback
		}
	}
	return n
}

// VisaUploadRequiredNotification reminds an employee of the next visa document to upload.
func VisaUploadRequiredNotification(userID int32, t DocumentType) Notification {
	return Notification{
		UserID:     userID,
		Kind:       NotificationVisaUploadRequired,
		Title:      "Action Required: " + t.Label(),
		Message:    fmt.Sprintf("Please upload your %s to continue your visa process.", t.Label()),
		Attributes: map[string]string{"document_type": string(t)},
	}
}

// AuthorizationExpiringNotification warns an employee that their work authorization ends soon.
func AuthorizationExpiringNotification(userID int32, daysRemaining int, end time.Time) Notification {
	return Notification{
		UserID:  userID,
		Kind:    NotificationWorkAuthorizationExpiring,
		Title:   "Work Authorization Expiring",
		Message: fmt.Sprintf("Your work authorization expires on %s (%d days remaining).", end.Format(DateLayout), daysRemaining),
		Attributes: map[string]string{
			"days_remaining": strconv.Itoa(daysRemaining),
			"end_date":       end.Format(DateLayout),
		},
	}
}
