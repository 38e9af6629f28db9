package domain

import "time"

type DocumentType string

const (
	DocumentIDCard       DocumentType = "id_card"
	DocumentWorkAuth     DocumentType = "work_auth"
	DocumentProfilePhoto DocumentType = "profile_photo"
	DocumentOPTReceipt   DocumentType = "opt_receipt"
	DocumentOPTEAD       DocumentType = "opt_ead"
	DocumentI983         DocumentType = "i_983"
	DocumentI20          DocumentType = "i_20"
)

type DocumentCategory string

const (
	DocumentCategoryOnboarding DocumentCategory = "onboarding"
	DocumentCategoryVisa       DocumentCategory = "visa"
)

type DocumentStatus string

const (
	DocumentStatusNotStarted DocumentStatus = "not_started"
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusApproved   DocumentStatus = "approved"
	DocumentStatusRejected   DocumentStatus = "rejected"
)

// BaselineDocumentTypes are seeded for every employee when onboarding starts.
var BaselineDocumentTypes = []DocumentType{DocumentProfilePhoto, DocumentIDCard, DocumentWorkAuth}

var documentTypes = map[DocumentType]struct {
	category DocumentCategory
	label    string
}{
	DocumentIDCard:       {DocumentCategoryOnboarding, "ID Card"},
	DocumentWorkAuth:     {DocumentCategoryOnboarding, "Work Authorization"},
	DocumentProfilePhoto: {DocumentCategoryOnboarding, "Profile Photo"},
	DocumentOPTReceipt:   {DocumentCategoryVisa, "OPT Receipt"},
	DocumentOPTEAD:       {DocumentCategoryVisa, "OPT EAD"},
	DocumentI983:         {DocumentCategoryVisa, "I-983"},
	DocumentI20:          {DocumentCategoryVisa, "I-20"},
}

func (t DocumentType) Valid() bool {
	_, ok := documentTypes[t]
	return ok
}

func (t DocumentType) Category() DocumentCategory {
	return documentTypes[t].category
}

// Label is the human-readable name used in overview rows and notifications.
func (t DocumentType) Label() string {
	if d, ok := documentTypes[t]; ok {
		return d.label
	}
	return string(t)
}

type Document struct {
	ID         int32            `json:"id"`
	UserID     int32            `json:"user_id"`
	Type       DocumentType     `json:"type"`
	Category   DocumentCategory `json:"category"`
	Status     DocumentStatus   `json:"status"`
	FileName   string           `json:"file_name"`
	FileURL    string           `json:"file_url"`
	Feedback   string           `json:"feedback"`
	UploadedAt *time.Time       `json:"uploaded_at,omitempty"`
	ReviewedAt *time.Time       `json:"reviewed_at,omitempty"`
	ReviewedBy *int32           `json:"reviewed_by,omitempty"`
	DeletedAt  *time.Time       `json:"deleted_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// MarkUploaded records a new file and sends the document back to review.
func (d *Document) MarkUploaded(fileName, fileURL string, now time.Time) {
	d.FileName = fileName
	d.FileURL = fileURL
	d.UploadedAt = &now
	d.Status = DocumentStatusPending
	d.Feedback = ""
	d.ReviewedAt = nil
	d.ReviewedBy = nil
	d.UpdatedAt = now
}

// Review applies an HR decision. Only pending documents can be reviewed.
func (d *Document) Review(decision DocumentStatus, feedback string, reviewerID int32, now time.Time) error {
	if decision != DocumentStatusApproved && decision != DocumentStatusRejected {
		return NewValidationError("decision", "must be approved or rejected")
	}
	if d.Status != DocumentStatusPending {
		return &TransitionError{Subject: "document", From: string(d.Status), To: string(decision)}
	}
	d.Status = decision
	d.Feedback = feedback
	d.ReviewedAt = &now
	d.ReviewedBy = &reviewerID
	d.UpdatedAt = now
	return nil
}

// IsActive reports whether the document has not been soft-deleted.
func (d *Document) IsActive() bool { return d.DeletedAt == nil }
