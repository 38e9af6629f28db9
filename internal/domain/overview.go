package domain

import "time"

type ActionType string

const (
	ActionNone   ActionType = "none"
	ActionNotify ActionType = "notify"
	ActionReview ActionType = "review"
)

const (
	StepOnboardingNotApproved = "Onboarding Not Approved"
	StepAllApproved           = "All Documents Approved"
	ActionSubmitOnboarding    = "Submit or Approve Onboarding Application"
)

// VisaOverviewRow is the HR view of one visa-tracked employee. It is computed, never stored.
type VisaOverviewRow struct {
	ApplicationID     int32          `json:"application_id"`
	EmployeeID        int32          `json:"employee_id"`
	EmployeeName      string         `json:"employee_name"`
	Email             string         `json:"email"`
	VisaType          WorkAuthType   `json:"visa_type"`
	StartDate         *time.Time     `json:"start_date"`
	EndDate           *time.Time     `json:"end_date"`
	DaysRemaining     *int           `json:"days_remaining"`
	CurrentStep       string         `json:"current_step"`
	StepStatus        DocumentStatus `json:"step_status"`
	NextAction        string         `json:"next_action"`
	ActionType        ActionType     `json:"action_type"`
	ActionDocument    *Document      `json:"action_document,omitempty"`
	NextDocumentType  DocumentType   `json:"next_document_type,omitempty"`
	ApprovedDocuments []Document     `json:"approved_documents,omitempty"`
}

// OverviewInput is the state the projector reads for one employee.
type OverviewInput struct {
	User              User
	ApplicationID     int32
	ApplicationStatus ApplicationStatus
	Documents         []Document
}

type VisaOverview struct {
	InProgress []VisaOverviewRow `json:"in_progress"`
	All        []VisaOverviewRow `json:"all"`
}

// ProjectVisaOverview derives the overview row for one employee.
// ok is false when the employee's authorization is not visa-tracked.
func ProjectVisaOverview(in OverviewInput, now time.Time) (row VisaOverviewRow, ok bool) {
	auth := in.User.WorkAuthorization
	if !auth.AuthType.IsVisaTracked() {
		return VisaOverviewRow{}, false
	}

	row = VisaOverviewRow{
		ApplicationID: in.ApplicationID,
		EmployeeID:    in.User.ID,
		EmployeeName:  in.User.DisplayName(),
		Email:         in.User.Email,
		VisaType:      auth.AuthType,
		StartDate:     auth.StartDate,
		EndDate:       auth.EndDate,
		DaysRemaining: DaysRemaining(auth.EndDate, now),
	}

	if in.ApplicationStatus != ApplicationStatusApproved {
		row.CurrentStep = StepOnboardingNotApproved
		row.StepStatus = DocumentStatusPending
		row.NextAction = ActionSubmitOnboarding
		row.ActionType = ActionNone
		return row, true
	}

	for _, step := range VisaFlow {
		doc := findActive(in.Documents, step)
		label := step.Label()
		switch {
		case doc == nil || doc.Status == DocumentStatusNotStarted:
			row.CurrentStep = "Waiting for " + label
			row.StepStatus = DocumentStatusNotStarted
			row.NextAction = "Remind employee to upload " + label
			row.ActionType = ActionNotify
			row.NextDocumentType = step
			return row, true
		case doc.Status == DocumentStatusRejected:
			row.CurrentStep = label + " Rejected"
			row.StepStatus = DocumentStatusRejected
			row.NextAction = "Waiting for employee to re-upload " + label
			row.ActionType = ActionReview
			row.ActionDocument = doc
			row.NextDocumentType = step
			return row, true
		case doc.Status == DocumentStatusPending:
			row.CurrentStep = label + " Pending Approval"
			row.StepStatus = DocumentStatusPending
			row.NextAction = "Review " + label
			row.ActionType = ActionReview
			row.ActionDocument = doc
			row.NextDocumentType = step
			return row, true
		}
	}

	row.CurrentStep = StepAllApproved
	row.StepStatus = DocumentStatusApproved
	row.NextAction = "None"
	row.ActionType = ActionNone
	for _, step := range VisaFlow {
		row.ApprovedDocuments = append(row.ApprovedDocuments, *findActive(in.Documents, step))
	}
	return row, true
}

// BuildVisaOverview projects every input and splits the rows into the in-progress and full views.
func BuildVisaOverview(inputs []OverviewInput, now time.Time) VisaOverview {
	out := VisaOverview{InProgress: []VisaOverviewRow{}, All: []VisaOverviewRow{}}
	for _, in := range inputs {
		row, ok := ProjectVisaOverview(in, now)
		if !ok {
			continue
		}
		out.All = append(out.All, row)
		if row.StepStatus != DocumentStatusApproved {
			out.InProgress = append(out.InProgress, row)
		}
	}
	return out
}

// DaysRemaining counts whole calendar days from now until end, both taken at
// midnight in now's location. Past dates give 0; a nil end gives nil.
func DaysRemaining(end *time.Time, now time.Time) *int {
	if end == nil {
		return nil
	}
	ey, em, ed := end.Date()
	ny, nm, nd := now.Date()
	endDay := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)

	days := int(endDay.Sub(today).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}
