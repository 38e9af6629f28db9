package domain

import (
	"sort"
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
)

func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleHR
}

type WorkAuthType string

const (
	WorkAuthCitizen   WorkAuthType = "citizen"
	WorkAuthGreenCard WorkAuthType = "green-card"
	WorkAuthOPT       WorkAuthType = "opt"
	WorkAuthOPTSTEM   WorkAuthType = "opt-stem"
	WorkAuthH1B       WorkAuthType = "h1b"
	WorkAuthL2        WorkAuthType = "l2"
	WorkAuthH4        WorkAuthType = "h4"
	WorkAuthOther     WorkAuthType = "other"
)

var workAuthTypes = map[WorkAuthType]bool{
	WorkAuthCitizen: true, WorkAuthGreenCard: true, WorkAuthOPT: true, WorkAuthOPTSTEM: true,
	WorkAuthH1B: true, WorkAuthL2: true, WorkAuthH4: true, WorkAuthOther: true,
}

func (t WorkAuthType) Valid() bool { return workAuthTypes[t] }

// IsVisaTracked reports whether employees with this authorization go through the visa document pipeline.
func (t WorkAuthType) IsVisaTracked() bool {
	return t == WorkAuthOPT || t == WorkAuthOPTSTEM
}

type Profile struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	MiddleName    string `json:"middle_name"`
	PreferredName string `json:"preferred_name"`
	Phone         string `json:"phone"`
	WorkPhone     string `json:"work_phone"`
}

// WorkAuthorization is the canonical record, written only by onboarding approval.
type WorkAuthorization struct {
	AuthType  WorkAuthType `json:"auth_type"`
	Title     string       `json:"title"`
	StartDate *time.Time   `json:"start_date"`
	EndDate   *time.Time   `json:"end_date"`
}

type User struct {
	ID                int32             `json:"id"`
	Username          string            `json:"username"`
	Email             string            `json:"email"`
	PasswordHash      string            `json:"-"`
	Role              Role              `json:"role"`
	Profile           Profile           `json:"profile"`
	WorkAuthorization WorkAuthorization `json:"work_authorization"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// DisplayName is "First Last", falling back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.Profile.FirstName + " " + u.Profile.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Promote copies approved onboarding fields onto the profile and work authorization.
func (u *User) Promote(form FormData) {
	u.Profile.FirstName = form.String(FieldFirstName)
	u.Profile.LastName = form.String(FieldLastName)
	u.Profile.MiddleName = form.String(FieldMiddleName)
	u.Profile.PreferredName = form.String(FieldPreferredName)
	if form.Has(FieldPhone) {
		u.Profile.Phone = form.String(FieldPhone)
	}

	u.WorkAuthorization = WorkAuthorization{
		AuthType:  WorkAuthType(form.String(FieldWorkAuthType)),
		Title:     form.String(FieldWorkAuthOther),
		StartDate: form.date(FieldVisaStart),
		EndDate:   form.date(FieldVisaEnd),
	}
}

var profilePatchFields = map[string]func(p *Profile) *string{
	"firstName":     func(p *Profile) *string { return &p.FirstName },
	"lastName":      func(p *Profile) *string { return &p.LastName },
	"middleName":    func(p *Profile) *string { return &p.MiddleName },
	"preferredName": func(p *Profile) *string { return &p.PreferredName },
	"phone":         func(p *Profile) *string { return &p.Phone },
	"workPhone":     func(p *Profile) *string { return &p.WorkPhone },
}

// ApplyProfilePatch updates only the profile keys present in p.
// Names may be changed but not cleared. The user is untouched on error.
func (u *User) ApplyProfilePatch(p Patch) error {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	next := u.Profile
	for _, k := range keys {
		target, ok := profilePatchFields[k]
		if !ok {
			return NewValidationError(k, "not an editable profile field")
		}
		value, _, err := p.stringField(k)
		if err != nil {
			return err
		}
		if value == nil {
			if k == "firstName" || k == "lastName" {
				return NewValidationError(k, "cannot be cleared")
			}
			*target(&next) = ""
			continue
		}
		*target(&next) = strings.TrimSpace(*value)
	}
	u.Profile = next
	return nil
}
