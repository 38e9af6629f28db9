package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// FormSchemaVersion is the version stamped on every FormData written by this build.
const FormSchemaVersion = 1

// DateLayout is the wire format for calendar dates in form data and profiles.
const DateLayout = "2006-01-02"

// Form field keys accepted in onboarding form data.
const (
	FieldFirstName             = "firstName"
	FieldLastName              = "lastName"
	FieldMiddleName            = "middleName"
	FieldPreferredName         = "preferredName"
	FieldSSN                   = "ssn"
	FieldDateOfBirth           = "dateOfBirth"
	FieldGender                = "gender"
	FieldPhone                 = "phone"
	FieldAddress               = "address"
	FieldCity                  = "city"
	FieldState                 = "state"
	FieldZipCode               = "zipCode"
	FieldEmergencyContact      = "emergencyContact"
	FieldEmergencyPhone        = "emergencyPhone"
	FieldEmergencyRelationship = "emergencyRelationship"
	FieldWorkAuthType          = "workAuthType"
	FieldWorkAuthOther         = "workAuthOther"
	FieldVisaStart             = "visaStart"
	FieldVisaEnd               = "visaEnd"
)

const schemaVersionKey = "schemaVersion"

var knownFormFields = map[string]bool{
	FieldFirstName: true, FieldLastName: true, FieldMiddleName: true, FieldPreferredName: true,
	FieldSSN: true, FieldDateOfBirth: true, FieldGender: true, FieldPhone: true,
	FieldAddress: true, FieldCity: true, FieldState: true, FieldZipCode: true,
	FieldEmergencyContact: true, FieldEmergencyPhone: true, FieldEmergencyRelationship: true,
	FieldWorkAuthType: true, FieldWorkAuthOther: true, FieldVisaStart: true, FieldVisaEnd: true,
}

// FormData is the flat key/value payload of an onboarding application.
// Values are primitives only: string, bool or number.
// On the wire it is a single JSON object with a reserved "schemaVersion" key.
type FormData struct {
	SchemaVersion int
	Fields        map[string]any
}

// NewFormData returns an empty form at the current schema version.
func NewFormData() FormData {
	return FormData{SchemaVersion: FormSchemaVersion, Fields: map[string]any{}}
}

// FormDataFrom wraps a plain map, stamping the current schema version.
func FormDataFrom(fields map[string]any) FormData {
	f := NewFormData()
	for k, v := range fields {
		f.Fields[k] = v
	}
	return f
}

func (f FormData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Fields)+1)
	for k, v := range f.Fields {
		out[k] = v
	}
	out[schemaVersionKey] = f.SchemaVersion
	return json.Marshal(out)
}

func (f *FormData) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.SchemaVersion = FormSchemaVersion
	if v, ok := raw[schemaVersionKey]; ok {
		if n, ok := v.(float64); ok {
			f.SchemaVersion = int(n)
		}
		delete(raw, schemaVersionKey)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	f.Fields = raw
	return nil
}

// String returns the value for key as a string, or "" when absent or not a string.
func (f FormData) String(key string) string {
	s, _ := f.Fields[key].(string)
	return s
}

// Has reports whether key holds a non-empty value.
func (f FormData) Has(key string) bool {
	v, ok := f.Fields[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return s != ""
	}
	return true
}

// Merge applies a patch: present keys are set, explicit nil clears, absent keys are untouched.
// The receiver is not modified.
func (f FormData) Merge(p Patch) FormData {
	out := FormData{SchemaVersion: FormSchemaVersion, Fields: make(map[string]any, len(f.Fields)+len(p))}
	for k, v := range f.Fields {
		out.Fields[k] = v
	}
	for k, v := range p {
		if v == nil {
			delete(out.Fields, k)
			continue
		}
		out.Fields[k] = v
	}
	return out
}

// Validate checks the form shape and the fields a submission needs.
func (f FormData) Validate() error {
	if f.SchemaVersion > FormSchemaVersion {
		return NewValidationError(schemaVersionKey, fmt.Sprintf("unsupported version %d", f.SchemaVersion))
	}

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !knownFormFields[k] {
			return NewValidationError(k, "unknown field")
		}
		switch f.Fields[k].(type) {
		case nil, string, bool, float64, int, int32, int64:
		default:
			return NewValidationError(k, "must be a string, number or boolean")
		}
	}

	for _, k := range []string{FieldFirstName, FieldLastName, FieldSSN, FieldDateOfBirth, FieldWorkAuthType} {
		if !f.Has(k) {
			return NewValidationError(k, "is required")
		}
		if _, ok := f.Fields[k].(string); !ok {
			return NewValidationError(k, "must be a string")
		}
	}

	if _, err := time.Parse(DateLayout, f.String(FieldDateOfBirth)); err != nil {
		return NewValidationError(FieldDateOfBirth, "must be a YYYY-MM-DD date")
	}

	authType := WorkAuthType(f.String(FieldWorkAuthType))
	if !authType.Valid() {
		return NewValidationError(FieldWorkAuthType, fmt.Sprintf("unknown work authorization %q", authType))
	}
	if authType == WorkAuthOther && !f.Has(FieldWorkAuthOther) {
		return NewValidationError(FieldWorkAuthOther, "is required when work authorization is other")
	}

	if authType.IsVisaTracked() {
		start, err := time.Parse(DateLayout, f.String(FieldVisaStart))
		if err != nil {
			return NewValidationError(FieldVisaStart, "must be a YYYY-MM-DD date")
		}
		end, err := time.Parse(DateLayout, f.String(FieldVisaEnd))
		if err != nil {
			return NewValidationError(FieldVisaEnd, "must be a YYYY-MM-DD date")
		}
		if end.Before(start) {
			return NewValidationError(FieldVisaEnd, "must not be before visaStart")
		}
	}

	return nil
}

// date parses an optional YYYY-MM-DD field.
func (f FormData) date(key string) *time.Time {
	s := f.String(key)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
