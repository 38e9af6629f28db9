package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormData_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f FormData)
		wantField string
	}{
		{"valid", func(f FormData) {}, ""},
		{"missing first name", func(f FormData) { delete(f.Fields, FieldFirstName) }, FieldFirstName},
		{"blank last name", func(f FormData) { f.Fields[FieldLastName] = "" }, FieldLastName},
		{"unknown key", func(f FormData) { f.Fields["favoriteColor"] = "blue" }, "favoriteColor"},
		{"nested value", func(f FormData) { f.Fields[FieldAddress] = map[string]any{"street": "x"} }, FieldAddress},
		{"array value", func(f FormData) { f.Fields[FieldCity] = []any{"a"} }, FieldCity},
		{"bad auth type", func(f FormData) { f.Fields[FieldWorkAuthType] = "tourist" }, FieldWorkAuthType},
		{"visa without end", func(f FormData) { delete(f.Fields, FieldVisaEnd) }, FieldVisaEnd},
		{"visa end before start", func(f FormData) { f.Fields[FieldVisaEnd] = "2024-01-01" }, FieldVisaEnd},
		{"bad birth date", func(f FormData) { f.Fields[FieldDateOfBirth] = "12/10/1990" }, FieldDateOfBirth},
		{"other without title", func(f FormData) { f.Fields[FieldWorkAuthType] = "other" }, FieldWorkAuthOther},
		{"h1b needs no visa dates", func(f FormData) {
			f.Fields[FieldWorkAuthType] = "h1b"
			delete(f.Fields, FieldVisaStart)
			delete(f.Fields, FieldVisaEnd)
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(f)
			err := f.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestFormData_JSON(t *testing.T) {
	var f FormData
	require.NoError(t, json.Unmarshal([]byte(`{"firstName":"Ada","schemaVersion":1,"agree":true}`), &f))

	assert.Equal(t, 1, f.SchemaVersion)
	assert.Equal(t, "Ada", f.String(FieldFirstName))
	assert.Equal(t, true, f.Fields["agree"])
	assert.NotContains(t, f.Fields, "schemaVersion")

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Ada","schemaVersion":1,"agree":true}`, string(out))
}

func TestFormData_Merge(t *testing.T) {
	base := FormDataFrom(map[string]any{FieldFirstName: "Ada", FieldCity: "London", FieldState: "LDN"})

	merged := base.Merge(Patch{FieldCity: "Paris", FieldState: nil, FieldZipCode: "75001"})

	assert.Equal(t, "Ada", merged.String(FieldFirstName))
	assert.Equal(t, "Paris", merged.String(FieldCity))
	assert.NotContains(t, merged.Fields, FieldState)
	assert.Equal(t, "75001", merged.String(FieldZipCode))
	// receiver untouched
	assert.Equal(t, "London", base.String(FieldCity))
	assert.Equal(t, "LDN", base.String(FieldState))
}
