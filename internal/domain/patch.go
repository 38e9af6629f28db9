package domain

import "encoding/json"

// Patch is a partial update. Only present keys change; a nil value clears the key.
type Patch map[string]any

// DecodePatch parses a JSON object, keeping explicit nulls as nil entries.
func DecodePatch(data []byte) (Patch, error) {
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, NewValidationError("body", "must be a JSON object")
	}
	if p == nil {
		p = Patch{}
	}
	return p, nil
}

// stringField resolves key for a string-valued target.
// present is false when the key is absent; value is nil when the patch clears it.
func (p Patch) stringField(key string) (value *string, present bool, err error) {
	v, ok := p[key]
	if !ok {
		return nil, false, nil
	}
	if v == nil {
		return nil, true, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, true, NewValidationError(key, "must be a string or null")
	}
	return &s, true, nil
}
