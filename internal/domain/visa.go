package domain

// VisaFlow is the upload order of visa documents. Each step is gated on approval of the one before.
var VisaFlow = []DocumentType{DocumentOPTReceipt, DocumentOPTEAD, DocumentI983, DocumentI20}

// PreviousVisaStep returns the step that must be approved before t.
func PreviousVisaStep(t DocumentType) (DocumentType, bool) {
	for i, step := range VisaFlow {
		if step == t && i > 0 {
			return VisaFlow[i-1], true
		}
	}
	return "", false
}

// NextVisaStep returns the step following t.
func NextVisaStep(t DocumentType) (DocumentType, bool) {
	for i, step := range VisaFlow {
		if step == t && i+1 < len(VisaFlow) {
			return VisaFlow[i+1], true
		}
	}
	return "", false
}

// CanUpload checks the visa ordering rule against an employee's documents.
// Onboarding documents and the first visa step are always allowed.
func CanUpload(t DocumentType, docs []Document) error {
	if !t.Valid() {
		return NewValidationError("type", "unknown document type "+string(t))
	}
	if t.Category() != DocumentCategoryVisa {
		return nil
	}
	prev, ok := PreviousVisaStep(t)
	if !ok {
		return nil
	}
	if d := findActive(docs, prev); d != nil && d.Status == DocumentStatusApproved {
		return nil
	}
	return &OutOfOrderError{Requested: t, Required: prev}
}

func findActive(docs []Document, t DocumentType) *Document {
	for i := range docs {
		if docs[i].Type == t && docs[i].IsActive() {
			return &docs[i]
		}
	}
	return nil
}
