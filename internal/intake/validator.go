package intake

import (
	"strings"

	"github.com/joseph-ayodele/invoice-intake/constants"
)

// Reasons and warnings surfaced to the user.
const (
	ReasonUnsupportedType = "unsupported file type"
	ReasonTooLarge        = "size exceeds limit"
	WarningNonPDF         = "non-PDF files may be rejected downstream"
)

// CandidateFile is the metadata of a file the user has chosen.
type CandidateFile struct {
	Name      string
	MediaType string
	Size      int64
}

// ValidationOutcome is the verdict of Validate.
// RejectionReason is set only when Admitted is false.
type ValidationOutcome struct {
	Admitted        bool
	Warnings        []string
	RejectionReason string
}

// IsPDF reports whether the candidate is treated as a PDF, by media type or by name.
func (c CandidateFile) IsPDF() bool {
	if strings.EqualFold(strings.TrimSpace(c.MediaType), constants.MediaTypePDF) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(c.Name), ".pdf")
}

// Validate decides locally whether a candidate may be submitted.
// It has no side effects; the size ceiling is checked before the type so the
// reason for an oversized file of an unsupported type is stable.
func Validate(c CandidateFile) ValidationOutcome {
	if c.Size > constants.MaxUploadBytes {
		return ValidationOutcome{RejectionReason: ReasonTooLarge}
	}

	if c.IsPDF() {
		return ValidationOutcome{Admitted: true}
	}

	mt := strings.ToLower(strings.TrimSpace(c.MediaType))
	if _, ok := constants.ImageMediaTypes[mt]; ok {
		return ValidationOutcome{Admitted: true, Warnings: []string{WarningNonPDF}}
	}

	return ValidationOutcome{RejectionReason: ReasonUnsupportedType}
}
