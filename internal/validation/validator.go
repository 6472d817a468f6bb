package validation

import (
	"path"
	"strings"

	"github.com/swapcloset/swapcloset/internal/models"
)

// Validate checks one candidate file against the policy and returns a
// verdict listing every violated rule. It performs no I/O; sibling files in
// a batch never influence each other's verdict.
func Validate(file models.CandidateFile, policy Policy) models.Verdict {
	ext := DetectExtension(file.Name)

	verdict := models.Verdict{
		Extension: ext,
		MIMEType:  file.MIMEType,
		Size:      file.Size,
	}

	if _, ok := policy.AllowedExtensions[ext]; !ok {
		verdict.Violations = append(verdict.Violations, models.ViolationExtension)
	}

	if _, ok := policy.AllowedMIMETypes[file.MIMEType]; !ok {
		verdict.Violations = append(verdict.Violations, models.ViolationMIMEType)
	}

	if file.Size > policy.MaxSizeBytes {
		verdict.Violations = append(verdict.Violations, models.ViolationSize)
	}

	// Cross-consistency applies only when the extension has a known
	// canonical MIME type; an unknown extension is already covered by the
	// extension rule.
	if canonical, ok := extensionMIME[ext]; ok && canonical != file.MIMEType {
		verdict.Violations = append(verdict.Violations, models.ViolationMismatch)
	}

	verdict.Valid = len(verdict.Violations) == 0
	return verdict
}

// DetectExtension returns the lowercased extension of name without the
// leading dot, or "" when there is none.
func DetectExtension(name string) string {
	ext := strings.ToLower(path.Ext(name))
	return strings.TrimPrefix(ext, ".")
}
