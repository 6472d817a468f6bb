package models

// CandidateFile is a user-selected, not-yet-uploaded binary payload plus the
// metadata the user agent declared for it. It is ephemeral and never
// persisted as-is.
type CandidateFile struct {
	Name     string
	MIMEType string
	Size     int64
	Data     []byte
}

// Violation identifies a single validation rule a candidate file failed.
type Violation string

const (
	// ViolationExtension: the filename extension is not in the allowed set.
	ViolationExtension Violation = "extension_not_allowed"
	// ViolationMIMEType: the declared MIME type is not in the allowed set.
	ViolationMIMEType Violation = "mime_type_not_allowed"
	// ViolationSize: the payload exceeds the maximum byte size.
	ViolationSize Violation = "file_too_large"
	// ViolationMismatch: the extension maps to a MIME type that contradicts
	// the declared one. Distinct from the extension and MIME rules: each may
	// pass individually while the pair is inconsistent.
	ViolationMismatch Violation = "extension_mime_mismatch"
)

// Verdict is the result of validating one CandidateFile against a policy.
// It is a pure function of (file, policy); all violated rules are reported
// together, never just the first one detected.
type Verdict struct {
	Valid      bool
	Violations []Violation

	// Extension is the detected (lowercased, dot-less) filename extension.
	Extension string
	// MIMEType is the declared MIME type.
	MIMEType string
	// Size is the payload length in bytes.
	Size int64
}

// UploadOutcome records what happened to a single candidate file within a
// batch: either a durable public URL and storage path, or the reason it was
// rejected. A validation rejection carries the Verdict; a transport failure
// carries the raw error message only.
type UploadOutcome struct {
	FileName string
	Success  bool

	URL  string
	Path string

	Error   string
	Verdict *Verdict
}

// BatchUploadResult aggregates per-file outcomes.
//
// Invariants: SuccessCount+FailureCount == TotalCount, and a URL appears in
// URLs iff its originating outcome succeeded.
type BatchUploadResult struct {
	SuccessCount int
	FailureCount int
	TotalCount   int

	URLs   []string
	Errors []string

	Outcomes []UploadOutcome
}
