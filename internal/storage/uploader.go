package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/swapcloset/swapcloset/internal/common"
	"github.com/swapcloset/swapcloset/internal/logging"
	"github.com/swapcloset/swapcloset/internal/models"
	"github.com/swapcloset/swapcloset/internal/validation"
)

// UploadOptions parameterizes one batch.
type UploadOptions struct {
	// Bucket is required.
	Bucket string
	// Folder is an optional key prefix, e.g. "listings".
	Folder string
}

// Uploader validates and uploads batches of candidate files. A batch is
// never all-or-nothing: every file gets an independent outcome and partial
// success is reported, not hidden.
type Uploader struct {
	store  ObjectStore
	policy validation.Policy
	logger logging.Logger
}

func NewUploader(store ObjectStore, policy validation.Policy, logger logging.Logger) *Uploader {
	return &Uploader{
		store:  store,
		policy: policy,
		logger: logger.With("module", "uploader"),
	}
}

// UploadBatch validates and uploads the given files concurrently.
//
// It returns an error only for batch-level misuse: an empty file list, a
// missing bucket, or a malformed candidate (empty name or nil payload).
// Per-file validation and transport failures never abort sibling files;
// they are recorded in the returned result instead.
func (u *Uploader) UploadBatch(ctx context.Context, files []models.CandidateFile, opts UploadOptions) (*models.BatchUploadResult, error) {
	if len(files) == 0 {
		return nil, common.ErrEmptyBatch
	}
	if opts.Bucket == "" {
		return nil, common.ErrBucketRequired
	}
	for i, f := range files {
		if f.Name == "" || f.Data == nil {
			return nil, fmt.Errorf("file %d: %w", i, common.ErrMalformedFile)
		}
	}

	outcomes := make([]models.UploadOutcome, len(files))

	var wg sync.WaitGroup
	for i := range files {
		wg.Add(1)
		go func(i int, file models.CandidateFile) {
			defer wg.Done()
			outcomes[i] = u.uploadOne(ctx, file, opts)
		}(i, files[i])
	}
	wg.Wait()

	result := &models.BatchUploadResult{
		TotalCount: len(files),
		Outcomes:   outcomes,
	}
	for _, o := range outcomes {
		if o.Success {
			result.SuccessCount++
			result.URLs = append(result.URLs, o.URL)
		} else {
			result.FailureCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", o.FileName, o.Error))
		}
	}

	return result, nil
}

// UploadOne is the single-file convenience form: it delegates to UploadBatch
// and unwraps the sole outcome.
func (u *Uploader) UploadOne(ctx context.Context, file models.CandidateFile, opts UploadOptions) (*models.UploadOutcome, error) {
	result, err := u.UploadBatch(ctx, []models.CandidateFile{file}, opts)
	if err != nil {
		return nil, err
	}
	return &result.Outcomes[0], nil
}

func (u *Uploader) uploadOne(ctx context.Context, file models.CandidateFile, opts UploadOptions) models.UploadOutcome {
	verdict := validation.Validate(file, u.policy)
	if !verdict.Valid {
		return models.UploadOutcome{
			FileName: file.Name,
			Error:    describeViolations(verdict.Violations),
			Verdict:  &verdict,
		}
	}

	key, err := StorageKey(file.Name, opts.Folder)
	if err != nil {
		return models.UploadOutcome{FileName: file.Name, Error: err.Error()}
	}

	if err := u.store.Put(ctx, opts.Bucket, key, file.Data, file.MIMEType); err != nil {
		u.logger.Warn(ctx, "upload failed", "file", file.Name, "key", key, "error", err)
		return models.UploadOutcome{FileName: file.Name, Error: err.Error()}
	}

	return models.UploadOutcome{
		FileName: file.Name,
		Success:  true,
		URL:      u.store.PublicURL(opts.Bucket, key),
		Path:     key,
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// StorageKey derives a collision-resistant object key: the sanitized base
// name plus a millisecond timestamp and a random token, preserving the
// original extension, under the optional folder prefix.
func StorageKey(fileName, folder string) (string, error) {
	ext := validation.DetectExtension(fileName)

	base := fileName
	if ext != "" {
		base = strings.TrimSuffix(base, "."+ext)
	}
	base = unsafeKeyChars.ReplaceAllString(base, "_")
	if base == "" {
		base = "file"
	}

	token, err := common.MakeRandHexString(4)
	if err != nil {
		return "", fmt.Errorf("random token: %w", err)
	}

	key := fmt.Sprintf("%s_%d_%s", base, time.Now().UnixMilli(), token)
	if ext != "" {
		key = key + "." + ext
	}
	if folder != "" {
		key = strings.Trim(folder, "/") + "/" + key
	}
	return key, nil
}

func describeViolations(violations []models.Violation) string {
	parts := make([]string, len(violations))
	for i, v := range violations {
		switch v {
		case models.ViolationExtension:
			parts[i] = "extension not allowed"
		case models.ViolationMIMEType:
			parts[i] = "mime type not allowed"
		case models.ViolationSize:
			parts[i] = "file size exceeds limit"
		case models.ViolationMismatch:
			parts[i] = "extension does not match declared mime type"
		default:
			parts[i] = string(v)
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
