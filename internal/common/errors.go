// Package common defines shared constants and sentinel errors used across
// the swapcloset components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors. An expected-absent record (no profile yet,
	// unknown category) is reported with ErrorNotFound and is not fatal by
	// itself; the caller decides.
	ErrorNotFound = errors.New("not found")

	// Listing creation errors.
	ErrInvalidDraft     = errors.New("invalid listing draft")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrNoImagesUploaded = errors.New("no images uploaded")

	// Upload batch errors.
	ErrEmptyBatch     = errors.New("empty upload batch")
	ErrBucketRequired = errors.New("bucket is required")
	ErrMalformedFile  = errors.New("malformed candidate file")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
