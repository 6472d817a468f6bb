package models

import "time"

// Category is a known listing category.
type Category struct {
	ID   string
	Name string
}

// Moderation status values for a ListingRecord.
const (
	ListingStatusPending  = "pending"
	ListingStatusApproved = "approved"
	ListingStatusRejected = "rejected"
)

// Exchange preference values.
const (
	ExchangeSwap   = "swap"
	ExchangePoints = "points"
	ExchangeBoth   = "both"
)

// Draft limits.
const (
	MaxDraftFiles     = 5
	MaxDraftTags      = 10
	MaxDraftTagLength = 20
)

// ListingDraft is the user-supplied input for one listing-creation attempt.
// It is consumed exactly once; a failed attempt is never retried
// automatically.
type ListingDraft struct {
	Title        string
	Description  string
	CategoryName string

	Size      string
	Condition string
	Brand     string
	Color     string
	Material  string

	Tags  []string
	Files []CandidateFile

	PointsValue        *int
	ExchangePreference string

	Latitude  *float64
	Longitude *float64

	Available     bool
	TermsAccepted bool
}

// ListingRecord is the persisted result of a successful creation. Updates
// and deletion happen elsewhere; this subsystem only ever creates it.
type ListingRecord struct {
	ID         string
	OwnerID    string
	CategoryID string

	Title       string
	Description string
	Size        string
	Condition   string
	Brand       string
	Color       string
	Material    string
	Tags        []string

	PointsValue        *int
	ExchangePreference string

	Latitude  *float64
	Longitude *float64

	// Images holds the public URLs of the successfully uploaded media, or
	// nil when the draft carried no files.
	Images []string

	// Status is the moderation status, defaulted to pending on creation.
	Status string

	// Engagement counters, zeroed on creation.
	Views int
	Saves int

	Available bool
	CreatedAt time.Time
}
