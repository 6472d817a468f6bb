package httpapi

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/swapcloset/swapcloset/internal/auth"
	"github.com/swapcloset/swapcloset/internal/common"
	"github.com/swapcloset/swapcloset/internal/models"
	"github.com/swapcloset/swapcloset/internal/services"
)

// ListingCreator is the slice of the listing service the API needs.
type ListingCreator interface {
	Create(ctx context.Context, draft *models.ListingDraft, ownerID string) (*services.CreationResult, error)
}

// CategorySource lists the known categories.
type CategorySource interface {
	List(ctx context.Context) ([]*models.Category, error)
}

// ProfileSource fetches the profile for a subject; absence is reported with
// common.ErrorNotFound.
type ProfileSource interface {
	ProfileBySubject(ctx context.Context, subject string) (*models.Profile, error)
}

// ----- DTOs -----

type sessionResp struct {
	State    string          `json:"state"` // unauthenticated | incomplete | ready
	Identity *identityPart   `json:"identity,omitempty"`
	Profile  *models.Profile `json:"profile,omitempty"`
}

type identityPart struct {
	Subject string `json:"subject"`
	Email   string `json:"email,omitempty"`
}

type uploadStatsPart struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	TotalCount   int      `json:"total_count"`
	Errors       []string `json:"errors,omitempty"`
}

type createListingResp struct {
	Listing *models.ListingRecord `json:"listing"`
	Upload  *uploadStatsPart      `json:"upload,omitempty"`
}

// ----- handlers -----

// session reports the tri-state session for the caller's bearer token, if
// any. A missing profile for a valid identity is the incomplete state, not
// an error.
func (s *Server) session(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		return c.JSON(http.StatusOK, sessionResp{State: "unauthenticated"})
	}

	identity, err := auth.ParseIdentity(token, s.secret)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	resp := sessionResp{
		State:    "ready",
		Identity: &identityPart{Subject: identity.Subject, Email: identity.Email},
	}

	profile, err := s.profiles.ProfileBySubject(c.Request().Context(), identity.Subject)
	switch {
	case err == nil:
		resp.Profile = profile
	case errors.Is(err, common.ErrorNotFound):
		resp.State = "incomplete"
	default:
		s.logger.Error(c.Request().Context(), "session profile fetch failed", "subject", identity.Subject, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile fetch failed"})
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) listCategories(c echo.Context) error {
	items, err := s.categories.List(c.Request().Context())
	if err != nil {
		s.logger.Error(c.Request().Context(), "category list failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "category list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": items})
}

// createListing accepts a multipart form (listing fields plus up to five
// "images" parts), builds a draft and hands it to the orchestrator.
func (s *Server) createListing(c echo.Context) error {
	identity := identityFrom(c)
	if identity == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}

	draft, err := draftFromForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	result, err := s.listings.Create(c.Request().Context(), draft, identity.Subject)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidDraft), errors.Is(err, common.ErrUnknownCategory):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		case errors.Is(err, common.ErrNoImagesUploaded):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		default:
			s.logger.Error(c.Request().Context(), "listing creation failed", "owner", identity.Subject, "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing creation failed"})
		}
	}

	resp := createListingResp{Listing: result.Listing}
	if result.Upload != nil {
		resp.Upload = &uploadStatsPart{
			SuccessCount: result.Upload.SuccessCount,
			FailureCount: result.Upload.FailureCount,
			TotalCount:   result.Upload.TotalCount,
			Errors:       result.Upload.Errors,
		}
	}
	return c.JSON(http.StatusCreated, resp)
}

// draftFromForm maps the multipart form onto a ListingDraft. Image payloads
// are read fully into memory; per-file size and type checks are not applied
// here, that is the validator's job.
func draftFromForm(c echo.Context) (*models.ListingDraft, error) {
	draft := &models.ListingDraft{
		Title:              c.FormValue("title"),
		Description:        c.FormValue("description"),
		CategoryName:       c.FormValue("category"),
		Size:               c.FormValue("size"),
		Condition:          c.FormValue("condition"),
		Brand:              c.FormValue("brand"),
		Color:              c.FormValue("color"),
		Material:           c.FormValue("material"),
		ExchangePreference: c.FormValue("exchange_preference"),
		Available:          c.FormValue("available") != "false",
		TermsAccepted:      c.FormValue("terms_accepted") == "true",
	}

	if tags := strings.TrimSpace(c.FormValue("tags")); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			draft.Tags = append(draft.Tags, strings.TrimSpace(tag))
		}
	}

	if raw := c.FormValue("points_value"); raw != "" {
		points, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("points_value must be an integer")
		}
		draft.PointsValue = &points
	}

	if lat, lon := c.FormValue("latitude"), c.FormValue("longitude"); lat != "" && lon != "" {
		latF, errLat := strconv.ParseFloat(lat, 64)
		lonF, errLon := strconv.ParseFloat(lon, 64)
		if errLat != nil || errLon != nil {
			return nil, errors.New("latitude/longitude must be numbers")
		}
		draft.Latitude = &latF
		draft.Longitude = &lonF
	}

	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all is fine: a draft may carry zero files.
		return draft, nil
	}

	for _, header := range form.File["images"] {
		file, err := readCandidate(header)
		if err != nil {
			return nil, err
		}
		draft.Files = append(draft.Files, file)
	}

	return draft, nil
}

func readCandidate(header *multipart.FileHeader) (models.CandidateFile, error) {
	src, err := header.Open()
	if err != nil {
		return models.CandidateFile{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.CandidateFile{}, err
	}

	return models.CandidateFile{
		Name:     header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}
