// Package httpapi exposes the marketplace core over a small JSON/multipart
// HTTP surface: session snapshot, category list and listing creation.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/swapcloset/swapcloset/internal/logging"
)

// Server hosts the HTTP API.
type Server struct {
	address    string
	secret     []byte
	listings   ListingCreator
	categories CategorySource
	profiles   ProfileSource
	logger     logging.Logger

	echo *echo.Echo
}

func NewServer(address string, secret []byte, listings ListingCreator, categories CategorySource, profiles ProfileSource, logger logging.Logger) *Server {
	s := &Server{
		address:    address,
		secret:     secret,
		listings:   listings,
		categories: categories,
		profiles:   profiles,
		logger:     logger.With("module", "httpapi"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	api := e.Group("/api/v1")
	api.GET("/session", s.session)
	api.GET("/categories", s.listCategories)
	api.POST("/listings", s.createListing, requireIdentity(s.secret))

	s.echo = e
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
