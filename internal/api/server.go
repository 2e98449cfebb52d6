package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/amishk599/jobscout/internal/company"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/query"
)

// Server exposes the read API consumed by the review UI.
type Server struct {
	echo      *echo.Echo
	query     *query.Service
	companies *company.Service
	logger    *slog.Logger
}

// NewServer wires the routes. metrics may be nil to omit /metrics and
// companies may be nil to omit the company profile route.
func NewServer(svc *query.Service, companies *company.Service, metrics http.Handler, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, query: svc, companies: companies, logger: logger}
	e.HTTPErrorHandler = s.handleError

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	g := e.Group("/api")
	g.GET("/postings", s.listPostings)
	g.GET("/postings/:id", s.getPosting)
	g.GET("/locations", s.listLocations)
	if companies != nil {
		g.GET("/companies/:name", s.getCompany)
	}
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down api")
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		msg = http.StatusText(code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	case errors.Is(err, model.ErrNotFound):
		code = http.StatusNotFound
		msg = "not found"
	case errors.Is(err, model.ErrInvalidQuery):
		code = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, model.ErrExtractionFailed):
		code = http.StatusBadGateway
		msg = "company review failed"
	}

	req := c.Request()
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", req.Method, "path", req.URL.Path, "status", code, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", req.Method, "path", req.URL.Path, "status", code, "error", err)
	}
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}

func (s *Server) listPostings(c echo.Context) error {
	order, err := query.ParseSort(c.QueryParam("sort"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	postings, err := s.query.Search(c.Request().Context(), query.Filter{
		Text:     c.QueryParam("q"),
		Location: c.QueryParam("location"),
		Sort:     order,
	})
	if err != nil {
		return err
	}

	out := make([]postingJSON, len(postings))
	for i, p := range postings {
		out[i] = toPostingJSON(p)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getPosting(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid posting id")
	}

	d, err := s.query.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	out := detailJSON{Posting: toPostingJSON(d.Posting)}
	if d.Summary != nil {
		sum := toSummaryJSON(*d.Summary)
		out.Summary = &sum
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) listLocations(c echo.Context) error {
	locations, err := s.query.DistinctLocations(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, locations)
}

func (s *Server) getCompany(c echo.Context) error {
	p, err := s.companies.Profile(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCompanyJSON(p))
}
