// Package company serves company profiles, generating a missing one once
// and caching it in the store for every later request.
package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/amishk599/jobscout/internal/model"
)

type Service struct {
	store    model.CompanyStore
	reviewer model.CompanyReviewer
	logger   *slog.Logger
	group    singleflight.Group
}

// NewService returns a Service. With a nil reviewer only stored profiles
// are served and unknown companies report model.ErrNotFound.
func NewService(store model.CompanyStore, reviewer model.CompanyReviewer, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		reviewer: reviewer,
		logger:   logger,
	}
}

// Profile returns the stored profile for name, reviewing and saving it on
// first request. Concurrent requests for the same company share one review.
func (s *Service) Profile(ctx context.Context, name string) (model.CompanyProfile, error) {
	key := model.CompanyKey(name)
	if key == "" {
		return model.CompanyProfile{}, fmt.Errorf("%w: company name is required", model.ErrInvalidQuery)
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.load(ctx, strings.TrimSpace(name))
	})
	if err != nil {
		return model.CompanyProfile{}, err
	}
	if shared {
		s.logger.Debug("shared company review", "company", name)
	}
	return v.(model.CompanyProfile), nil
}

func (s *Service) load(ctx context.Context, name string) (model.CompanyProfile, error) {
	p, err := s.store.GetCompanyProfile(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, model.ErrNotFound) || s.reviewer == nil {
		return model.CompanyProfile{}, err
	}

	s.logger.Info("reviewing company", "company", name)
	p, err = s.reviewer.Review(ctx, name)
	if err != nil {
		return model.CompanyProfile{}, fmt.Errorf("reviewing %q: %w", name, err)
	}

	saved, err := s.store.SaveCompanyProfile(ctx, p)
	if errors.Is(err, model.ErrDuplicateIdentity) {
		// another process saved it first
		return s.store.GetCompanyProfile(ctx, name)
	}
	if err != nil {
		return model.CompanyProfile{}, err
	}
	return saved, nil
}
