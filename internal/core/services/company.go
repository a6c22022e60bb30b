package services

import (
	"context"
	"fmt"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Ensure CompanyService implements the interface.
var _ driving.CompanyService = (*CompanyService)(nil)

// CompanyService exposes the company roster and the entity resolver.
type CompanyService struct {
	store     driven.FragmentStore
	resolver  *EntityResolver
	threshold float64
}

// CompanyOption configures a CompanyService.
type CompanyOption func(*CompanyService)

// WithFuzzyThreshold sets the cutoff used when Resolve is given none.
func WithFuzzyThreshold(t float64) CompanyOption {
	return func(s *CompanyService) {
		if t > 0 && t <= 100 {
			s.threshold = t
		}
	}
}

// NewCompanyService creates a company service. A nil resolver gets an
// empty one with the default synonyms.
func NewCompanyService(store driven.FragmentStore, resolver *EntityResolver,
	opts ...CompanyOption) *CompanyService {
	if resolver == nil {
		resolver = NewEntityResolver(nil, nil)
	}
	s := &CompanyService{store: store, resolver: resolver, threshold: DefaultFuzzyThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the company names known to the store.
func (s *CompanyService) List(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	names, err := s.store.CompanyNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return names, nil
}

// Resolve maps mention to a canonical name. A threshold <= 0 uses the
// configured cutoff.
func (s *CompanyService) Resolve(mention string, threshold float64) (string, bool) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	return s.resolver.ResolveWithThreshold(mention, threshold)
}

// Refresh reloads the resolver roster from the store.
func (s *CompanyService) Refresh(ctx context.Context) (int, error) {
	names, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	s.resolver.UpdateCompanyList(names)
	logger.Debug("Company roster refreshed: %d companies", len(names))
	return len(names), nil
}
