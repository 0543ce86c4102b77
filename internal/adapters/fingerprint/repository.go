// Package fingerprint resolves the manufacturer behind a MAC address.
package fingerprint

import (
	"context"
	"errors"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// Randomized is reported for locally administered addresses, which carry
// no registered OUI.
const Randomized = "Randomized"

// VendorRepository looks up device vendors by MAC address. Every
// implementation satisfies ports.VendorLookup.
type VendorRepository interface {
	// LookupVendor returns the vendor name for a given MAC address
	LookupVendor(ctx context.Context, mac domain.MAC) (string, error)

	// Close releases any resources held by the repository
	Close() error
}

// VendorWriter stores registry entries for later lookups.
type VendorWriter interface {
	BulkInsertOUIs(ctx context.Context, entries []OUIEntry) error
}

// RepositoryStats contains statistics about a vendor repository
type RepositoryStats struct {
	TotalEntries int
	CacheHits    int64
	CacheMisses  int64
	LastUpdated  string
}

// CompositeVendorRepository tries multiple repositories in order.
type CompositeVendorRepository struct {
	repositories []VendorRepository
}

// NewCompositeVendorRepository creates a repository that tries each of
// repos in order until one succeeds.
func NewCompositeVendorRepository(repos ...VendorRepository) *CompositeVendorRepository {
	return &CompositeVendorRepository{
		repositories: repos,
	}
}

// LookupVendor tries each repository in order until one returns a result.
// Locally administered addresses short-circuit to Randomized.
func (c *CompositeVendorRepository) LookupVendor(ctx context.Context, mac domain.MAC) (string, error) {
	if mac.IsLocallyAdministered() {
		return Randomized, nil
	}

	var lastErr error
	for _, repo := range c.repositories {
		vendor, err := repo.LookupVendor(ctx, mac)
		if err == nil && vendor != "" {
			return vendor, nil
		}
		if err != nil && !errors.Is(err, ErrVendorNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrVendorNotFound
}

// Close closes all repositories
func (c *CompositeVendorRepository) Close() error {
	var firstErr error
	for _, repo := range c.repositories {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StaticVendorRepository provides vendor lookups from an in-memory map
// keyed by "AA:BB:CC".
type StaticVendorRepository struct {
	vendors map[string]string
}

func NewStaticVendorRepository(vendors map[string]string) *StaticVendorRepository {
	return &StaticVendorRepository{
		vendors: vendors,
	}
}

func (s *StaticVendorRepository) LookupVendor(ctx context.Context, mac domain.MAC) (string, error) {
	if vendor, ok := s.vendors[mac.OUIString()]; ok {
		return vendor, nil
	}
	return "", ErrVendorNotFound
}

// Close is a no-op for static repository
func (s *StaticVendorRepository) Close() error {
	return nil
}
