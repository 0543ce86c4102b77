package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, fallback VendorRepository) *OUIDatabase {
	t.Helper()
	db, err := NewOUIDatabase(filepath.Join(t.TempDir(), "oui.db"), 100, fallback)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOUIDatabaseBasic(t *testing.T) {
	db := newTestDB(t, nil)
	ctx := context.Background()

	updated := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.BulkInsertOUIs(ctx, []OUIEntry{
		{
			Prefix:      "00:00:00",
			Vendor:      "Test Vendor 1",
			VendorShort: "TestVendor1",
			LastUpdated: updated,
		},
		{
			Prefix:      "11-11-11",
			Vendor:      "Test Vendor 2 Inc.",
			LastUpdated: updated,
		},
	}))

	vendor, err := db.LookupVendor(ctx, domain.MustParseMAC("00:00:00:11:22:33"))
	require.NoError(t, err)
	assert.Equal(t, "TestVendor1", vendor)

	vendor, err = db.LookupVendor(ctx, domain.MustParseMAC("11:11:11:11:22:33"))
	require.NoError(t, err)
	assert.Equal(t, "Test Vendor 2 Inc.", vendor, "the full name is used when there is no short one")

	// Second lookup is served by the cache.
	_, err = db.LookupVendor(ctx, domain.MustParseMAC("00:00:00:44:55:66"))
	require.NoError(t, err)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, "2026-01-15", stats.LastUpdated)
	assert.Equal(t, int64(1), stats.CacheHits)
}

func TestOUIDatabaseBulkInsert(t *testing.T) {
	db := newTestDB(t, nil)
	ctx := context.Background()

	entries := make([]OUIEntry, 100)
	for i := range entries {
		entries[i] = OUIEntry{
			Prefix:      fmt.Sprintf("%02X:%02X:%02X", i, i, i),
			Vendor:      fmt.Sprintf("Vendor %d", i),
			LastUpdated: time.Now(),
		}
	}
	require.NoError(t, db.BulkInsertOUIs(ctx, entries))

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, stats.TotalEntries)

	vendor, err := db.LookupVendor(ctx, domain.MustParseMAC("2A:2A:2A:00:00:01"))
	require.NoError(t, err)
	assert.Equal(t, "Vendor 42", vendor)
}

func TestOUIDatabaseFallback(t *testing.T) {
	fallback := NewStaticVendorRepository(map[string]string{"AA:BB:CC": "Fallback Vendor"})
	db := newTestDB(t, fallback)
	ctx := context.Background()

	vendor, err := db.LookupVendor(ctx, domain.MustParseMAC("AA:BB:CC:00:00:01"))
	require.NoError(t, err)
	assert.Equal(t, "Fallback Vendor", vendor)

	_, err = db.LookupVendor(ctx, domain.MustParseMAC("00:99:99:00:00:01"))
	assert.ErrorIs(t, err, ErrVendorNotFound)
}

func TestOUIDatabaseInvalidPrefix(t *testing.T) {
	db := newTestDB(t, nil)

	ctx := context.Background()

	err := db.BulkInsertOUIs(ctx, []OUIEntry{
		{Prefix: "00:11:22", Vendor: "Good"},
		{Prefix: "ZZ:00:00", Vendor: "Bad"},
	})
	var dbErr *DatabaseError
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, "bulk_insert_entry", dbErr.Op)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalEntries, "a rejected batch leaves nothing behind")
}

func TestOUIDatabaseClosed(t *testing.T) {
	db, err := NewOUIDatabase(filepath.Join(t.TempDir(), "oui.db"), 10, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "closing twice is harmless")

	_, err = db.LookupVendor(context.Background(), domain.MustParseMAC("00:00:00:00:00:01"))
	assert.ErrorIs(t, err, ErrRepositoryClosed)
	assert.ErrorIs(t, db.BulkInsertOUIs(context.Background(), []OUIEntry{{Prefix: "00:00:00", Vendor: "x"}}), ErrRepositoryClosed)

	_, err = db.GetStats(context.Background())
	assert.ErrorIs(t, err, ErrRepositoryClosed)
}

func TestOUIDatabaseOpenFailure(t *testing.T) {
	_, err := NewOUIDatabase(filepath.Join(t.TempDir(), "missing", "dir", "oui.db"), 10, nil)
	var dbErr *DatabaseError
	require.True(t, errors.As(err, &dbErr))
}
