// Package storage persists AP snapshots and scan session summaries.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SQLiteAdapter implements ports.SnapshotStore using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// AccessPointModel is the GORM model for one AP of a snapshot.
type AccessPointModel struct {
	BSSID           string `gorm:"primaryKey"`
	SessionID       string `gorm:"index"`
	SSID            []byte
	DisplaySSID     string
	OriginalSSIDLen int
	Hidden          bool
	SSIDKnown       bool
	SSIDRevealed    bool
	RevealedAt      time.Time
	RevealSource    string
	RSSI            int
	Channel         int
	Encryption      string
	HasRSN          bool
	RSNGroupCipher  string
	RSNPairwise     string // comma separated
	RSNAKMs         string // comma separated
	MFPRequired     bool
	MFPCapable      bool
	Capability      uint16
	BeaconInterval  uint16
	VendorOUI       string

	WPSEnabled      bool
	WPSVersion      int
	WPSState        string
	WPSLocked       bool
	WPSDeviceName   string
	WPSManufacturer string
	WPSModel        string

	FirstSeen   time.Time
	LastSeen    time.Time `gorm:"index"`
	PacketCount int
}

// SessionModel is the GORM model for a finished scan session.
type SessionModel struct {
	ID           string `gorm:"primaryKey"`
	Mode         string
	StartedAt    time.Time
	EndedAt      time.Time `gorm:"index"`
	AccessPoints int
	Hidden       int
	Revealed     int
	Clients      int
	Associations int
	Probes       int

	ManagementFrames  uint64
	Beacons           uint64
	ProbeRequests     uint64
	ProbeResponses    uint64
	DataFrames        uint64
	AssociationFrames uint64
	HiddenRevealed    uint64
	Dropped           uint64
	Malformed         uint64
}

// NewSQLiteAdapter opens the database at path, installs query tracing and
// migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("install tracing: %w", err)
	}

	if err := db.AutoMigrate(&AccessPointModel{}, &SessionModel{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_aps_revealed ON access_point_models(ssid_revealed)")

	return &SQLiteAdapter{db: db}, nil
}

// SaveAccessPoints upserts the APs of a snapshot in one transaction.
func (a *SQLiteAdapter) SaveAccessPoints(ctx context.Context, sessionID string, aps []domain.AccessPoint) error {
	if len(aps) == 0 {
		return nil
	}

	models := make([]AccessPointModel, len(aps))
	for i, ap := range aps {
		models[i] = toAccessPointModel(sessionID, ap)
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			UpdateAll: true,
		}).CreateInBatches(models, 100).Error
	})
}

// LoadAccessPoints returns every stored AP, most recently seen first.
func (a *SQLiteAdapter) LoadAccessPoints(ctx context.Context) ([]domain.AccessPoint, error) {
	var models []AccessPointModel
	if err := a.db.WithContext(ctx).Order("last_seen DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	aps := make([]domain.AccessPoint, 0, len(models))
	for _, m := range models {
		ap, err := toAccessPoint(m)
		if err != nil {
			return nil, err
		}
		aps = append(aps, ap)
	}
	return aps, nil
}

// SaveSession records a finished session.
func (a *SQLiteAdapter) SaveSession(ctx context.Context, s domain.SessionSummary) error {
	model := toSessionModel(s)
	return a.db.WithContext(ctx).Save(&model).Error
}

// Sessions returns up to limit sessions, newest first.
func (a *SQLiteAdapter) Sessions(ctx context.Context, limit int) ([]domain.SessionSummary, error) {
	var models []SessionModel
	q := a.db.WithContext(ctx).Order("ended_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]domain.SessionSummary, len(models))
	for i, m := range models {
		out[i] = toSessionSummary(m)
	}
	return out, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure interface compliance
var _ ports.SnapshotStore = (*SQLiteAdapter)(nil)
