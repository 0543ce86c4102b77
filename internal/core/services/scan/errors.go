package scan

import "errors"

// Control input errors. The rejected setting is left unchanged.
var (
	ErrInvalidMode        = errors.New("invalid scan mode")
	ErrInvalidHopInterval = errors.New("hop interval must be positive")
	ErrInvalidDuration    = errors.New("scan duration must not be negative")
	ErrInvalidChannel     = errors.New("invalid channel")
	ErrInvalidRSSI        = errors.New("minimum RSSI out of range")
	ErrUnknownFeature     = errors.New("unknown feature")
	ErrNoDecoder          = errors.New("scan controller requires a frame decoder")
	ErrNoSnapshotStore    = errors.New("no snapshot store configured")
)
