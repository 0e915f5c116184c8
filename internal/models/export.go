package models

import (
	"errors"
	"time"
)

// ExportVersion is the current export envelope format version
const ExportVersion = 1

// ErrUnsupportedExportVersion is returned when an import envelope was
// written by a newer format version than this build understands.
var ErrUnsupportedExportVersion = errors.New("unsupported export version")

// ExportData is the data section of an export envelope. Sections may be
// empty in partial snapshots; import skips what is missing.
type ExportData struct {
	Weekends    []*WeekendSchedule  `json:"weekends,omitempty"`
	Activities  []*Activity         `json:"activities,omitempty"`
	Categories  []*ActivityCategory `json:"categories,omitempty"`
	Preferences *Preferences        `json:"preferences,omitempty"`
}

// ExportEnvelope is the JSON-serializable snapshot of all persisted tables
type ExportEnvelope struct {
	Version   int        `json:"version"`
	Timestamp time.Time  `json:"timestamp"`
	Data      ExportData `json:"data"`
}
