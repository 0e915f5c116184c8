package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PendingChangeType represents the kind of queued mutation
type PendingChangeType string

const (
	ChangeSaveWeekend      PendingChangeType = "save_weekend"
	ChangeBulkSaveWeekends PendingChangeType = "bulk_save_weekends"
	ChangeSaveActivities   PendingChangeType = "save_activities"
	ChangeSaveCategories   PendingChangeType = "save_categories"
	ChangeSavePreferences  PendingChangeType = "save_preferences"
	ChangeDeleteWeekend    PendingChangeType = "delete_weekend"
)

// PendingPayload carries the data for a pending change. Exactly one field is
// populated, matching the change type.
type PendingPayload struct {
	Weekend     *WeekendSchedule    `json:"weekend,omitempty"`
	Weekends    []*WeekendSchedule  `json:"weekends,omitempty"`
	Activities  []*Activity         `json:"activities,omitempty"`
	Categories  []*ActivityCategory `json:"categories,omitempty"`
	Preferences *Preferences        `json:"preferences,omitempty"`
	WeekendID   *uuid.UUID          `json:"weekend_id,omitempty"`
}

// PendingChange is a queued mutation awaiting remote synchronization.
// Changes are created only while offline and removed only after the sync
// transport has acknowledged them.
type PendingChange struct {
	ID        int64             `json:"id"`
	Type      PendingChangeType `json:"type"`
	Payload   PendingPayload    `json:"payload"`
	Timestamp time.Time         `json:"timestamp"`
}

// Validate checks that the payload matches the change type
func (c *PendingChange) Validate() error {
	switch c.Type {
	case ChangeSaveWeekend:
		if c.Payload.Weekend == nil {
			return fmt.Errorf("pending change %s missing weekend payload", c.Type)
		}
	case ChangeBulkSaveWeekends:
		if len(c.Payload.Weekends) == 0 {
			return fmt.Errorf("pending change %s missing weekends payload", c.Type)
		}
	case ChangeSaveActivities:
		if len(c.Payload.Activities) == 0 {
			return fmt.Errorf("pending change %s missing activities payload", c.Type)
		}
	case ChangeSaveCategories:
		if len(c.Payload.Categories) == 0 {
			return fmt.Errorf("pending change %s missing categories payload", c.Type)
		}
	case ChangeSavePreferences:
		if c.Payload.Preferences == nil {
			return fmt.Errorf("pending change %s missing preferences payload", c.Type)
		}
	case ChangeDeleteWeekend:
		if c.Payload.WeekendID == nil {
			return fmt.Errorf("pending change %s missing weekend id payload", c.Type)
		}
	default:
		return fmt.Errorf("unknown pending change type: %s", c.Type)
	}
	return nil
}
