// Package notification stores and delivers user notifications triggered by
// roster state changes: slot assignments, community application decisions,
// mission deletions. Message bodies come from a YAML template catalog;
// unread counters are cached in Redis; email delivery is best effort.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the state change a notification reports.
type Type string

const (
	TypeSlotAssigned        Type = "mission.slot.assigned"
	TypeSlotUnassigned      Type = "mission.slot.unassigned"
	TypeMissionDeleted      Type = "mission.deleted"
	TypeApplicationAccepted Type = "community.application.accepted"
	TypeApplicationDenied   Type = "community.application.denied"
	TypePermissionGranted   Type = "permission.granted"
)

// Notification is one stored notification for one user.
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Type      Type              `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
