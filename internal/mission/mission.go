// Package mission implements missions, their slot structure and slot
// registrations. A mission owns an ordered list of slot groups, each holding
// ordered slots; users register for slots and mission editors assign one
// registrant per slot. Mission roles are permission strings under the
// mission's slug prefix, e.g. "mission.op-anvil.editor".
package mission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
)

var (
	ErrMissionNotFound      = errors.New("mission: not found")
	ErrSlugTaken            = errors.New("mission: slug already in use")
	ErrSlotGroupNotFound    = errors.New("mission: slot group not found")
	ErrSlotNotFound         = errors.New("mission: slot not found")
	ErrRegistrationNotFound = errors.New("mission: registration not found")
	ErrAlreadyRegistered    = errors.New("mission: user already registered for slot")
	ErrPermissionOutOfScope = errors.New("mission: permission outside mission scope")
)

// Mission is a scheduled event users sign up for.
type Mission struct {
	ID           uuid.UUID  `json:"id"`
	CommunityID  *uuid.UUID `json:"community_id,omitempty"`
	CreatorID    uuid.UUID  `json:"creator_id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	SlottingTime time.Time  `json:"slotting_time"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SlotGroup is an ordered section of a mission's slot list.
type SlotGroup struct {
	ID          uuid.UUID `json:"id"`
	MissionID   uuid.UUID `json:"mission_id"`
	Title       string    `json:"title"`
	OrderNumber int       `json:"order_number"`
}

// Slot is a single assignable position inside a slot group.
type Slot struct {
	ID          uuid.UUID  `json:"id"`
	SlotGroupID uuid.UUID  `json:"slot_group_id"`
	Title       string     `json:"title"`
	Difficulty  int        `json:"difficulty"`
	Reserve     bool       `json:"reserve"`
	OrderNumber int        `json:"order_number"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
}

// Registration is a user's sign-up for a slot. Confirmed means an editor
// assigned the slot to this registrant.
type Registration struct {
	ID        uuid.UUID `json:"id"`
	SlotID    uuid.UUID `json:"slot_id"`
	UserID    uuid.UUID `json:"user_id"`
	Comment   string    `json:"comment,omitempty"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

// Storage persists missions, slot structure and registrations.
type Storage interface {
	Create(ctx context.Context, m Mission) error
	GetBySlug(ctx context.Context, slug string) (Mission, error)
	List(ctx context.Context, page apiutil.Pagination) ([]Mission, error)
	Update(ctx context.Context, m Mission) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateSlotGroup(ctx context.Context, g SlotGroup) error
	GetSlotGroup(ctx context.Context, id uuid.UUID) (SlotGroup, error)
	ListSlotGroups(ctx context.Context, missionID uuid.UUID) ([]SlotGroup, error)
	UpdateSlotGroup(ctx context.Context, g SlotGroup) error
	DeleteSlotGroup(ctx context.Context, id uuid.UUID) error

	CreateSlot(ctx context.Context, s Slot) error
	GetSlot(ctx context.Context, id uuid.UUID) (Slot, error)
	ListSlots(ctx context.Context, slotGroupID uuid.UUID) ([]Slot, error)
	UpdateSlot(ctx context.Context, s Slot) error
	DeleteSlot(ctx context.Context, id uuid.UUID) error

	CreateRegistration(ctx context.Context, reg Registration) error
	GetRegistration(ctx context.Context, id uuid.UUID) (Registration, error)
	ListRegistrations(ctx context.Context, slotID uuid.UUID) ([]Registration, error)
	UpdateRegistration(ctx context.Context, reg Registration) error
	DeleteRegistration(ctx context.Context, slotID, userID uuid.UUID) error

	// ListParticipants returns the distinct user IDs registered anywhere in
	// the mission, used to fan out mission-wide notifications.
	ListParticipants(ctx context.Context, missionID uuid.UUID) ([]uuid.UUID, error)
}
