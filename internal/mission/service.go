package mission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/internal/notification"
	"github.com/slotlist/slotlist-backend-sub000/internal/user"
	"github.com/slotlist/slotlist-backend-sub000/pkg/logger"
	"github.com/slotlist/slotlist-backend-sub000/pkg/permissions"
	"github.com/slotlist/slotlist-backend-sub000/pkg/pg"
	"github.com/slotlist/slotlist-backend-sub000/pkg/slug"
)

// Mission role suffixes. The full permission string is
// "mission.<slug>.<role>".
const (
	RoleCreator = "creator"
	RoleEditor  = "editor"
)

// PermissionStore manages the permission grants owned by a mission.
type PermissionStore interface {
	CreatePermission(ctx context.Context, grant user.PermissionGrant) error
	DeletePermission(ctx context.Context, userID uuid.UUID, permission string) error
	DeletePermissionsByPrefix(ctx context.Context, prefix string) error
	ListPermissionsByPrefix(ctx context.Context, prefix string) ([]user.PermissionGrant, error)
}

// Notifier delivers notifications to one or many users.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ notification.Type, data map[string]string) error
	NotifyAll(ctx context.Context, userIDs []uuid.UUID, typ notification.Type, data map[string]string) error
}

// Service implements mission and slot management.
type Service struct {
	storage  Storage
	perms    PermissionStore
	notifier Notifier
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNotifier enables slot and mission lifecycle notifications.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a mission service.
func NewService(storage Storage, perms PermissionStore, opts ...ServiceOption) *Service {
	s := &Service{
		storage: storage,
		perms:   perms,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput holds the mission creation fields.
type CreateInput struct {
	CommunityID  *uuid.UUID `json:"community_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	SlottingTime time.Time  `json:"slotting_time"`
}

// Create stores a new mission and grants the creator role. The slug derives
// from the title; a clash with an existing mission is a conflict, not a
// silent rename, since permission strings embed the slug.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, in CreateInput) (Mission, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Mission{}, errors.Join(apiutil.ErrUnprocessableEntity, errors.New("mission: title is required"))
	}
	if !in.EndTime.IsZero() && !in.StartTime.IsZero() && in.EndTime.Before(in.StartTime) {
		return Mission{}, errors.Join(apiutil.ErrUnprocessableEntity, errors.New("mission: end time before start time"))
	}

	m := Mission{
		ID:           uuid.New(),
		CommunityID:  in.CommunityID,
		CreatorID:    creatorID,
		Title:        title,
		Slug:         slug.Make(title),
		Description:  strings.TrimSpace(in.Description),
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		SlottingTime: in.SlottingTime,
		CreatedAt:    time.Now(),
	}
	if err := s.storage.Create(ctx, m); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return Mission{}, ErrSlugTaken
		}
		return Mission{}, fmt.Errorf("failed to create mission: %w", err)
	}

	creatorGrant := user.PermissionGrant{
		ID:         uuid.New(),
		UserID:     creatorID,
		Permission: RolePermission(m.Slug, RoleCreator),
		CreatedAt:  time.Now(),
	}
	if err := s.perms.CreatePermission(ctx, creatorGrant); err != nil {
		return Mission{}, fmt.Errorf("failed to grant creator role: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "mission created",
		logger.MissionSlug(m.Slug),
		logger.UserID(creatorID),
	)
	return m, nil
}

// Get returns one mission by slug.
func (s *Service) Get(ctx context.Context, missionSlug string) (Mission, error) {
	m, err := s.storage.GetBySlug(ctx, missionSlug)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Mission{}, ErrMissionNotFound
		}
		return Mission{}, fmt.Errorf("failed to load mission: %w", err)
	}
	return m, nil
}

// List returns missions, paginated.
func (s *Service) List(ctx context.Context, page apiutil.Pagination) ([]Mission, error) {
	return s.storage.List(ctx, page)
}

// UpdateInput holds the mutable mission fields. The slug is immutable.
type UpdateInput struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	SlottingTime *time.Time `json:"slotting_time"`
}

// Update applies a partial update to a mission.
func (s *Service) Update(ctx context.Context, missionSlug string, in UpdateInput) (Mission, error) {
	m, err := s.Get(ctx, missionSlug)
	if err != nil {
		return Mission{}, err
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		m.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		m.Description = strings.TrimSpace(*in.Description)
	}
	if in.StartTime != nil {
		m.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		m.EndTime = *in.EndTime
	}
	if in.SlottingTime != nil {
		m.SlottingTime = *in.SlottingTime
	}
	if !m.EndTime.IsZero() && !m.StartTime.IsZero() && m.EndTime.Before(m.StartTime) {
		return Mission{}, errors.Join(apiutil.ErrUnprocessableEntity, errors.New("mission: end time before start time"))
	}

	if err := s.storage.Update(ctx, m); err != nil {
		return Mission{}, fmt.Errorf("failed to update mission: %w", err)
	}
	return m, nil
}

// Delete removes a mission, notifies every registered participant and drops
// all permission grants under the mission's slug prefix.
func (s *Service) Delete(ctx context.Context, missionSlug string) error {
	m, err := s.Get(ctx, missionSlug)
	if err != nil {
		return err
	}

	participants, err := s.storage.ListParticipants(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}

	if err := s.storage.Delete(ctx, m.ID); err != nil {
		return fmt.Errorf("failed to delete mission: %w", err)
	}
	if err := s.perms.DeletePermissionsByPrefix(ctx, Prefix(m.Slug)); err != nil {
		return fmt.Errorf("failed to delete mission permissions: %w", err)
	}

	if s.notifier != nil && len(participants) > 0 {
		err := s.notifier.NotifyAll(ctx, participants, notification.TypeMissionDeleted, map[string]string{
			"missionTitle": m.Title,
		})
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to notify mission participants",
				logger.MissionSlug(m.Slug),
				logger.Error(err),
			)
		}
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "mission deleted", logger.MissionSlug(m.Slug))
	return nil
}

// SlotGroupInput holds slot group fields.
type SlotGroupInput struct {
	Title       string `json:"title"`
	OrderNumber int    `json:"order_number"`
}

// CreateSlotGroup adds a slot group to a mission.
func (s *Service) CreateSlotGroup(ctx context.Context, missionSlug string, in SlotGroupInput) (SlotGroup, error) {
	m, err := s.Get(ctx, missionSlug)
	if err != nil {
		return SlotGroup{}, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return SlotGroup{}, errors.Join(apiutil.ErrUnprocessableEntity, errors.New("mission: slot group title is required"))
	}

	g := SlotGroup{
		ID:          uuid.New(),
		MissionID:   m.ID,
		Title:       strings.TrimSpace(in.Title),
		OrderNumber: in.OrderNumber,
	}
	if err := s.storage.CreateSlotGroup(ctx, g); err != nil {
		return SlotGroup{}, fmt.Errorf("failed to create slot group: %w", err)
	}
	return g, nil
}

// UpdateSlotGroup updates a slot group's title and ordering.
func (s *Service) UpdateSlotGroup(ctx context.Context, missionSlug string, groupID uuid.UUID, in SlotGroupInput) (SlotGroup, error) {
	g, err := s.slotGroupOf(ctx, missionSlug, groupID)
	if err != nil {
		return SlotGroup{}, err
	}

	if strings.TrimSpace(in.Title) != "" {
		g.Title = strings.TrimSpace(in.Title)
	}
	g.OrderNumber = in.OrderNumber

	if err := s.storage.UpdateSlotGroup(ctx, g); err != nil {
		return SlotGroup{}, fmt.Errorf("failed to update slot group: %w", err)
	}
	return g, nil
}

// DeleteSlotGroup removes a slot group and, via cascade, its slots.
func (s *Service) DeleteSlotGroup(ctx context.Context, missionSlug string, groupID uuid.UUID) error {
	g, err := s.slotGroupOf(ctx, missionSlug, groupID)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteSlotGroup(ctx, g.ID); err != nil {
		return fmt.Errorf("failed to delete slot group: %w", err)
	}
	return nil
}

// SlotDetail is a slot with its registrations, as returned by the slot list.
type SlotDetail struct {
	Slot
	Registrations []Registration `json:"registrations"`
}

// SlotGroupDetail is a slot group with its slots.
type SlotGroupDetail struct {
	SlotGroup
	Slots []SlotDetail `json:"slots"`
}

// SlotList returns the mission's complete slot structure, ordered.
func (s *Service) SlotList(ctx context.Context, missionSlug string) ([]SlotGroupDetail, error) {
	m, err := s.Get(ctx, missionSlug)
	if err != nil {
		return nil, err
	}

	groups, err := s.storage.ListSlotGroups(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slot groups: %w", err)
	}

	out := make([]SlotGroupDetail, 0, len(groups))
	for _, g := range groups {
		slots, err := s.storage.ListSlots(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list slots: %w", err)
		}
		details := make([]SlotDetail, 0, len(slots))
		for _, slot := range slots {
			regs, err := s.storage.ListRegistrations(ctx, slot.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list registrations: %w", err)
			}
			if regs == nil {
				regs = []Registration{}
			}
			details = append(details, SlotDetail{Slot: slot, Registrations: regs})
		}
		out = append(out, SlotGroupDetail{SlotGroup: g, Slots: details})
	}
	return out, nil
}

// SlotInput holds slot fields.
type SlotInput struct {
	Title       string `json:"title"`
	Difficulty  int    `json:"difficulty"`
	Reserve     bool   `json:"reserve"`
	OrderNumber int    `json:"order_number"`
}

// CreateSlot adds a slot to a slot group.
func (s *Service) CreateSlot(ctx context.Context, missionSlug string, groupID uuid.UUID, in SlotInput) (Slot, error) {
	g, err := s.slotGroupOf(ctx, missionSlug, groupID)
	if err != nil {
		return Slot{}, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return Slot{}, errors.Join(apiutil.ErrUnprocessableEntity, errors.New("mission: slot title is required"))
	}

	slot := Slot{
		ID:          uuid.New(),
		SlotGroupID: g.ID,
		Title:       strings.TrimSpace(in.Title),
		Difficulty:  in.Difficulty,
		Reserve:     in.Reserve,
		OrderNumber: in.OrderNumber,
	}
	if err := s.storage.CreateSlot(ctx, slot); err != nil {
		return Slot{}, fmt.Errorf("failed to create slot: %w", err)
	}
	return slot, nil
}

// UpdateSlot updates a slot's fields, leaving the assignee untouched.
func (s *Service) UpdateSlot(ctx context.Context, missionSlug string, slotID uuid.UUID, in SlotInput) (Slot, error) {
	slot, _, err := s.slotOf(ctx, missionSlug, slotID)
	if err != nil {
		return Slot{}, err
	}

	if strings.TrimSpace(in.Title) != "" {
		slot.Title = strings.TrimSpace(in.Title)
	}
	slot.Difficulty = in.Difficulty
	slot.Reserve = in.Reserve
	slot.OrderNumber = in.OrderNumber

	if err := s.storage.UpdateSlot(ctx, slot); err != nil {
		return Slot{}, fmt.Errorf("failed to update slot: %w", err)
	}
	return slot, nil
}

// DeleteSlot removes a slot. The current assignee, if any, is notified.
func (s *Service) DeleteSlot(ctx context.Context, missionSlug string, slotID uuid.UUID) error {
	slot, m, err := s.slotOf(ctx, missionSlug, slotID)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteSlot(ctx, slot.ID); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	if slot.AssigneeID != nil {
		s.notify(ctx, *slot.AssigneeID, notification.TypeSlotUnassigned, map[string]string{
			"slotTitle":    slot.Title,
			"missionTitle": m.Title,
		})
	}
	return nil
}

// Register signs the caller up for a slot.
func (s *Service) Register(ctx context.Context, missionSlug string, slotID, userID uuid.UUID, comment string) (Registration, error) {
	slot, _, err := s.slotOf(ctx, missionSlug, slotID)
	if err != nil {
		return Registration{}, err
	}

	reg := Registration{
		ID:        uuid.New(),
		SlotID:    slot.ID,
		UserID:    userID,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: time.Now(),
	}
	if err := s.storage.CreateRegistration(ctx, reg); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return Registration{}, ErrAlreadyRegistered
		}
		return Registration{}, fmt.Errorf("failed to create registration: %w", err)
	}
	return reg, nil
}

// Unregister withdraws the caller's registration. When the caller is the
// current assignee the slot is vacated as well.
func (s *Service) Unregister(ctx context.Context, missionSlug string, slotID, userID uuid.UUID) error {
	slot, _, err := s.slotOf(ctx, missionSlug, slotID)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteRegistration(ctx, slot.ID, userID); err != nil {
		if pg.IsNotFoundError(err) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to delete registration: %w", err)
	}

	if slot.AssigneeID != nil && *slot.AssigneeID == userID {
		slot.AssigneeID = nil
		if err := s.storage.UpdateSlot(ctx, slot); err != nil {
			return fmt.Errorf("failed to vacate slot: %w", err)
		}
	}
	return nil
}

// Assign gives the slot to one of its registrants, confirming their
// registration. A previously assigned user is displaced and notified.
func (s *Service) Assign(ctx context.Context, missionSlug string, slotID, registrationID uuid.UUID) (Slot, error) {
	slot, m, err := s.slotOf(ctx, missionSlug, slotID)
	if err != nil {
		return Slot{}, err
	}

	reg, err := s.storage.GetRegistration(ctx, registrationID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Slot{}, ErrRegistrationNotFound
		}
		return Slot{}, fmt.Errorf("failed to load registration: %w", err)
	}
	if reg.SlotID != slot.ID {
		return Slot{}, ErrRegistrationNotFound
	}

	data := map[string]string{
		"slotTitle":    slot.Title,
		"missionTitle": m.Title,
	}

	if slot.AssigneeID != nil && *slot.AssigneeID != reg.UserID {
		s.notify(ctx, *slot.AssigneeID, notification.TypeSlotUnassigned, data)
	}

	assignee := reg.UserID
	slot.AssigneeID = &assignee
	if err := s.storage.UpdateSlot(ctx, slot); err != nil {
		return Slot{}, fmt.Errorf("failed to assign slot: %w", err)
	}

	reg.Confirmed = true
	if err := s.storage.UpdateRegistration(ctx, reg); err != nil {
		return Slot{}, fmt.Errorf("failed to confirm registration: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "slot assigned",
		logger.MissionSlug(m.Slug),
		logger.SlotID(slot.ID),
		logger.UserID(reg.UserID),
	)
	s.notify(ctx, reg.UserID, notification.TypeSlotAssigned, data)
	return slot, nil
}

// Unassign vacates a slot and notifies the displaced assignee.
func (s *Service) Unassign(ctx context.Context, missionSlug string, slotID uuid.UUID) (Slot, error) {
	slot, m, err := s.slotOf(ctx, missionSlug, slotID)
	if err != nil {
		return Slot{}, err
	}
	if slot.AssigneeID == nil {
		return slot, nil
	}

	displaced := *slot.AssigneeID
	slot.AssigneeID = nil
	if err := s.storage.UpdateSlot(ctx, slot); err != nil {
		return Slot{}, fmt.Errorf("failed to vacate slot: %w", err)
	}

	s.notify(ctx, displaced, notification.TypeSlotUnassigned, map[string]string{
		"slotTitle":    slot.Title,
		"missionTitle": m.Title,
	})
	return slot, nil
}

// ListPermissions returns every grant scoped to the mission.
func (s *Service) ListPermissions(ctx context.Context, missionSlug string) ([]user.PermissionGrant, error) {
	if _, err := s.Get(ctx, missionSlug); err != nil {
		return nil, err
	}
	grants, err := s.perms.ListPermissionsByPrefix(ctx, Prefix(missionSlug))
	if err != nil {
		return nil, fmt.Errorf("failed to list mission permissions: %w", err)
	}
	if grants == nil {
		grants = []user.PermissionGrant{}
	}
	return grants, nil
}

// GrantPermission grants a mission-scoped permission, typically the editor
// role. Only strings under the mission's own prefix are accepted.
func (s *Service) GrantPermission(ctx context.Context, missionSlug string, userID uuid.UUID, permission string) (user.PermissionGrant, error) {
	m, err := s.Get(ctx, missionSlug)
	if err != nil {
		return user.PermissionGrant{}, err
	}

	permission = strings.TrimSpace(permission)
	if err := validateScoped(m.Slug, permission); err != nil {
		return user.PermissionGrant{}, err
	}

	grant := user.PermissionGrant{
		ID:         uuid.New(),
		UserID:     userID,
		Permission: permission,
		CreatedAt:  time.Now(),
	}
	if err := s.perms.CreatePermission(ctx, grant); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return user.PermissionGrant{}, user.ErrGrantAlreadyExists
		}
		return user.PermissionGrant{}, fmt.Errorf("failed to create permission: %w", err)
	}

	s.notify(ctx, userID, notification.TypePermissionGranted, map[string]string{"permission": permission})
	return grant, nil
}

// RevokePermission removes a mission-scoped grant from a user.
func (s *Service) RevokePermission(ctx context.Context, missionSlug string, userID uuid.UUID, permission string) error {
	m, err := s.Get(ctx, missionSlug)
	if err != nil {
		return err
	}

	permission = strings.TrimSpace(permission)
	if err := validateScoped(m.Slug, permission); err != nil {
		return err
	}

	if err := s.perms.DeletePermission(ctx, userID, permission); err != nil {
		if pg.IsNotFoundError(err) {
			return user.ErrGrantNotFound
		}
		return fmt.Errorf("failed to delete permission: %w", err)
	}
	return nil
}

func (s *Service) slotGroupOf(ctx context.Context, missionSlug string, groupID uuid.UUID) (SlotGroup, error) {
	m, err := s.Get(ctx, missionSlug)
	if err != nil {
		return SlotGroup{}, err
	}
	g, err := s.storage.GetSlotGroup(ctx, groupID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return SlotGroup{}, ErrSlotGroupNotFound
		}
		return SlotGroup{}, fmt.Errorf("failed to load slot group: %w", err)
	}
	if g.MissionID != m.ID {
		return SlotGroup{}, ErrSlotGroupNotFound
	}
	return g, nil
}

func (s *Service) slotOf(ctx context.Context, missionSlug string, slotID uuid.UUID) (Slot, Mission, error) {
	m, err := s.Get(ctx, missionSlug)
	if err != nil {
		return Slot{}, Mission{}, err
	}
	slot, err := s.storage.GetSlot(ctx, slotID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Slot{}, Mission{}, ErrSlotNotFound
		}
		return Slot{}, Mission{}, fmt.Errorf("failed to load slot: %w", err)
	}
	g, err := s.storage.GetSlotGroup(ctx, slot.SlotGroupID)
	if err != nil || g.MissionID != m.ID {
		return Slot{}, Mission{}, ErrSlotNotFound
	}
	return slot, m, nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, typ notification.Type, data map[string]string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, typ, data); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to send mission notification",
			logger.UserID(userID),
			logger.Error(err),
		)
	}
}

// Prefix returns the permission prefix owned by a mission,
// e.g. "mission.op-anvil.".
func Prefix(missionSlug string) string {
	return "mission" + permissions.Separator + missionSlug + permissions.Separator
}

// RolePermission builds the full permission string for a mission role.
func RolePermission(missionSlug, role string) string {
	return Prefix(missionSlug) + role
}

func validateScoped(missionSlug, permission string) error {
	if err := user.ValidatePermission(permission); err != nil {
		return err
	}
	if !strings.HasPrefix(permission, Prefix(missionSlug)) {
		return ErrPermissionOutOfScope
	}
	return nil
}
