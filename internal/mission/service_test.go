package mission_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/internal/mission"
	"github.com/slotlist/slotlist-backend-sub000/internal/notification"
	"github.com/slotlist/slotlist-backend-sub000/internal/user"
)

type fakeStorage struct {
	missions      map[uuid.UUID]mission.Mission
	slotGroups    map[uuid.UUID]mission.SlotGroup
	slots         map[uuid.UUID]mission.Slot
	registrations map[uuid.UUID]mission.Registration
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		missions:      make(map[uuid.UUID]mission.Mission),
		slotGroups:    make(map[uuid.UUID]mission.SlotGroup),
		slots:         make(map[uuid.UUID]mission.Slot),
		registrations: make(map[uuid.UUID]mission.Registration),
	}
}

func (f *fakeStorage) Create(_ context.Context, m mission.Mission) error {
	for _, existing := range f.missions {
		if existing.Slug == m.Slug {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	f.missions[m.ID] = m
	return nil
}

func (f *fakeStorage) GetBySlug(_ context.Context, slug string) (mission.Mission, error) {
	for _, m := range f.missions {
		if m.Slug == slug {
			return m, nil
		}
	}
	return mission.Mission{}, pgx.ErrNoRows
}

func (f *fakeStorage) List(_ context.Context, _ apiutil.Pagination) ([]mission.Mission, error) {
	out := make([]mission.Mission, 0, len(f.missions))
	for _, m := range f.missions {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStorage) Update(_ context.Context, m mission.Mission) error {
	f.missions[m.ID] = m
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.missions, id)
	return nil
}

func (f *fakeStorage) CreateSlotGroup(_ context.Context, g mission.SlotGroup) error {
	f.slotGroups[g.ID] = g
	return nil
}

func (f *fakeStorage) GetSlotGroup(_ context.Context, id uuid.UUID) (mission.SlotGroup, error) {
	g, ok := f.slotGroups[id]
	if !ok {
		return mission.SlotGroup{}, pgx.ErrNoRows
	}
	return g, nil
}

func (f *fakeStorage) ListSlotGroups(_ context.Context, missionID uuid.UUID) ([]mission.SlotGroup, error) {
	var out []mission.SlotGroup
	for _, g := range f.slotGroups {
		if g.MissionID == missionID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStorage) UpdateSlotGroup(_ context.Context, g mission.SlotGroup) error {
	f.slotGroups[g.ID] = g
	return nil
}

func (f *fakeStorage) DeleteSlotGroup(_ context.Context, id uuid.UUID) error {
	delete(f.slotGroups, id)
	return nil
}

func (f *fakeStorage) CreateSlot(_ context.Context, s mission.Slot) error {
	f.slots[s.ID] = s
	return nil
}

func (f *fakeStorage) GetSlot(_ context.Context, id uuid.UUID) (mission.Slot, error) {
	s, ok := f.slots[id]
	if !ok {
		return mission.Slot{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeStorage) ListSlots(_ context.Context, slotGroupID uuid.UUID) ([]mission.Slot, error) {
	var out []mission.Slot
	for _, s := range f.slots {
		if s.SlotGroupID == slotGroupID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStorage) UpdateSlot(_ context.Context, s mission.Slot) error {
	f.slots[s.ID] = s
	return nil
}

func (f *fakeStorage) DeleteSlot(_ context.Context, id uuid.UUID) error {
	delete(f.slots, id)
	return nil
}

func (f *fakeStorage) CreateRegistration(_ context.Context, reg mission.Registration) error {
	for _, existing := range f.registrations {
		if existing.SlotID == reg.SlotID && existing.UserID == reg.UserID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	f.registrations[reg.ID] = reg
	return nil
}

func (f *fakeStorage) GetRegistration(_ context.Context, id uuid.UUID) (mission.Registration, error) {
	reg, ok := f.registrations[id]
	if !ok {
		return mission.Registration{}, pgx.ErrNoRows
	}
	return reg, nil
}

func (f *fakeStorage) ListRegistrations(_ context.Context, slotID uuid.UUID) ([]mission.Registration, error) {
	var out []mission.Registration
	for _, reg := range f.registrations {
		if reg.SlotID == slotID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (f *fakeStorage) UpdateRegistration(_ context.Context, reg mission.Registration) error {
	f.registrations[reg.ID] = reg
	return nil
}

func (f *fakeStorage) DeleteRegistration(_ context.Context, slotID, userID uuid.UUID) error {
	for id, reg := range f.registrations {
		if reg.SlotID == slotID && reg.UserID == userID {
			delete(f.registrations, id)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeStorage) ListParticipants(_ context.Context, missionID uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, reg := range f.registrations {
		slot, ok := f.slots[reg.SlotID]
		if !ok {
			continue
		}
		group, ok := f.slotGroups[slot.SlotGroupID]
		if !ok || group.MissionID != missionID {
			continue
		}
		if !seen[reg.UserID] {
			seen[reg.UserID] = true
			out = append(out, reg.UserID)
		}
	}
	return out, nil
}

type fakePermStore struct {
	grants []user.PermissionGrant
}

func (f *fakePermStore) CreatePermission(_ context.Context, grant user.PermissionGrant) error {
	for _, g := range f.grants {
		if g.UserID == grant.UserID && g.Permission == grant.Permission {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	f.grants = append(f.grants, grant)
	return nil
}

func (f *fakePermStore) DeletePermission(_ context.Context, userID uuid.UUID, permission string) error {
	for i, g := range f.grants {
		if g.UserID == userID && g.Permission == permission {
			f.grants = append(f.grants[:i], f.grants[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakePermStore) DeletePermissionsByPrefix(_ context.Context, prefix string) error {
	kept := f.grants[:0]
	for _, g := range f.grants {
		if len(g.Permission) < len(prefix) || g.Permission[:len(prefix)] != prefix {
			kept = append(kept, g)
		}
	}
	f.grants = kept
	return nil
}

func (f *fakePermStore) ListPermissionsByPrefix(_ context.Context, prefix string) ([]user.PermissionGrant, error) {
	var out []user.PermissionGrant
	for _, g := range f.grants {
		if len(g.Permission) >= len(prefix) && g.Permission[:len(prefix)] == prefix {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakePermStore) permissionsOf(userID uuid.UUID) []string {
	var out []string
	for _, g := range f.grants {
		if g.UserID == userID {
			out = append(out, g.Permission)
		}
	}
	return out
}

type recordingNotifier struct {
	calls []notifierCall
}

type notifierCall struct {
	userIDs []uuid.UUID
	typ     notification.Type
	data    map[string]string
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, typ notification.Type, data map[string]string) error {
	n.calls = append(n.calls, notifierCall{userIDs: []uuid.UUID{userID}, typ: typ, data: data})
	return nil
}

func (n *recordingNotifier) NotifyAll(_ context.Context, userIDs []uuid.UUID, typ notification.Type, data map[string]string) error {
	n.calls = append(n.calls, notifierCall{userIDs: userIDs, typ: typ, data: data})
	return nil
}

func (n *recordingNotifier) ofType(typ notification.Type) []notifierCall {
	var out []notifierCall
	for _, c := range n.calls {
		if c.typ == typ {
			out = append(out, c)
		}
	}
	return out
}

type fixture struct {
	svc      *mission.Service
	storage  *fakeStorage
	perms    *fakePermStore
	notifier *recordingNotifier
	mission  mission.Mission
	group    mission.SlotGroup
	slot     mission.Slot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	storage := newFakeStorage()
	perms := &fakePermStore{}
	notifier := &recordingNotifier{}
	svc := mission.NewService(storage, perms, mission.WithNotifier(notifier))

	start := time.Now().Add(24 * time.Hour)
	m, err := svc.Create(context.Background(), uuid.New(), mission.CreateInput{
		Title:        "Operation Anvil",
		StartTime:    start,
		EndTime:      start.Add(3 * time.Hour),
		SlottingTime: start.Add(-time.Hour),
	})
	require.NoError(t, err)

	g, err := svc.CreateSlotGroup(context.Background(), m.Slug, mission.SlotGroupInput{Title: "Alpha", OrderNumber: 1})
	require.NoError(t, err)

	slot, err := svc.CreateSlot(context.Background(), m.Slug, g.ID, mission.SlotInput{Title: "Squad Leader", Difficulty: 3})
	require.NoError(t, err)

	return &fixture{svc: svc, storage: storage, perms: perms, notifier: notifier, mission: m, group: g, slot: slot}
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("slugifies title and grants creator", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		assert.Equal(t, "operation-anvil", fx.mission.Slug)
		assert.Equal(t, []string{"mission.operation-anvil.creator"}, fx.perms.permissionsOf(fx.mission.CreatorID))
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		_, err := fx.svc.Create(context.Background(), uuid.New(), mission.CreateInput{Title: "Operation Anvil"})
		assert.ErrorIs(t, err, mission.ErrSlugTaken)
	})

	t.Run("end before start rejected", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		start := time.Now().Add(24 * time.Hour)
		_, err := fx.svc.Create(context.Background(), uuid.New(), mission.CreateInput{
			Title:     "Operation Hammer",
			StartTime: start,
			EndTime:   start.Add(-time.Hour),
		})
		require.Error(t, err)
	})
}

func TestService_Assign(t *testing.T) {
	t.Parallel()

	t.Run("confirms registration and notifies assignee", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		soldier := uuid.New()
		reg, err := fx.svc.Register(context.Background(), fx.mission.Slug, fx.slot.ID, soldier, "first pick")
		require.NoError(t, err)

		slot, err := fx.svc.Assign(context.Background(), fx.mission.Slug, fx.slot.ID, reg.ID)
		require.NoError(t, err)
		require.NotNil(t, slot.AssigneeID)
		assert.Equal(t, soldier, *slot.AssigneeID)
		assert.True(t, fx.storage.registrations[reg.ID].Confirmed)

		assigned := fx.notifier.ofType(notification.TypeSlotAssigned)
		require.Len(t, assigned, 1)
		assert.Equal(t, []uuid.UUID{soldier}, assigned[0].userIDs)
		assert.Equal(t, "Squad Leader", assigned[0].data["slotTitle"])
		assert.Equal(t, "Operation Anvil", assigned[0].data["missionTitle"])
	})

	t.Run("reassignment notifies the displaced user", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		first, second := uuid.New(), uuid.New()
		regFirst, err := fx.svc.Register(context.Background(), fx.mission.Slug, fx.slot.ID, first, "")
		require.NoError(t, err)
		regSecond, err := fx.svc.Register(context.Background(), fx.mission.Slug, fx.slot.ID, second, "")
		require.NoError(t, err)

		_, err = fx.svc.Assign(context.Background(), fx.mission.Slug, fx.slot.ID, regFirst.ID)
		require.NoError(t, err)
		slot, err := fx.svc.Assign(context.Background(), fx.mission.Slug, fx.slot.ID, regSecond.ID)
		require.NoError(t, err)
		assert.Equal(t, second, *slot.AssigneeID)

		unassigned := fx.notifier.ofType(notification.TypeSlotUnassigned)
		require.Len(t, unassigned, 1)
		assert.Equal(t, []uuid.UUID{first}, unassigned[0].userIDs)
	})

	t.Run("registration of another slot rejected", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		other, err := fx.svc.CreateSlot(context.Background(), fx.mission.Slug, fx.group.ID, mission.SlotInput{Title: "Medic"})
		require.NoError(t, err)
		reg, err := fx.svc.Register(context.Background(), fx.mission.Slug, other.ID, uuid.New(), "")
		require.NoError(t, err)

		_, err = fx.svc.Assign(context.Background(), fx.mission.Slug, fx.slot.ID, reg.ID)
		assert.ErrorIs(t, err, mission.ErrRegistrationNotFound)
	})
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		soldier := uuid.New()
		_, err := fx.svc.Register(context.Background(), fx.mission.Slug, fx.slot.ID, soldier, "")
		require.NoError(t, err)
		_, err = fx.svc.Register(context.Background(), fx.mission.Slug, fx.slot.ID, soldier, "")
		assert.ErrorIs(t, err, mission.ErrAlreadyRegistered)
	})

	t.Run("unregister vacates an assigned slot", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		soldier := uuid.New()
		reg, err := fx.svc.Register(context.Background(), fx.mission.Slug, fx.slot.ID, soldier, "")
		require.NoError(t, err)
		_, err = fx.svc.Assign(context.Background(), fx.mission.Slug, fx.slot.ID, reg.ID)
		require.NoError(t, err)

		require.NoError(t, fx.svc.Unregister(context.Background(), fx.mission.Slug, fx.slot.ID, soldier))
		assert.Nil(t, fx.storage.slots[fx.slot.ID].AssigneeID)
	})
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("notifies participants and drops mission grants", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		soldierA, soldierB := uuid.New(), uuid.New()
		_, err := fx.svc.Register(context.Background(), fx.mission.Slug, fx.slot.ID, soldierA, "")
		require.NoError(t, err)
		other, err := fx.svc.CreateSlot(context.Background(), fx.mission.Slug, fx.group.ID, mission.SlotInput{Title: "Medic"})
		require.NoError(t, err)
		_, err = fx.svc.Register(context.Background(), fx.mission.Slug, other.ID, soldierB, "")
		require.NoError(t, err)

		require.NoError(t, fx.svc.Delete(context.Background(), fx.mission.Slug))

		_, err = fx.svc.Get(context.Background(), fx.mission.Slug)
		assert.ErrorIs(t, err, mission.ErrMissionNotFound)
		assert.Empty(t, fx.perms.permissionsOf(fx.mission.CreatorID))

		deleted := fx.notifier.ofType(notification.TypeMissionDeleted)
		require.Len(t, deleted, 1)
		assert.ElementsMatch(t, []uuid.UUID{soldierA, soldierB}, deleted[0].userIDs)
		assert.Equal(t, "Operation Anvil", deleted[0].data["missionTitle"])
	})
}

func TestService_GrantPermission_Scope(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	target := uuid.New()

	t.Run("editor grant succeeds", func(t *testing.T) {
		t.Parallel()

		grant, err := fx.svc.GrantPermission(context.Background(), fx.mission.Slug, target, "mission.operation-anvil.editor")
		require.NoError(t, err)
		assert.Equal(t, "mission.operation-anvil.editor", grant.Permission)
	})

	t.Run("out-of-scope strings are rejected", func(t *testing.T) {
		t.Parallel()

		for _, p := range []string{"mission.other.editor", "community.sel.leader", "admin.superadmin", "*"} {
			_, err := fx.svc.GrantPermission(context.Background(), fx.mission.Slug, target, p)
			assert.ErrorIs(t, err, mission.ErrPermissionOutOfScope, "permission %q", p)
		}
	})
}

func TestService_SlotList(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	_, err := fx.svc.Register(context.Background(), fx.mission.Slug, fx.slot.ID, uuid.New(), "here")
	require.NoError(t, err)

	groups, err := fx.svc.SlotList(context.Background(), fx.mission.Slug)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Slots, 1)
	assert.Equal(t, "Squad Leader", groups[0].Slots[0].Title)
	assert.Len(t, groups[0].Slots[0].Registrations, 1)
}
