package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/internal/mission"
)

// MissionRepository persists missions, slot structure and registrations.
// Slot groups and slots cascade on mission delete via foreign keys.
type MissionRepository struct {
	pool *pgxpool.Pool
}

// NewMissionRepository creates a MissionRepository.
func NewMissionRepository(pool *pgxpool.Pool) *MissionRepository {
	return &MissionRepository{pool: pool}
}

func (r *MissionRepository) Create(ctx context.Context, m mission.Mission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO missions (id, community_id, creator_id, title, slug, description,
		                       start_time, end_time, slotting_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.CommunityID, m.CreatorID, m.Title, m.Slug, m.Description,
		m.StartTime, m.EndTime, m.SlottingTime, m.CreatedAt,
	)
	return err
}

func (r *MissionRepository) GetBySlug(ctx context.Context, slug string) (mission.Mission, error) {
	var m mission.Mission
	err := r.pool.QueryRow(ctx,
		`SELECT id, community_id, creator_id, title, slug, description,
		        start_time, end_time, slotting_time, created_at
		 FROM missions WHERE slug = $1`,
		slug,
	).Scan(&m.ID, &m.CommunityID, &m.CreatorID, &m.Title, &m.Slug, &m.Description,
		&m.StartTime, &m.EndTime, &m.SlottingTime, &m.CreatedAt)
	return m, err
}

func (r *MissionRepository) List(ctx context.Context, page apiutil.Pagination) ([]mission.Mission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, community_id, creator_id, title, slug, description,
		        start_time, end_time, slotting_time, created_at
		 FROM missions
		 ORDER BY start_time DESC
		 LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []mission.Mission
	for rows.Next() {
		var m mission.Mission
		if err := rows.Scan(&m.ID, &m.CommunityID, &m.CreatorID, &m.Title, &m.Slug, &m.Description,
			&m.StartTime, &m.EndTime, &m.SlottingTime, &m.CreatedAt); err != nil {
			return nil, err
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

func (r *MissionRepository) Update(ctx context.Context, m mission.Mission) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE missions SET title = $2, description = $3, start_time = $4,
		        end_time = $5, slotting_time = $6
		 WHERE id = $1`,
		m.ID, m.Title, m.Description, m.StartTime, m.EndTime, m.SlottingTime,
	)
	return err
}

func (r *MissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM missions WHERE id = $1`, id)
	return err
}

func (r *MissionRepository) CreateSlotGroup(ctx context.Context, g mission.SlotGroup) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO slot_groups (id, mission_id, title, order_number)
		 VALUES ($1, $2, $3, $4)`,
		g.ID, g.MissionID, g.Title, g.OrderNumber,
	)
	return err
}

func (r *MissionRepository) GetSlotGroup(ctx context.Context, id uuid.UUID) (mission.SlotGroup, error) {
	var g mission.SlotGroup
	err := r.pool.QueryRow(ctx,
		`SELECT id, mission_id, title, order_number FROM slot_groups WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.MissionID, &g.Title, &g.OrderNumber)
	return g, err
}

func (r *MissionRepository) ListSlotGroups(ctx context.Context, missionID uuid.UUID) ([]mission.SlotGroup, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, mission_id, title, order_number FROM slot_groups
		 WHERE mission_id = $1
		 ORDER BY order_number ASC`,
		missionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []mission.SlotGroup
	for rows.Next() {
		var g mission.SlotGroup
		if err := rows.Scan(&g.ID, &g.MissionID, &g.Title, &g.OrderNumber); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *MissionRepository) UpdateSlotGroup(ctx context.Context, g mission.SlotGroup) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE slot_groups SET title = $2, order_number = $3 WHERE id = $1`,
		g.ID, g.Title, g.OrderNumber,
	)
	return err
}

func (r *MissionRepository) DeleteSlotGroup(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM slot_groups WHERE id = $1`, id)
	return err
}

func (r *MissionRepository) CreateSlot(ctx context.Context, s mission.Slot) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO slots (id, slot_group_id, title, difficulty, reserve, order_number, assignee_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.SlotGroupID, s.Title, s.Difficulty, s.Reserve, s.OrderNumber, s.AssigneeID,
	)
	return err
}

func (r *MissionRepository) GetSlot(ctx context.Context, id uuid.UUID) (mission.Slot, error) {
	var s mission.Slot
	err := r.pool.QueryRow(ctx,
		`SELECT id, slot_group_id, title, difficulty, reserve, order_number, assignee_id
		 FROM slots WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.SlotGroupID, &s.Title, &s.Difficulty, &s.Reserve, &s.OrderNumber, &s.AssigneeID)
	return s, err
}

func (r *MissionRepository) ListSlots(ctx context.Context, slotGroupID uuid.UUID) ([]mission.Slot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, slot_group_id, title, difficulty, reserve, order_number, assignee_id
		 FROM slots
		 WHERE slot_group_id = $1
		 ORDER BY order_number ASC`,
		slotGroupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []mission.Slot
	for rows.Next() {
		var s mission.Slot
		if err := rows.Scan(&s.ID, &s.SlotGroupID, &s.Title, &s.Difficulty, &s.Reserve, &s.OrderNumber, &s.AssigneeID); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *MissionRepository) UpdateSlot(ctx context.Context, s mission.Slot) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE slots SET title = $2, difficulty = $3, reserve = $4, order_number = $5, assignee_id = $6
		 WHERE id = $1`,
		s.ID, s.Title, s.Difficulty, s.Reserve, s.OrderNumber, s.AssigneeID,
	)
	return err
}

func (r *MissionRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM slots WHERE id = $1`, id)
	return err
}

func (r *MissionRepository) CreateRegistration(ctx context.Context, reg mission.Registration) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO slot_registrations (id, slot_id, user_id, comment, confirmed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.SlotID, reg.UserID, reg.Comment, reg.Confirmed, reg.CreatedAt,
	)
	return err
}

func (r *MissionRepository) GetRegistration(ctx context.Context, id uuid.UUID) (mission.Registration, error) {
	var reg mission.Registration
	err := r.pool.QueryRow(ctx,
		`SELECT id, slot_id, user_id, comment, confirmed, created_at
		 FROM slot_registrations WHERE id = $1`,
		id,
	).Scan(&reg.ID, &reg.SlotID, &reg.UserID, &reg.Comment, &reg.Confirmed, &reg.CreatedAt)
	return reg, err
}

func (r *MissionRepository) ListRegistrations(ctx context.Context, slotID uuid.UUID) ([]mission.Registration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, slot_id, user_id, comment, confirmed, created_at
		 FROM slot_registrations
		 WHERE slot_id = $1
		 ORDER BY created_at ASC`,
		slotID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []mission.Registration
	for rows.Next() {
		var reg mission.Registration
		if err := rows.Scan(&reg.ID, &reg.SlotID, &reg.UserID, &reg.Comment, &reg.Confirmed, &reg.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *MissionRepository) UpdateRegistration(ctx context.Context, reg mission.Registration) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE slot_registrations SET comment = $2, confirmed = $3 WHERE id = $1`,
		reg.ID, reg.Comment, reg.Confirmed,
	)
	return err
}

func (r *MissionRepository) DeleteRegistration(ctx context.Context, slotID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM slot_registrations WHERE slot_id = $1 AND user_id = $2`,
		slotID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *MissionRepository) ListParticipants(ctx context.Context, missionID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT sr.user_id
		 FROM slot_registrations sr
		 JOIN slots s ON s.id = sr.slot_id
		 JOIN slot_groups g ON g.id = s.slot_group_id
		 WHERE g.mission_id = $1`,
		missionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}
