package sqlite

import (
	"context"
	"time"

	"github.com/example/workspace-sessions/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
// Weekday sets are packed into an integer bitmask with bit 0 = Sunday. The
// workspace id is not stored on the row; reads resolve it through the owning
// session type.
type ScheduleRepository struct {
	pool *ConnectionPool
}

// NewScheduleRepository creates a new SQLite schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// CreateSchedule inserts a recurring schedule template.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	if schedule.ID == "" || schedule.SessionTypeID == "" || len(schedule.Weekdays) == 0 {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	_, err := r.pool.DB().ExecContext(ctx,
		`INSERT INTO schedules (id, session_type_id, weekdays, hour, minute, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		schedule.ID,
		schedule.SessionTypeID,
		encodeWeekdays(schedule.Weekdays),
		schedule.Hour,
		schedule.Minute,
		formatTime(schedule.CreatedAt),
		formatTime(schedule.UpdatedAt),
	)
	return mapSQLiteError(err)
}

// GetSchedule retrieves a schedule by id with its workspace resolved.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	if id == "" {
		return persistence.Schedule{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT s.id, s.session_type_id, st.workspace_id, s.weekdays, s.hour, s.minute, s.created_at, s.updated_at
		 FROM schedules s
		 JOIN session_types st ON st.id = s.session_type_id
		 WHERE s.id = ?`, id)
	return scanSchedule(row)
}

// ListSchedules returns all schedules belonging to a workspace ordered by
// creation time.
func (r *ScheduleRepository) ListSchedules(ctx context.Context, workspaceID int64) ([]persistence.Schedule, error) {
	if workspaceID <= 0 {
		return nil, persistence.ErrNotFound
	}

	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT s.id, s.session_type_id, st.workspace_id, s.weekdays, s.hour, s.minute, s.created_at, s.updated_at
		 FROM schedules s
		 JOIN session_types st ON st.id = s.session_type_id
		 WHERE st.workspace_id = ?
		 ORDER BY s.created_at ASC, s.id ASC`, workspaceID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var schedules []persistence.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

// DeleteSchedule removes a schedule by id.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.DB().ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return mapSQLiteError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanSchedule(row rowScanner) (persistence.Schedule, error) {
	var schedule persistence.Schedule
	var mask int
	var createdAt, updatedAt string
	err := row.Scan(&schedule.ID, &schedule.SessionTypeID, &schedule.WorkspaceID,
		&mask, &schedule.Hour, &schedule.Minute, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Schedule{}, mapSQLiteError(err)
	}

	schedule.Weekdays = decodeWeekdays(mask)
	if schedule.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Schedule{}, err
	}
	if schedule.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Schedule{}, err
	}
	return schedule, nil
}

func encodeWeekdays(weekdays []time.Weekday) int {
	mask := 0
	for _, day := range weekdays {
		mask |= 1 << uint(day)
	}
	return mask
}

func decodeWeekdays(mask int) []time.Weekday {
	var weekdays []time.Weekday
	for day := time.Sunday; day <= time.Saturday; day++ {
		if mask&(1<<uint(day)) != 0 {
			weekdays = append(weekdays, day)
		}
	}
	return weekdays
}
