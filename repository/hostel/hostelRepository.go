// repository/hostel/repo.go
package hostelrepo

import (
	"context"
	"database/sql"
	"time"

	"campusportal/model"
)

type Repo interface {
	// Rooms
	CreateRoom(ctx context.Context, block, number string, capacity int64) (int64, error)
	UpdateRoom(ctx context.Context, roomID int64, capacity *int64, maintenance *model.MaintenanceStatus, active *bool) error
	ListRooms(ctx context.Context) ([]model.HostelRoom, error)
	GetRoom(ctx context.Context, roomID int64) (*model.HostelRoom, error)

	// ClaimSpot increments occupancy only while the room can take one more.
	// Returns false when the room is full, inactive or under maintenance.
	ClaimSpot(ctx context.Context, tx *sql.Tx, roomID int64) (bool, error)
	// ClaimAnySpot picks some room with a free spot and claims it.
	ClaimAnySpot(ctx context.Context, tx *sql.Tx) (int64, error)
	ReleaseSpot(ctx context.Context, tx *sql.Tx, roomID int64) error

	// Allocations
	HasActiveAllocation(ctx context.Context, tx *sql.Tx, userID int64) (bool, error)
	ActiveAllocation(ctx context.Context, userID int64) (*model.HostelAllocation, error)
	InsertAllocation(ctx context.Context, tx *sql.Tx, userID, roomID int64, period string) (int64, error)
	GetAllocationForUpdate(ctx context.Context, tx *sql.Tx, allocationID int64) (*model.HostelAllocation, error)
	UpdateAllocationStatus(ctx context.Context, tx *sql.Tx, allocationID int64, status model.AllocationStatus, checkIn, checkOut *time.Time, notes *string) error

	// Service requests
	InsertRequest(ctx context.Context, req *model.ServiceRequest) error
	GetRequestForUpdate(ctx context.Context, tx *sql.Tx, requestID int64) (*model.ServiceRequest, error)
	UpdateRequestStatus(ctx context.Context, tx *sql.Tx, requestID int64, status model.RequestStatus, assigneeID *int64, completedAt *time.Time) error
	AttachFeedback(ctx context.Context, tx *sql.Tx, requestID int64, feedback string) error
	ListRequestsByUser(ctx context.Context, userID int64) ([]model.ServiceRequest, error)
	ListRequests(ctx context.Context, limit, offset int64) ([]model.ServiceRequest, int64, error)
	HasPendingRoomChange(ctx context.Context, userID int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// Rooms

func (r *repo) CreateRoom(ctx context.Context, block, number string, capacity int64) (int64, error) {
	const q = `
	INSERT INTO hostel_rooms (block, number, capacity, current_occupancy, maintenance_status, active)
	VALUES ($1,$2,$3,0,'good',TRUE)
	RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, block, number, capacity).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) UpdateRoom(ctx context.Context, roomID int64, capacity *int64, maintenance *model.MaintenanceStatus, active *bool) error {
	// Capacity may never drop below current occupancy.
	const q = `
	UPDATE hostel_rooms
	SET capacity = COALESCE($2, capacity),
		maintenance_status = COALESCE($3, maintenance_status),
		active = COALESCE($4, active)
	WHERE id = $1
	AND COALESCE($2, capacity) >= current_occupancy`
	res, err := r.db.ExecContext(ctx, q, roomID, capacity, maintenance, active)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const roomCols = `
	id, block, number, capacity, current_occupancy, maintenance_status, active,
	(active AND maintenance_status = 'good' AND current_occupancy < capacity) AS is_available,
	(capacity - current_occupancy) AS available_spots`

func (r *repo) ListRooms(ctx context.Context) ([]model.HostelRoom, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roomCols+` FROM hostel_rooms ORDER BY block, number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HostelRoom
	for rows.Next() {
		var h model.HostelRoom
		if err := rows.Scan(&h.ID, &h.Block, &h.Number, &h.Capacity, &h.CurrentOccupancy,
			&h.MaintenanceStatus, &h.Active, &h.IsAvailable, &h.AvailableSpots); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *repo) GetRoom(ctx context.Context, roomID int64) (*model.HostelRoom, error) {
	var h model.HostelRoom
	err := r.db.QueryRowContext(ctx, `SELECT `+roomCols+` FROM hostel_rooms WHERE id = $1`, roomID).
		Scan(&h.ID, &h.Block, &h.Number, &h.Capacity, &h.CurrentOccupancy,
			&h.MaintenanceStatus, &h.Active, &h.IsAvailable, &h.AvailableSpots)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *repo) ClaimSpot(ctx context.Context, tx *sql.Tx, roomID int64) (bool, error) {
	const q = `
	UPDATE hostel_rooms
	SET current_occupancy = current_occupancy + 1
	WHERE id = $1
	AND active
	AND maintenance_status = 'good'
	AND current_occupancy < capacity`
	res, err := tx.ExecContext(ctx, q, roomID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) ClaimAnySpot(ctx context.Context, tx *sql.Tx) (int64, error) {
	// SKIP LOCKED keeps concurrent requests from queueing on the same room.
	const q = `
	UPDATE hostel_rooms
	SET current_occupancy = current_occupancy + 1
	WHERE id = (
		SELECT id FROM hostel_rooms
		WHERE active
		AND maintenance_status = 'good'
		AND current_occupancy < capacity
		ORDER BY block, number
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	)
	RETURNING id`
	var roomID int64
	if err := tx.QueryRowContext(ctx, q).Scan(&roomID); err != nil {
		return 0, err
	}
	return roomID, nil
}

func (r *repo) ReleaseSpot(ctx context.Context, tx *sql.Tx, roomID int64) error {
	const q = `
	UPDATE hostel_rooms
	SET current_occupancy = current_occupancy - 1
	WHERE id = $1
	AND current_occupancy > 0`
	_, err := tx.ExecContext(ctx, q, roomID)
	return err
}

// Allocations

func (r *repo) HasActiveAllocation(ctx context.Context, tx *sql.Tx, userID int64) (bool, error) {
	const q = `
	SELECT COUNT(*)
	FROM hostel_allocations
	WHERE user_id = $1
	AND status IN ('allocated','checked_in')`
	var n int64
	if err := tx.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

const allocationCols = `id, user_id, room_id, academic_period, status, check_in_at, check_out_at, notes, created_at`

func scanAllocation(row *sql.Row) (*model.HostelAllocation, error) {
	var a model.HostelAllocation
	err := row.Scan(&a.ID, &a.UserID, &a.RoomID, &a.AcademicPeriod, &a.Status,
		&a.CheckInAt, &a.CheckOutAt, &a.Notes, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repo) ActiveAllocation(ctx context.Context, userID int64) (*model.HostelAllocation, error) {
	return scanAllocation(r.db.QueryRowContext(ctx, `
	SELECT `+allocationCols+`
	FROM hostel_allocations
	WHERE user_id = $1
	AND status IN ('allocated','checked_in')
	ORDER BY created_at DESC
	LIMIT 1`, userID))
}

func (r *repo) InsertAllocation(ctx context.Context, tx *sql.Tx, userID, roomID int64, period string) (int64, error) {
	const q = `
	INSERT INTO hostel_allocations (user_id, room_id, academic_period, status)
	VALUES ($1,$2,$3,'allocated')
	RETURNING id`
	var id int64
	if err := tx.QueryRowContext(ctx, q, userID, roomID, period).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) GetAllocationForUpdate(ctx context.Context, tx *sql.Tx, allocationID int64) (*model.HostelAllocation, error) {
	return scanAllocation(tx.QueryRowContext(ctx, `
	SELECT `+allocationCols+`
	FROM hostel_allocations
	WHERE id = $1
	FOR UPDATE`, allocationID))
}

func (r *repo) UpdateAllocationStatus(ctx context.Context, tx *sql.Tx, allocationID int64, status model.AllocationStatus, checkIn, checkOut *time.Time, notes *string) error {
	const q = `
	UPDATE hostel_allocations
	SET status = $2,
		check_in_at = COALESCE($3, check_in_at),
		check_out_at = COALESCE($4, check_out_at),
		notes = COALESCE($5, notes)
	WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, allocationID, status, checkIn, checkOut, notes)
	return err
}

// Service requests

const requestCols = `id, user_id, room_id, type, priority, status, description, assignee_id, feedback, completed_at, created_at`

func (r *repo) InsertRequest(ctx context.Context, req *model.ServiceRequest) error {
	const q = `
	INSERT INTO hostel_service_requests (user_id, room_id, type, priority, status, description)
	VALUES ($1,$2,$3,$4,'submitted',$5)
	RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, req.UserID, req.RoomID, req.Type, req.Priority, req.Description).
		Scan(&req.ID, &req.CreatedAt)
}

func scanRequest(row *sql.Row) (*model.ServiceRequest, error) {
	var s model.ServiceRequest
	err := row.Scan(&s.ID, &s.UserID, &s.RoomID, &s.Type, &s.Priority, &s.Status,
		&s.Description, &s.AssigneeID, &s.Feedback, &s.CompletedAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) GetRequestForUpdate(ctx context.Context, tx *sql.Tx, requestID int64) (*model.ServiceRequest, error) {
	return scanRequest(tx.QueryRowContext(ctx, `
	SELECT `+requestCols+`
	FROM hostel_service_requests
	WHERE id = $1
	FOR UPDATE`, requestID))
}

func (r *repo) UpdateRequestStatus(ctx context.Context, tx *sql.Tx, requestID int64, status model.RequestStatus, assigneeID *int64, completedAt *time.Time) error {
	const q = `
	UPDATE hostel_service_requests
	SET status = $2,
		assignee_id = COALESCE($3, assignee_id),
		completed_at = COALESCE($4, completed_at)
	WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, requestID, status, assigneeID, completedAt)
	return err
}

func (r *repo) AttachFeedback(ctx context.Context, tx *sql.Tx, requestID int64, feedback string) error {
	const q = `
	UPDATE hostel_service_requests
	SET feedback = $2
	WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, requestID, feedback)
	return err
}

func (r *repo) ListRequestsByUser(ctx context.Context, userID int64) ([]model.ServiceRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+requestCols+`
	FROM hostel_service_requests
	WHERE user_id = $1
	ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *repo) ListRequests(ctx context.Context, limit, offset int64) ([]model.ServiceRequest, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hostel_service_requests`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+requestCols+`
	FROM hostel_service_requests
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectRequests(rows)
	return out, total, err
}

func collectRequests(rows *sql.Rows) ([]model.ServiceRequest, error) {
	var out []model.ServiceRequest
	for rows.Next() {
		var s model.ServiceRequest
		if err := rows.Scan(&s.ID, &s.UserID, &s.RoomID, &s.Type, &s.Priority, &s.Status,
			&s.Description, &s.AssigneeID, &s.Feedback, &s.CompletedAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repo) HasPendingRoomChange(ctx context.Context, userID int64) (bool, error) {
	const q = `
	SELECT COUNT(*)
	FROM hostel_service_requests
	WHERE user_id = $1
	AND type = 'room_change'
	AND status IN ('submitted','acknowledged','in_progress')`
	var n int64
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
