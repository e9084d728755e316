package hostelsvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campusportal/model"
)

// errors used by controllers

type ErrCode string

const (
	ErrRoomFull           ErrCode = "ROOM_FULL"
	ErrAlreadyAllocated   ErrCode = "ALREADY_ALLOCATED"
	ErrRoomNotFound       ErrCode = "ROOM_NOT_FOUND"
	ErrInvalidStatus      ErrCode = "INVALID_STATUS"
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrNotOwner           ErrCode = "NOT_OWNER"
	ErrNotResolved        ErrCode = "NOT_RESOLVED"
	ErrDuplicateRequest   ErrCode = "DUPLICATE_REQUEST"
	ErrNoActiveAllocation ErrCode = "NO_ACTIVE_ALLOCATION"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	CreateRoom(ctx context.Context, block, number string, capacity int64) (int64, error)
	UpdateRoom(ctx context.Context, roomID int64, capacity *int64, maintenance *model.MaintenanceStatus, active *bool) error
	ListRooms(ctx context.Context) ([]model.HostelRoom, error)
	GetRoom(ctx context.Context, roomID int64) (*model.HostelRoom, error)
	ClaimSpot(ctx context.Context, tx *sql.Tx, roomID int64) (bool, error)
	ClaimAnySpot(ctx context.Context, tx *sql.Tx) (int64, error)
	ReleaseSpot(ctx context.Context, tx *sql.Tx, roomID int64) error

	HasActiveAllocation(ctx context.Context, tx *sql.Tx, userID int64) (bool, error)
	ActiveAllocation(ctx context.Context, userID int64) (*model.HostelAllocation, error)
	InsertAllocation(ctx context.Context, tx *sql.Tx, userID, roomID int64, period string) (int64, error)
	GetAllocationForUpdate(ctx context.Context, tx *sql.Tx, allocationID int64) (*model.HostelAllocation, error)
	UpdateAllocationStatus(ctx context.Context, tx *sql.Tx, allocationID int64, status model.AllocationStatus, checkIn, checkOut *time.Time, notes *string) error

	InsertRequest(ctx context.Context, req *model.ServiceRequest) error
	GetRequestForUpdate(ctx context.Context, tx *sql.Tx, requestID int64) (*model.ServiceRequest, error)
	UpdateRequestStatus(ctx context.Context, tx *sql.Tx, requestID int64, status model.RequestStatus, assigneeID *int64, completedAt *time.Time) error
	AttachFeedback(ctx context.Context, tx *sql.Tx, requestID int64, feedback string) error
	ListRequestsByUser(ctx context.Context, userID int64) ([]model.ServiceRequest, error)
	ListRequests(ctx context.Context, limit, offset int64) ([]model.ServiceRequest, int64, error)
	HasPendingRoomChange(ctx context.Context, userID int64) (bool, error)
}

type Service interface {
	// Rooms
	CreateRoom(ctx context.Context, block, number string, capacity int64) (int64, error)
	UpdateRoom(ctx context.Context, roomID int64, capacity *int64, maintenance *model.MaintenanceStatus, active *bool) error
	ListRooms(ctx context.Context) ([]model.HostelRoom, error)
	RoomDetail(ctx context.Context, roomID int64) (*model.HostelRoom, error)

	// RequestAllocation claims a spot (in the given room, or any free one when
	// roomID is nil) and opens the allocation in the same transaction.
	RequestAllocation(ctx context.Context, userID int64, roomID *int64, period string) (*model.HostelAllocation, error)

	// UpdateAllocationStatus drives allocated -> checked_in -> checked_out and
	// cancellation; check-out and cancel give the spot back.
	UpdateAllocationStatus(ctx context.Context, allocationID int64, status model.AllocationStatus, notes *string) error

	MyAllocation(ctx context.Context, userID int64) (*model.HostelAllocation, error)

	// Service requests
	SubmitRequest(ctx context.Context, userID int64, roomID int64, typ model.RequestType, priority model.RequestPriority, description string) (*model.ServiceRequest, error)
	UpdateRequestStatus(ctx context.Context, requestID int64, status model.RequestStatus, assigneeID *int64) error
	AttachFeedback(ctx context.Context, userID, requestID int64, feedback string) error
	MyRequests(ctx context.Context, userID int64) ([]model.ServiceRequest, error)
	ListRequests(ctx context.Context, limit, offset int64) ([]model.ServiceRequest, int64, error)
}

// ----- Service implementation -----

type service struct {
	db  *sql.DB
	r   Repo
	now func() time.Time
}

func New(db *sql.DB, r Repo) Service {
	return &service{db: db, r: r, now: time.Now}
}

func (s *service) CreateRoom(ctx context.Context, block, number string, capacity int64) (int64, error) {
	if capacity <= 0 {
		return 0, makeErr(ErrInvalidStatus)
	}
	return s.r.CreateRoom(ctx, block, number, capacity)
}

func (s *service) UpdateRoom(ctx context.Context, roomID int64, capacity *int64, maintenance *model.MaintenanceStatus, active *bool) error {
	if maintenance != nil {
		switch *maintenance {
		case model.MaintenanceGood, model.MaintenanceNeedsWork, model.MaintenanceInProgress, model.MaintenanceOutOfOrder:
		default:
			return makeErr(ErrInvalidStatus)
		}
	}
	err := s.r.UpdateRoom(ctx, roomID, capacity, maintenance, active)
	if errors.Is(err, sql.ErrNoRows) {
		return makeErr(ErrRoomNotFound)
	}
	return err
}

func (s *service) ListRooms(ctx context.Context) ([]model.HostelRoom, error) {
	return s.r.ListRooms(ctx)
}

func (s *service) RoomDetail(ctx context.Context, roomID int64) (*model.HostelRoom, error) {
	room, err := s.r.GetRoom(ctx, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrRoomNotFound)
	}
	return room, err
}

func (s *service) RequestAllocation(ctx context.Context, userID int64, roomID *int64, period string) (alloc *model.HostelAllocation, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	active, err := s.r.HasActiveAllocation(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, makeErr(ErrAlreadyAllocated)
	}

	var room int64
	if roomID != nil {
		claimed, cerr := s.r.ClaimSpot(ctx, tx, *roomID)
		if cerr != nil {
			return nil, cerr
		}
		if !claimed {
			return nil, makeErr(ErrRoomFull)
		}
		room = *roomID
	} else {
		room, err = s.r.ClaimAnySpot(ctx, tx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, makeErr(ErrRoomFull)
			}
			return nil, err
		}
	}

	id, err := s.r.InsertAllocation(ctx, tx, userID, room, period)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &model.HostelAllocation{
		ID:             id,
		UserID:         userID,
		RoomID:         room,
		AcademicPeriod: period,
		Status:         model.AllocationAllocated,
	}, nil
}

// validTransitions lists the allocation state machine edges.
var validTransitions = map[model.AllocationStatus][]model.AllocationStatus{
	model.AllocationAllocated: {model.AllocationCheckedIn, model.AllocationCancelled},
	model.AllocationCheckedIn: {model.AllocationCheckedOut},
}

func canTransition(from, to model.AllocationStatus) bool {
	for _, t := range validTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func (s *service) UpdateAllocationStatus(ctx context.Context, allocationID int64, status model.AllocationStatus, notes *string) (err error) {
	switch status {
	case model.AllocationAllocated, model.AllocationCheckedIn, model.AllocationCheckedOut, model.AllocationCancelled:
	default:
		return makeErr(ErrInvalidStatus)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	alloc, err := s.r.GetAllocationForUpdate(ctx, tx, allocationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if !canTransition(alloc.Status, status) {
		return makeErr(ErrInvalidStatus)
	}

	now := s.now().UTC()
	var checkIn, checkOut *time.Time
	switch status {
	case model.AllocationCheckedIn:
		checkIn = &now
	case model.AllocationCheckedOut:
		checkOut = &now
	}

	if err = s.r.UpdateAllocationStatus(ctx, tx, allocationID, status, checkIn, checkOut, notes); err != nil {
		return err
	}
	// Leaving the room frees the spot the allocation claimed.
	if status == model.AllocationCheckedOut || status == model.AllocationCancelled {
		if err = s.r.ReleaseSpot(ctx, tx, alloc.RoomID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *service) MyAllocation(ctx context.Context, userID int64) (*model.HostelAllocation, error) {
	alloc, err := s.r.ActiveAllocation(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNoActiveAllocation)
	}
	return alloc, err
}

func (s *service) SubmitRequest(ctx context.Context, userID int64, roomID int64, typ model.RequestType, priority model.RequestPriority, description string) (*model.ServiceRequest, error) {
	if priority == "" {
		priority = model.PriorityMedium
	}

	if typ == model.RequestRoomChange {
		alloc, err := s.r.ActiveAllocation(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, makeErr(ErrNoActiveAllocation)
			}
			return nil, err
		}
		pending, err := s.r.HasPendingRoomChange(ctx, userID)
		if err != nil {
			return nil, err
		}
		if pending {
			return nil, makeErr(ErrDuplicateRequest)
		}
		// Room-change tickets always target the room currently held.
		roomID = alloc.RoomID
	}

	req := &model.ServiceRequest{
		UserID:      userID,
		RoomID:      roomID,
		Type:        typ,
		Priority:    priority,
		Status:      model.RequestSubmitted,
		Description: description,
	}
	if err := s.r.InsertRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// requestTransitions: submitted -> acknowledged -> in_progress -> resolved,
// cancel only from the first two states.
var requestTransitions = map[model.RequestStatus][]model.RequestStatus{
	model.RequestSubmitted:    {model.RequestAcknowledged, model.RequestCancelled},
	model.RequestAcknowledged: {model.RequestInProgress, model.RequestCancelled},
	model.RequestInProgress:   {model.RequestResolved},
}

func canRequestTransition(from, to model.RequestStatus) bool {
	for _, t := range requestTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func (s *service) UpdateRequestStatus(ctx context.Context, requestID int64, status model.RequestStatus, assigneeID *int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	req, err := s.r.GetRequestForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if !canRequestTransition(req.Status, status) {
		return makeErr(ErrInvalidStatus)
	}

	var completedAt *time.Time
	if status == model.RequestResolved {
		now := s.now().UTC()
		completedAt = &now
	}
	if err = s.r.UpdateRequestStatus(ctx, tx, requestID, status, assigneeID, completedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) AttachFeedback(ctx context.Context, userID, requestID int64, feedback string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	req, err := s.r.GetRequestForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if req.UserID != userID {
		return makeErr(ErrNotOwner)
	}
	if req.Status != model.RequestResolved {
		return makeErr(ErrNotResolved)
	}

	if err = s.r.AttachFeedback(ctx, tx, requestID, feedback); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) MyRequests(ctx context.Context, userID int64) ([]model.ServiceRequest, error) {
	return s.r.ListRequestsByUser(ctx, userID)
}

func (s *service) ListRequests(ctx context.Context, limit, offset int64) ([]model.ServiceRequest, int64, error) {
	return s.r.ListRequests(ctx, limit, offset)
}
