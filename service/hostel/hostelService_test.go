package hostelsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusportal/model"
	"campusportal/util/sqltest"
)

// repoMock keeps a tiny in-memory room so the conditional claim behaves like
// the real UPDATE ... WHERE current_occupancy < capacity.
type repoMock struct {
	capacity  int64
	occupancy int64
	released  int
	room      *model.HostelRoom

	hasActiveFn      func(ctx context.Context, tx *sql.Tx, userID int64) (bool, error)
	activeAllocFn    func(ctx context.Context, userID int64) (*model.HostelAllocation, error)
	getAllocFn       func(ctx context.Context, tx *sql.Tx, allocationID int64) (*model.HostelAllocation, error)
	updateAllocFn    func(ctx context.Context, tx *sql.Tx, allocationID int64, status model.AllocationStatus, checkIn, checkOut *time.Time, notes *string) error
	getRequestFn     func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.ServiceRequest, error)
	updateRequestFn  func(ctx context.Context, tx *sql.Tx, requestID int64, status model.RequestStatus, assigneeID *int64, completedAt *time.Time) error
	attachFeedbackFn func(ctx context.Context, tx *sql.Tx, requestID int64, feedback string) error
	pendingChangeFn  func(ctx context.Context, userID int64) (bool, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) CreateRoom(ctx context.Context, block, number string, capacity int64) (int64, error) {
	return 1, nil
}
func (m *repoMock) UpdateRoom(ctx context.Context, roomID int64, capacity *int64, maintenance *model.MaintenanceStatus, active *bool) error {
	return nil
}
func (m *repoMock) ListRooms(ctx context.Context) ([]model.HostelRoom, error) { return nil, nil }
func (m *repoMock) GetRoom(ctx context.Context, roomID int64) (*model.HostelRoom, error) {
	if m.room != nil && m.room.ID == roomID {
		return m.room, nil
	}
	return nil, sql.ErrNoRows
}
func (m *repoMock) ClaimSpot(ctx context.Context, tx *sql.Tx, roomID int64) (bool, error) {
	if m.occupancy >= m.capacity {
		return false, nil
	}
	m.occupancy++
	return true, nil
}
func (m *repoMock) ClaimAnySpot(ctx context.Context, tx *sql.Tx) (int64, error) {
	if m.occupancy >= m.capacity {
		return 0, sql.ErrNoRows
	}
	m.occupancy++
	return 1, nil
}
func (m *repoMock) ReleaseSpot(ctx context.Context, tx *sql.Tx, roomID int64) error {
	m.occupancy--
	m.released++
	return nil
}
func (m *repoMock) HasActiveAllocation(ctx context.Context, tx *sql.Tx, userID int64) (bool, error) {
	if m.hasActiveFn == nil {
		return false, nil
	}
	return m.hasActiveFn(ctx, tx, userID)
}
func (m *repoMock) ActiveAllocation(ctx context.Context, userID int64) (*model.HostelAllocation, error) {
	if m.activeAllocFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.activeAllocFn(ctx, userID)
}
func (m *repoMock) InsertAllocation(ctx context.Context, tx *sql.Tx, userID, roomID int64, period string) (int64, error) {
	return 10, nil
}
func (m *repoMock) GetAllocationForUpdate(ctx context.Context, tx *sql.Tx, allocationID int64) (*model.HostelAllocation, error) {
	return m.getAllocFn(ctx, tx, allocationID)
}
func (m *repoMock) UpdateAllocationStatus(ctx context.Context, tx *sql.Tx, allocationID int64, status model.AllocationStatus, checkIn, checkOut *time.Time, notes *string) error {
	if m.updateAllocFn == nil {
		return nil
	}
	return m.updateAllocFn(ctx, tx, allocationID, status, checkIn, checkOut, notes)
}
func (m *repoMock) InsertRequest(ctx context.Context, req *model.ServiceRequest) error {
	req.ID = 20
	return nil
}
func (m *repoMock) GetRequestForUpdate(ctx context.Context, tx *sql.Tx, requestID int64) (*model.ServiceRequest, error) {
	return m.getRequestFn(ctx, tx, requestID)
}
func (m *repoMock) UpdateRequestStatus(ctx context.Context, tx *sql.Tx, requestID int64, status model.RequestStatus, assigneeID *int64, completedAt *time.Time) error {
	if m.updateRequestFn == nil {
		return nil
	}
	return m.updateRequestFn(ctx, tx, requestID, status, assigneeID, completedAt)
}
func (m *repoMock) AttachFeedback(ctx context.Context, tx *sql.Tx, requestID int64, feedback string) error {
	if m.attachFeedbackFn == nil {
		return nil
	}
	return m.attachFeedbackFn(ctx, tx, requestID, feedback)
}
func (m *repoMock) ListRequestsByUser(ctx context.Context, userID int64) ([]model.ServiceRequest, error) {
	return nil, nil
}
func (m *repoMock) ListRequests(ctx context.Context, limit, offset int64) ([]model.ServiceRequest, int64, error) {
	return nil, 0, nil
}
func (m *repoMock) HasPendingRoomChange(ctx context.Context, userID int64) (bool, error) {
	if m.pendingChangeFn == nil {
		return false, nil
	}
	return m.pendingChangeFn(ctx, userID)
}

func newTestService(r Repo) *service {
	return New(sqltest.Open(), r).(*service)
}

func ptr[T any](v T) *T { return &v }

// --- tests ---

func TestRequestAllocation_FillsRoomToCapacity(t *testing.T) {
	ctx := context.Background()
	m := &repoMock{capacity: 2}
	s := newTestService(m)

	_, err := s.RequestAllocation(ctx, 1, ptr(int64(1)), "2024/2025-odd")
	require.NoError(t, err)
	_, err = s.RequestAllocation(ctx, 2, ptr(int64(1)), "2024/2025-odd")
	require.NoError(t, err)

	// third claim hits capacity
	_, err = s.RequestAllocation(ctx, 3, ptr(int64(1)), "2024/2025-odd")
	require.Equal(t, ErrRoomFull, Code(err))
	require.Equal(t, int64(2), m.occupancy)
}

func TestRequestAllocation_AlreadyAllocated(t *testing.T) {
	m := &repoMock{
		capacity: 2,
		hasActiveFn: func(ctx context.Context, tx *sql.Tx, userID int64) (bool, error) {
			return true, nil
		},
	}
	s := newTestService(m)

	_, err := s.RequestAllocation(context.Background(), 1, ptr(int64(1)), "2024/2025-odd")
	require.Equal(t, ErrAlreadyAllocated, Code(err))
	require.Zero(t, m.occupancy)
}

func TestRequestAllocation_AnyRoom(t *testing.T) {
	m := &repoMock{capacity: 1}
	s := newTestService(m)

	alloc, err := s.RequestAllocation(context.Background(), 1, nil, "2024/2025-odd")
	require.NoError(t, err)
	require.Equal(t, int64(1), alloc.RoomID)
	require.Equal(t, model.AllocationAllocated, alloc.Status)

	_, err = s.RequestAllocation(context.Background(), 2, nil, "2024/2025-odd")
	require.Equal(t, ErrRoomFull, Code(err))
}

func TestUpdateAllocationStatus_Transitions(t *testing.T) {
	cases := []struct {
		name string
		from model.AllocationStatus
		to   model.AllocationStatus
		ok   bool
	}{
		{"allocated->checked_in", model.AllocationAllocated, model.AllocationCheckedIn, true},
		{"allocated->cancelled", model.AllocationAllocated, model.AllocationCancelled, true},
		{"checked_in->checked_out", model.AllocationCheckedIn, model.AllocationCheckedOut, true},
		{"allocated->checked_out", model.AllocationAllocated, model.AllocationCheckedOut, false},
		{"checked_out->checked_in", model.AllocationCheckedOut, model.AllocationCheckedIn, false},
		{"cancelled->checked_in", model.AllocationCancelled, model.AllocationCheckedIn, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &repoMock{
				capacity:  2,
				occupancy: 1,
				getAllocFn: func(ctx context.Context, tx *sql.Tx, allocationID int64) (*model.HostelAllocation, error) {
					return &model.HostelAllocation{ID: allocationID, UserID: 1, RoomID: 1, Status: tc.from}, nil
				},
			}
			s := newTestService(m)

			err := s.UpdateAllocationStatus(context.Background(), 10, tc.to, nil)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Equal(t, ErrInvalidStatus, Code(err))
			}
		})
	}
}

func TestUpdateAllocationStatus_ReleasesSpot(t *testing.T) {
	for _, to := range []model.AllocationStatus{model.AllocationCheckedOut, model.AllocationCancelled} {
		from := model.AllocationCheckedIn
		if to == model.AllocationCancelled {
			from = model.AllocationAllocated
		}
		m := &repoMock{
			capacity:  2,
			occupancy: 1,
			getAllocFn: func(ctx context.Context, tx *sql.Tx, allocationID int64) (*model.HostelAllocation, error) {
				return &model.HostelAllocation{ID: allocationID, UserID: 1, RoomID: 1, Status: from}, nil
			},
		}
		s := newTestService(m)

		require.NoError(t, s.UpdateAllocationStatus(context.Background(), 10, to, nil))
		require.Equal(t, 1, m.released, "status %s must free the spot", to)
		require.Zero(t, m.occupancy)
	}
}

func TestUpdateAllocationStatus_CheckInKeepsSpot(t *testing.T) {
	m := &repoMock{
		capacity:  2,
		occupancy: 1,
		getAllocFn: func(ctx context.Context, tx *sql.Tx, allocationID int64) (*model.HostelAllocation, error) {
			return &model.HostelAllocation{ID: allocationID, UserID: 1, RoomID: 1, Status: model.AllocationAllocated}, nil
		},
	}
	s := newTestService(m)

	require.NoError(t, s.UpdateAllocationStatus(context.Background(), 10, model.AllocationCheckedIn, nil))
	require.Zero(t, m.released)
	require.Equal(t, int64(1), m.occupancy)
}

func TestSubmitRequest_RoomChange(t *testing.T) {
	ctx := context.Background()

	t.Run("no active allocation", func(t *testing.T) {
		s := newTestService(&repoMock{})
		_, err := s.SubmitRequest(ctx, 1, 5, model.RequestRoomChange, model.PriorityMedium, "too noisy")
		require.Equal(t, ErrNoActiveAllocation, Code(err))
	})

	t.Run("duplicate pending", func(t *testing.T) {
		m := &repoMock{
			activeAllocFn: func(ctx context.Context, userID int64) (*model.HostelAllocation, error) {
				return &model.HostelAllocation{RoomID: 3, Status: model.AllocationCheckedIn}, nil
			},
			pendingChangeFn: func(ctx context.Context, userID int64) (bool, error) { return true, nil },
		}
		s := newTestService(m)
		_, err := s.SubmitRequest(ctx, 1, 5, model.RequestRoomChange, model.PriorityMedium, "too noisy")
		require.Equal(t, ErrDuplicateRequest, Code(err))
	})

	t.Run("targets held room", func(t *testing.T) {
		m := &repoMock{
			activeAllocFn: func(ctx context.Context, userID int64) (*model.HostelAllocation, error) {
				return &model.HostelAllocation{RoomID: 3, Status: model.AllocationCheckedIn}, nil
			},
		}
		s := newTestService(m)
		req, err := s.SubmitRequest(ctx, 1, 5, model.RequestRoomChange, model.PriorityMedium, "too noisy")
		require.NoError(t, err)
		require.Equal(t, int64(3), req.RoomID) // not the caller-supplied 5
		require.Equal(t, model.RequestSubmitted, req.Status)
	})
}

func TestUpdateRequestStatus_ResolveStampsCompletion(t *testing.T) {
	var gotCompleted *time.Time
	m := &repoMock{
		getRequestFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.ServiceRequest, error) {
			return &model.ServiceRequest{ID: requestID, UserID: 1, Status: model.RequestInProgress}, nil
		},
		updateRequestFn: func(ctx context.Context, tx *sql.Tx, requestID int64, status model.RequestStatus, assigneeID *int64, completedAt *time.Time) error {
			gotCompleted = completedAt
			return nil
		},
	}
	s := newTestService(m)

	require.NoError(t, s.UpdateRequestStatus(context.Background(), 20, model.RequestResolved, nil))
	require.NotNil(t, gotCompleted)
}

func TestUpdateRequestStatus_CancelOnlyEarly(t *testing.T) {
	for _, tc := range []struct {
		from model.RequestStatus
		ok   bool
	}{
		{model.RequestSubmitted, true},
		{model.RequestAcknowledged, true},
		{model.RequestInProgress, false},
		{model.RequestResolved, false},
	} {
		m := &repoMock{
			getRequestFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.ServiceRequest, error) {
				return &model.ServiceRequest{ID: requestID, UserID: 1, Status: tc.from}, nil
			},
		}
		s := newTestService(m)

		err := s.UpdateRequestStatus(context.Background(), 20, model.RequestCancelled, nil)
		if tc.ok {
			require.NoError(t, err, "cancel from %s", tc.from)
		} else {
			require.Equal(t, ErrInvalidStatus, Code(err), "cancel from %s", tc.from)
		}
	}
}

func TestAttachFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("only when resolved", func(t *testing.T) {
		m := &repoMock{
			getRequestFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.ServiceRequest, error) {
				return &model.ServiceRequest{ID: requestID, UserID: 1, Status: model.RequestInProgress}, nil
			},
		}
		s := newTestService(m)
		require.Equal(t, ErrNotResolved, Code(s.AttachFeedback(ctx, 1, 20, "thanks")))
	})

	t.Run("only by owner", func(t *testing.T) {
		m := &repoMock{
			getRequestFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.ServiceRequest, error) {
				return &model.ServiceRequest{ID: requestID, UserID: 99, Status: model.RequestResolved}, nil
			},
		}
		s := newTestService(m)
		require.Equal(t, ErrNotOwner, Code(s.AttachFeedback(ctx, 1, 20, "thanks")))
	})

	t.Run("success", func(t *testing.T) {
		saved := ""
		m := &repoMock{
			getRequestFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.ServiceRequest, error) {
				return &model.ServiceRequest{ID: requestID, UserID: 1, Status: model.RequestResolved}, nil
			},
			attachFeedbackFn: func(ctx context.Context, tx *sql.Tx, requestID int64, feedback string) error {
				saved = feedback
				return nil
			},
		}
		s := newTestService(m)
		require.NoError(t, s.AttachFeedback(ctx, 1, 20, "fixed quickly"))
		require.Equal(t, "fixed quickly", saved)
	})
}

func TestRoomDetail(t *testing.T) {
	s := newTestService(&repoMock{room: &model.HostelRoom{ID: 3, Capacity: 2}})

	room, err := s.RoomDetail(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), room.ID)

	_, err = s.RoomDetail(context.Background(), 4)
	require.Equal(t, ErrRoomNotFound, Code(err))
}

func TestCreateRoom_Validation(t *testing.T) {
	s := newTestService(&repoMock{})
	_, err := s.CreateRoom(context.Background(), "A", "101", 0)
	require.Equal(t, ErrInvalidStatus, Code(err))
}
