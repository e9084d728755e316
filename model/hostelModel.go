// model/hostel.go
package model

import "time"

type MaintenanceStatus string

const (
	MaintenanceGood       MaintenanceStatus = "good"
	MaintenanceNeedsWork  MaintenanceStatus = "needs_repair"
	MaintenanceInProgress MaintenanceStatus = "under_maintenance"
	MaintenanceOutOfOrder MaintenanceStatus = "out_of_order"
)

type HostelRoom struct {
	ID                int64             `json:"id"`
	Block             string            `json:"block"`
	Number            string            `json:"number"`
	Capacity          int64             `json:"capacity"`
	CurrentOccupancy  int64             `json:"current_occupancy"`
	MaintenanceStatus MaintenanceStatus `json:"maintenance_status"`
	Active            bool              `json:"active"`

	// Derived at read time, never stored.
	IsAvailable    bool  `json:"is_available"`
	AvailableSpots int64 `json:"available_spots"`
}

type AllocationStatus string

const (
	AllocationAllocated  AllocationStatus = "allocated"
	AllocationCheckedIn  AllocationStatus = "checked_in"
	AllocationCheckedOut AllocationStatus = "checked_out"
	AllocationCancelled  AllocationStatus = "cancelled"
)

type HostelAllocation struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"user_id"`
	RoomID         int64            `json:"room_id"`
	AcademicPeriod string           `json:"academic_period"`
	Status         AllocationStatus `json:"status"`
	CheckInAt      *time.Time       `json:"check_in_at,omitempty"`
	CheckOutAt     *time.Time       `json:"check_out_at,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

type RequestType string

const (
	RequestMaintenance RequestType = "maintenance"
	RequestCleaning    RequestType = "cleaning"
	RequestRoomChange  RequestType = "room_change"
	RequestOther       RequestType = "other"
)

type RequestStatus string

const (
	RequestSubmitted    RequestStatus = "submitted"
	RequestAcknowledged RequestStatus = "acknowledged"
	RequestInProgress   RequestStatus = "in_progress"
	RequestResolved     RequestStatus = "resolved"
	RequestCancelled    RequestStatus = "cancelled"
)

type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

type ServiceRequest struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	RoomID      int64           `json:"room_id"`
	Type        RequestType     `json:"type"`
	Priority    RequestPriority `json:"priority"`
	Status      RequestStatus   `json:"status"`
	Description string          `json:"description"`
	AssigneeID  *int64          `json:"assignee_id,omitempty"`
	Feedback    *string         `json:"feedback,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
