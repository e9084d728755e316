// model/capability.go
package model

// Capability is a single action a caller may be allowed to perform.
// Handlers never compare role strings directly; they ask Can(role, cap).
type Capability string

const (
	CapManageCatalog    Capability = "catalog:manage"
	CapBorrowBooks      Capability = "library:borrow"
	CapManageBorrows    Capability = "library:manage"
	CapManageRooms      Capability = "hostel:rooms:manage"
	CapRequestHousing   Capability = "hostel:request"
	CapManageRequests   Capability = "hostel:requests:manage"
	CapManageFees       Capability = "fees:manage"
	CapPayFees          Capability = "fees:pay"
	CapManageBadges     Capability = "gamification:manage"
	CapViewLeaderboard  Capability = "gamification:view"
	CapTrackProgress    Capability = "library:progress"
)

var grants = map[Role][]Capability{
	RoleStudent: {
		CapBorrowBooks, CapRequestHousing, CapPayFees,
		CapViewLeaderboard, CapTrackProgress,
	},
	RoleFaculty: {
		CapBorrowBooks, CapPayFees, CapViewLeaderboard, CapTrackProgress,
		CapManageRequests,
	},
	RoleAdmin: {
		CapManageCatalog, CapBorrowBooks, CapManageBorrows,
		CapManageRooms, CapRequestHousing, CapManageRequests,
		CapManageFees, CapPayFees,
		CapManageBadges, CapViewLeaderboard, CapTrackProgress,
	},
}

// Can is the single authorization policy used by all routes.
func Can(role Role, cap Capability) bool {
	for _, c := range grants[role] {
		if c == cap {
			return true
		}
	}
	return false
}
