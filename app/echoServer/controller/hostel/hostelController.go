// app/echoServer/controller/hostel/hostelController.go
package hostel

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"campusportal/app/echoServer/respond"
	"campusportal/model"
	hostelsvc "campusportal/service/hostel"
)

type Controller struct {
	Svc hostelsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// @Summary  Create room
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/rooms [post]
func (ct *Controller) CreateRoom(c echo.Context) error {
	var req CreateRoomReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}

	id, err := ct.Svc.CreateRoom(c.Request().Context(), req.Block, req.Number, req.Capacity)
	if err != nil {
		ct.Log.Error("room create", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.Created(c, "room created", echo.Map{"id": id})
}

// @Summary  Update room
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/rooms/{id} [put]
func (ct *Controller) UpdateRoom(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req UpdateRoomReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}
	var maint *model.MaintenanceStatus
	if req.Maintenance != nil {
		m := model.MaintenanceStatus(*req.Maintenance)
		maint = &m
	}

	if err := ct.Svc.UpdateRoom(c.Request().Context(), id, req.Capacity, maint, req.Active); err != nil {
		switch hostelsvc.Code(err) {
		case hostelsvc.ErrRoomNotFound:
			return respond.Err(c, http.StatusNotFound, "room not found")
		case hostelsvc.ErrInvalidStatus:
			return respond.Err(c, http.StatusBadRequest, "capacity below current occupancy")
		default:
			ct.Log.Error("room update", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.OK(c, "room updated", nil)
}

// @Summary  List rooms with availability
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/rooms [get]
func (ct *Controller) ListRooms(c echo.Context) error {
	rows, err := ct.Svc.ListRooms(c.Request().Context())
	if err != nil {
		ct.Log.Error("room list", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", rows)
}

// @Summary  Room detail
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/rooms/{id} [get]
func (ct *Controller) RoomDetail(c echo.Context) error {
	roomID, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	room, err := ct.Svc.RoomDetail(c.Request().Context(), roomID)
	if err != nil {
		if hostelsvc.Code(err) == hostelsvc.ErrRoomNotFound {
			return respond.Err(c, http.StatusNotFound, "room not found")
		}
		ct.Log.Error("room detail", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", room)
}

// @Summary  Request a room allocation
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/allocations [post]
func (ct *Controller) RequestAllocation(c echo.Context) error {
	var req AllocationReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}
	uid, _ := c.Get("user_id").(int64)

	alloc, err := ct.Svc.RequestAllocation(c.Request().Context(), uid, req.RoomID, req.Period)
	if err != nil {
		switch hostelsvc.Code(err) {
		case hostelsvc.ErrAlreadyAllocated:
			return respond.Err(c, http.StatusBadRequest, "active allocation already exists")
		case hostelsvc.ErrRoomFull:
			return respond.Err(c, http.StatusBadRequest, "no spot available")
		case hostelsvc.ErrRoomNotFound:
			return respond.Err(c, http.StatusNotFound, "room not found")
		default:
			ct.Log.Error("allocation", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.Created(c, "allocated", alloc)
}

// @Summary  Update allocation status
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/allocations/{id} [put]
func (ct *Controller) UpdateAllocationStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req AllocationStatusReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}

	err = ct.Svc.UpdateAllocationStatus(c.Request().Context(), id, model.AllocationStatus(req.Status), req.Notes)
	if err != nil {
		switch hostelsvc.Code(err) {
		case hostelsvc.ErrNotFound:
			return respond.Err(c, http.StatusNotFound, "allocation not found")
		case hostelsvc.ErrInvalidStatus:
			return respond.Err(c, http.StatusBadRequest, "invalid status transition")
		default:
			ct.Log.Error("allocation status", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.OK(c, "allocation updated", nil)
}

// @Summary  My active allocation
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/allocations/me [get]
func (ct *Controller) MyAllocation(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	alloc, err := ct.Svc.MyAllocation(c.Request().Context(), uid)
	if err != nil {
		switch hostelsvc.Code(err) {
		case hostelsvc.ErrNoActiveAllocation, hostelsvc.ErrNotFound:
			return respond.Err(c, http.StatusNotFound, "no active allocation")
		}
		ct.Log.Error("my allocation", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", alloc)
}

// @Summary  Submit a service request
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/service-requests [post]
func (ct *Controller) SubmitRequest(c echo.Context) error {
	var req ServiceRequestReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}
	prio := model.RequestPriority(req.Priority)
	if prio == "" {
		prio = model.PriorityMedium
	}
	uid, _ := c.Get("user_id").(int64)

	sr, err := ct.Svc.SubmitRequest(c.Request().Context(), uid, req.RoomID, model.RequestType(req.Type), prio, req.Description)
	if err != nil {
		switch hostelsvc.Code(err) {
		case hostelsvc.ErrNoActiveAllocation:
			return respond.Err(c, http.StatusBadRequest, "no active allocation")
		case hostelsvc.ErrDuplicateRequest:
			return respond.Err(c, http.StatusBadRequest, "room change already pending")
		case hostelsvc.ErrRoomNotFound:
			return respond.Err(c, http.StatusNotFound, "room not found")
		default:
			ct.Log.Error("service request", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.Created(c, "request submitted", sr)
}

// @Summary  Update service request status
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/service-requests/{id}/status [put]
func (ct *Controller) UpdateRequestStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req RequestStatusReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}

	err = ct.Svc.UpdateRequestStatus(c.Request().Context(), id, model.RequestStatus(req.Status), req.AssigneeID)
	if err != nil {
		switch hostelsvc.Code(err) {
		case hostelsvc.ErrNotFound:
			return respond.Err(c, http.StatusNotFound, "request not found")
		case hostelsvc.ErrInvalidStatus:
			return respond.Err(c, http.StatusBadRequest, "invalid status transition")
		default:
			ct.Log.Error("request status", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.OK(c, "request updated", nil)
}

// @Summary  Attach feedback to a resolved request
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/service-requests/{id}/feedback [post]
func (ct *Controller) AttachFeedback(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid id")
	}
	var req FeedbackReq
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return respond.ValidationErr(c, err.Error())
	}
	uid, _ := c.Get("user_id").(int64)

	if err := ct.Svc.AttachFeedback(c.Request().Context(), uid, id, req.Feedback); err != nil {
		switch hostelsvc.Code(err) {
		case hostelsvc.ErrNotFound:
			return respond.Err(c, http.StatusNotFound, "request not found")
		case hostelsvc.ErrNotOwner:
			return respond.Err(c, http.StatusForbidden, "forbidden")
		case hostelsvc.ErrNotResolved:
			return respond.Err(c, http.StatusBadRequest, "request not resolved yet")
		default:
			ct.Log.Error("feedback", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
	}
	return respond.OK(c, "feedback recorded", nil)
}

// @Summary  Service requests (own, or all with pagination for staff)
// @Tags     hostel
// @Security BearerAuth
// @Router   /v1/hostel/service-requests [get]
func (ct *Controller) ListRequests(c echo.Context) error {
	role, _ := c.Get("role").(model.Role)
	if model.Can(role, model.CapManageRequests) && c.QueryParam("all") == "true" {
		page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
		if page <= 0 {
			page = 1
		}
		limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
		if limit <= 0 || limit > 100 {
			limit = 10
		}
		rows, total, err := ct.Svc.ListRequests(c.Request().Context(), limit, (page-1)*limit)
		if err != nil {
			ct.Log.Error("request list", "err", err)
			return respond.Err(c, http.StatusInternalServerError, "internal error")
		}
		return respond.Page(c, "ok", rows, page, limit, total)
	}

	uid, _ := c.Get("user_id").(int64)
	rows, err := ct.Svc.MyRequests(c.Request().Context(), uid)
	if err != nil {
		ct.Log.Error("request list", "err", err)
		return respond.Err(c, http.StatusInternalServerError, "internal error")
	}
	return respond.OK(c, "ok", rows)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
