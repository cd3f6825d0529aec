package timecard

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/VinoFleet/VinoFleet/internal/booking"
	"github.com/VinoFleet/VinoFleet/internal/common/httpjson"
	"github.com/VinoFleet/VinoFleet/internal/common/logger"
	commonserver "github.com/VinoFleet/VinoFleet/internal/common/server"
)

// ScheduleSource 排班查询消费的预订面（booking.Repo 实现它）。
type ScheduleSource interface {
	ListForDriver(ctx context.Context, driverID string, day time.Time) ([]booking.Booking, error)
}

// Handler 打卡工作流 HTTP 接口。
//
// 响应分两层：可预期的工作流分支永远是 200 + status 判别字段；
// 只有鉴权缺失、请求体非法、数据库故障这类系统问题才是 4xx/5xx，
// 且带 requestId 供支持排障。
type Handler struct {
	svc      *Service
	schedule ScheduleSource
	log      logger.Logger
}

func NewHandler(svc *Service, schedule ScheduleSource, log logger.Logger) *Handler {
	return &Handler{svc: svc, schedule: schedule, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/workflow/clock", h.handleClock)
	mux.HandleFunc("/api/workflow/status", h.handleStatus)
	mux.HandleFunc("/api/workflow/schedule", h.handleSchedule)
	mux.HandleFunc("/api/workflow/inspection", h.handleInspection)
	mux.HandleFunc("/api/workflow/hos", h.handleHOS)
}

type clockRequest struct {
	Action        string `json:"action"` // clock_in / clock_out
	Location      string `json:"location"`
	VehicleID     string `json:"vehicleId"`
	Signature     string `json:"signature"`
	ForceClockOut bool   `json:"forceClockOut"`
}

func (h *Handler) handleClock(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.writeStatus(w, r, driverID)
	case http.MethodPost:
		var req clockRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		var out Outcome
		var err error
		action := strings.TrimSpace(req.Action)
		switch action {
		case "clock_in":
			out, err = h.svc.ClockIn(r.Context(), driverID, ClockInInput{
				VehicleID:     req.VehicleID,
				Location:      req.Location,
				ForceClockOut: req.ForceClockOut,
			})
		case "clock_out":
			out, err = h.svc.ClockOut(r.Context(), driverID, ClockOutInput{
				Signature: req.Signature,
			})
		default:
			httpjson.WriteError(w, r, http.StatusBadRequest, "action must be clock_in or clock_out")
			return
		}
		if err != nil {
			h.logError(r, driverID, action, err)
			httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, out)
	default:
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}
	h.writeStatus(w, r, driverID)
}

func (h *Handler) writeStatus(w http.ResponseWriter, r *http.Request, driverID string) {
	report, err := h.svc.Status(r.Context(), driverID)
	if err != nil {
		h.logError(r, driverID, "status", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}
	if h.schedule == nil {
		httpjson.WriteError(w, r, http.StatusNotFound, "schedule not available")
		return
	}

	// 默认今天（按固定展示时区、服务的注入时钟），可用 ?date=YYYY-MM-DD 指定。
	day := calendarDate(h.svc.Now(), h.svc.DisplayLocation())
	if dateStr := strings.TrimSpace(r.URL.Query().Get("date")); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			httpjson.WriteError(w, r, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		day = parsed
	}

	assignments, err := h.schedule.ListForDriver(r.Context(), driverID, day)
	if err != nil {
		h.logError(r, driverID, "schedule", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":        day.Format("2006-01-02"),
		"assignments": assignments,
	})
}

type inspectionRequest struct {
	Type   string `json:"type"` // pre_trip / post_trip
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// handleInspection 在活动班次上记录车辆检查。
// post-trip 是驾驶班次收卡的前置条件，所以这条路由和 clock 同属工作流面。
func (h *Handler) handleInspection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}
	var req inspectionRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	kind := strings.TrimSpace(req.Type)
	if kind != InspectionPreTrip && kind != InspectionPostTrip {
		httpjson.WriteError(w, r, http.StatusBadRequest, "type must be pre_trip or post_trip")
		return
	}

	out, err := h.svc.RecordInspection(r.Context(), driverID, InspectionInput{
		Kind:   kind,
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		h.logError(r, driverID, "inspection", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, out)
}

// handleHOS 当前周聚合工时（合规报表）。
func (h *Handler) handleHOS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}
	report, err := h.svc.WeeklyReport(r.Context(), driverID)
	if err != nil {
		h.logError(r, driverID, "hos", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, report)
}

// driverID 解析已鉴权的司机身份；缺失时在进入任何状态机逻辑之前 401。
func (h *Handler) driverID(w http.ResponseWriter, r *http.Request) (string, bool) {
	ai, ok := commonserver.AuthFromContext(r.Context())
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		httpjson.WriteError(w, r, http.StatusUnauthorized, "missing auth")
		return "", false
	}
	return ai.Subject, true
}

func (h *Handler) logError(r *http.Request, driverID, action string, err error) {
	if h.log == nil {
		return
	}
	h.log.WithFields(map[string]interface{}{
		"driver_id":  driverID,
		"action":     action,
		"request_id": httpjson.RequestIDFrom(r.Context()),
	}).Errorf("workflow handler failed: %v", err)
}
