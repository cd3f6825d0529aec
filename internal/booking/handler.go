package booking

import (
	"net/http"
	"strings"
	"time"

	"github.com/VinoFleet/VinoFleet/internal/common/httpjson"
	"github.com/VinoFleet/VinoFleet/internal/common/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handler 预订日历 HTTP 接口（admin 后台用）。
// 日视图带冲突标记：重复指派的司机/车辆在 UI 上高亮。
type Handler struct {
	repo *Repo
	log  logger.Logger
}

func NewHandler(db *gorm.DB, log logger.Logger) *Handler {
	return &Handler{repo: NewRepo(db), log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/fleet/bookings", h.handleCollection)
	mux.HandleFunc("/api/fleet/bookings/", h.handleItem)
}

func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listDay(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) listDay(w http.ResponseWriter, r *http.Request) {
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		httpjson.WriteError(w, r, http.StatusBadRequest, "date query param required (YYYY-MM-DD)")
		return
	}
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		httpjson.WriteError(w, r, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	bookings, err := h.repo.ListForDay(r.Context(), day)
	if err != nil {
		h.logError(r, err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"bookings":    bookings,
		"conflictIds": DetectConflicts(bookings),
	})
}

type createRequest struct {
	Date         string `json:"date"`      // YYYY-MM-DD
	StartTime    string `json:"startTime"` // RFC3339
	EndTime      string `json:"endTime"`   // RFC3339
	CustomerName string `json:"customerName"`
	PartySize    int    `json:"partySize"`
	PickupPoint  string `json:"pickupPoint"`
	DriverID     string `json:"driverId"`
	VehicleID    string `json:"vehicleId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), time.UTC)
	if err != nil {
		httpjson.WriteError(w, r, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		httpjson.WriteError(w, r, http.StatusBadRequest, "invalid startTime, want RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		httpjson.WriteError(w, r, http.StatusBadRequest, "invalid endTime, want RFC3339")
		return
	}
	if !start.Before(end) {
		httpjson.WriteError(w, r, http.StatusBadRequest, "startTime must be before endTime")
		return
	}
	party := req.PartySize
	if party <= 0 {
		party = 1
	}

	b := &Booking{
		ID:           uuid.NewString(),
		Date:         day,
		StartTime:    start.UTC(),
		EndTime:      end.UTC(),
		CustomerName: strings.TrimSpace(req.CustomerName),
		PartySize:    party,
		PickupPoint:  strings.TrimSpace(req.PickupPoint),
		DriverID:     strings.TrimSpace(req.DriverID),
		VehicleID:    strings.TrimSpace(req.VehicleID),
		Status:       StatusConfirmed,
	}
	if err := h.repo.Create(r.Context(), b); err != nil {
		h.logError(r, err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, b)
}

type updateRequest struct {
	DriverID  *string `json:"driverId"`  // 指派/改派司机，空串 = 取消指派
	VehicleID *string `json:"vehicleId"` // 指派/改派车辆
	Status    *string `json:"status"`    // pending / confirmed / cancelled
}

// handleItem 单条预订：查询与改派/取消。
// 改派后的冲突由日视图的 conflictIds 暴露，这里不做阻塞校验。
func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/fleet/bookings/")
	if id == "" || strings.Contains(id, "/") {
		httpjson.WriteError(w, r, http.StatusBadRequest, "booking id required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		b, err := h.repo.GetByID(r.Context(), id)
		if err == gorm.ErrRecordNotFound {
			httpjson.WriteError(w, r, http.StatusNotFound, "booking not found")
			return
		}
		if err != nil {
			h.logError(r, err)
			httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, b)
	case http.MethodPatch:
		h.update(w, r, id)
	default:
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status != nil {
		switch strings.TrimSpace(*req.Status) {
		case StatusPending, StatusConfirmed, StatusCancelled:
		default:
			httpjson.WriteError(w, r, http.StatusBadRequest, "status must be pending, confirmed or cancelled")
			return
		}
	}

	b, err := h.repo.GetByID(r.Context(), id)
	if err == gorm.ErrRecordNotFound {
		httpjson.WriteError(w, r, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		h.logError(r, err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	if req.DriverID != nil {
		b.DriverID = strings.TrimSpace(*req.DriverID)
	}
	if req.VehicleID != nil {
		b.VehicleID = strings.TrimSpace(*req.VehicleID)
	}
	if req.Status != nil {
		b.Status = strings.TrimSpace(*req.Status)
	}

	if err := h.repo.Update(r.Context(), b); err != nil {
		h.logError(r, err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) logError(r *http.Request, err error) {
	if h.log == nil {
		return
	}
	h.log.WithField("request_id", httpjson.RequestIDFrom(r.Context())).Errorf("booking handler failed: %v", err)
}
