package vehicle

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/VinoFleet/VinoFleet/internal/common/httpjson"
	"github.com/VinoFleet/VinoFleet/internal/common/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handler 车队管理 HTTP 接口（admin 后台用）。
type Handler struct {
	repo *Repo
	log  logger.Logger
}

func NewHandler(db *gorm.DB, log logger.Logger) *Handler {
	return &Handler{repo: NewRepo(db), log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/fleet/vehicles", h.handleCollection)
	mux.HandleFunc("/api/fleet/vehicles/", h.handleItem)
}

type upsertRequest struct {
	ID            string `json:"id"`
	VehicleNumber string `json:"vehicleNumber"`
	Make          string `json:"make"`
	Model         string `json:"model"`
	Capacity      int    `json:"capacity"`
	IsActive      *bool  `json:"isActive"`
	Status        string `json:"status"`
}

func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.upsert(w, r)
	default:
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	activeOnly := q.Get("active") == "true"
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}
	vs, total, err := h.repo.List(r.Context(), activeOnly, (page-1)*size, size)
	if err != nil {
		h.logError(r, err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"vehicles": vs,
		"total":    total,
	})
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	number := strings.TrimSpace(req.VehicleNumber)
	if number == "" {
		httpjson.WriteError(w, r, http.StatusBadRequest, "vehicleNumber required")
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	st := strings.TrimSpace(req.Status)
	if st == "" {
		st = "available"
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	v := &Vehicle{
		ID:            id,
		VehicleNumber: number,
		Make:          strings.TrimSpace(req.Make),
		Model:         strings.TrimSpace(req.Model),
		Capacity:      req.Capacity,
		IsActive:      active,
		Status:        st,
	}
	if err := h.repo.Upsert(r.Context(), v); err != nil {
		h.logError(r, err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	// read back to get timestamps if DB sets them
	latest, err := h.repo.FindByID(r.Context(), v.ID)
	if err != nil {
		latest = v
	}
	httpjson.WriteJSON(w, http.StatusOK, latest)
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/fleet/vehicles/")
	if id == "" || strings.Contains(id, "/") {
		httpjson.WriteError(w, r, http.StatusBadRequest, "vehicle id required")
		return
	}
	v, err := h.repo.FindByID(r.Context(), id)
	if err == gorm.ErrRecordNotFound {
		httpjson.WriteError(w, r, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		h.logError(r, err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) logError(r *http.Request, err error) {
	if h.log == nil {
		return
	}
	h.log.WithField("request_id", httpjson.RequestIDFrom(r.Context())).Errorf("vehicle handler failed: %v", err)
}
