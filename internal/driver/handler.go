package driver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/VinoFleet/VinoFleet/internal/common/auth"
	"github.com/VinoFleet/VinoFleet/internal/common/config"
	"github.com/VinoFleet/VinoFleet/internal/common/httpjson"
	"github.com/VinoFleet/VinoFleet/internal/common/logger"
	commonserver "github.com/VinoFleet/VinoFleet/internal/common/server"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handler 司机注册/登录/个人信息 HTTP 接口。
type Handler struct {
	repo    *Repo
	authCfg config.AuthConfig
	log     logger.Logger
}

func NewHandler(db *gorm.DB, authCfg config.AuthConfig, log logger.Logger) *Handler {
	return &Handler{
		repo:    NewRepo(db),
		authCfg: authCfg,
		log:     log,
	}
}

// Register 挂载路由。
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/profile", h.handleProfile)
	mux.HandleFunc("/api/auth/drivers", h.handleList)
}

type registerRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	LicenseNumber string `json:"licenseNumber"`
}

type driverResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	LicenseNumber string `json:"licenseNumber"`
	Roles         []string `json:"roles"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		httpjson.WriteError(w, r, http.StatusBadRequest, "username/password required")
		return
	}

	// check existence
	if _, err := h.repo.FindByUsername(r.Context(), username); err == nil {
		httpjson.WriteError(w, r, http.StatusConflict, "username already exists")
		return
	} else if err != nil && err != gorm.ErrRecordNotFound {
		h.logError(r, "register", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		h.logError(r, "register", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	hash, err := HashPassword(req.Password, salt)
	if err != nil {
		h.logError(r, "register", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	d := &Driver{
		ID:            uuid.NewString(),
		Username:      username,
		PasswordHash:  hash,
		PasswordSalt:  salt,
		FullName:      strings.TrimSpace(req.FullName),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
		Roles:         RolesJoin([]string{"driver"}),
	}
	if err := h.repo.Create(r.Context(), d); err != nil {
		h.logError(r, "register", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.WriteJSON(w, http.StatusCreated, toResponse(d))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string          `json:"accessToken"`
	ExpiresAt   int64           `json:"expiresAt"`
	Driver      *driverResponse `json:"driver"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		httpjson.WriteError(w, r, http.StatusBadRequest, "username/password required")
		return
	}

	d, err := h.repo.FindByUsername(r.Context(), username)
	if err == gorm.ErrRecordNotFound {
		httpjson.WriteError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.logError(r, "login", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if !VerifyPassword(req.Password, d.PasswordSalt, d.PasswordHash) {
		httpjson.WriteError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, exp, err := auth.GenerateAccessToken(h.authCfg, d.ID, d.RolesSlice(), 24*time.Hour)
	if err != nil {
		h.logError(r, "login", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		ExpiresAt:   exp.Unix(),
		Driver:      toResponse(d),
	})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ai, ok := commonserver.AuthFromContext(r.Context())
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		httpjson.WriteError(w, r, http.StatusUnauthorized, "missing auth")
		return
	}
	d, err := h.repo.FindByID(r.Context(), ai.Subject)
	if err == gorm.ErrRecordNotFound {
		httpjson.WriteError(w, r, http.StatusNotFound, "driver not found")
		return
	}
	if err != nil {
		h.logError(r, "profile", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, toResponse(d))
}

// handleList 司机花名册（排班后台指派司机用；RBAC 配置限 admin）。
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpjson.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}

	drivers, total, err := h.repo.List(r.Context(), (page-1)*size, size)
	if err != nil {
		h.logError(r, "list", err)
		httpjson.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]*driverResponse, 0, len(drivers))
	for i := range drivers {
		out = append(out, toResponse(&drivers[i]))
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"drivers": out,
		"total":   total,
	})
}

func (h *Handler) logError(r *http.Request, action string, err error) {
	if h.log == nil {
		return
	}
	h.log.WithFields(map[string]interface{}{
		"action":     action,
		"request_id": httpjson.RequestIDFrom(r.Context()),
	}).Errorf("driver handler failed: %v", err)
}

func toResponse(d *Driver) *driverResponse {
	if d == nil {
		return nil
	}
	return &driverResponse{
		ID:            d.ID,
		Username:      d.Username,
		FullName:      d.FullName,
		Phone:         d.Phone,
		Email:         d.Email,
		LicenseNumber: d.LicenseNumber,
		Roles:         d.RolesSlice(),
	}
}
