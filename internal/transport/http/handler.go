package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"benefits-points-service/internal/app"
	"benefits-points-service/internal/domain"
	"benefits-points-service/internal/middleware"
	"github.com/gorilla/mux"
)

// Handler exposes the REST surface: auth, profile, missions, chests and
// the leaderboard.
type Handler struct {
	auth        *app.AuthService
	profile     *app.ProfileService
	ledger      *app.LedgerService
	chests      *app.ChestService
	leaderboard *app.LeaderboardService
	catalog     app.MissionCatalog
}

func NewHandler(
	auth *app.AuthService,
	profile *app.ProfileService,
	ledger *app.LedgerService,
	chests *app.ChestService,
	leaderboard *app.LeaderboardService,
	catalog app.MissionCatalog,
) *Handler {
	return &Handler{
		auth:        auth,
		profile:     profile,
		ledger:      ledger,
		chests:      chests,
		leaderboard: leaderboard,
		catalog:     catalog,
	}
}

// Register mounts the public and protected routes on the router.
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/api/auth/register", h.handleRegister).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.handleLogin).Methods(http.MethodPost)

	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.Auth(h.auth.VerifyToken))
	protected.HandleFunc("/profile", h.handleGetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", h.handleUpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/missions/{id}", h.handleGetMission).Methods(http.MethodGet)
	protected.HandleFunc("/missions/{id}/complete", h.handleCompleteMission).Methods(http.MethodPost)
	protected.HandleFunc("/chests/{id}/open", h.handleOpenChest).Methods(http.MethodPost)
	protected.HandleFunc("/leaderboard", h.handleLeaderboard).Methods(http.MethodGet)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	record, err := h.auth.Register(r.Context(), app.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  domain.UserRecord `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, record, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: record})
}

type profileResponse struct {
	domain.UserRecord
	Medal string `json:"medal"`
	Level string `json:"level"`
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	record, err := h.profile.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		UserRecord: record,
		Medal:      domain.MedalForPoints(record.Points),
		Level:      domain.LevelForPoints(record.Points),
	})
}

type updateProfileResponse struct {
	profileResponse
	ProfileMissionAwarded bool `json:"profileMissionAwarded"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update app.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, awarded, err := h.profile.Update(r.Context(), middleware.UserID(r.Context()), update)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updateProfileResponse{
		profileResponse: profileResponse{
			UserRecord: record,
			Medal:      domain.MedalForPoints(record.Points),
			Level:      domain.LevelForPoints(record.Points),
		},
		ProfileMissionAwarded: awarded,
	})
}

type missionResponse struct {
	domain.Mission
	Completed bool `json:"completed"`
}

func (h *Handler) handleGetMission(w http.ResponseWriter, r *http.Request) {
	missionID := mux.Vars(r)["id"]
	mission, err := h.catalog.GetMission(r.Context(), missionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	record, err := h.profile.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, missionResponse{
		Mission:   mission,
		Completed: record.HasMission(missionID),
	})
}

type completeMissionRequest struct {
	CorrectCount     float64 `json:"correctCount"`
	TimeSpentSeconds float64 `json:"timeSpentSeconds"`
}

// handleCompleteMission dispatches on the catalog mission kind, so the
// same endpoint serves fixed, quiz and word-search completions.
func (h *Handler) handleCompleteMission(w http.ResponseWriter, r *http.Request) {
	missionID := mux.Vars(r)["id"]
	userID := middleware.UserID(r.Context())

	mission, err := h.catalog.GetMission(r.Context(), missionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req completeMissionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var award domain.MissionAward
	switch mission.Kind {
	case domain.MissionFixed:
		award, err = h.ledger.CompleteFixedMission(r.Context(), userID, missionID)
	case domain.MissionQuiz:
		award, err = h.ledger.CompleteQuizMission(r.Context(), userID, missionID, req.CorrectCount, req.TimeSpentSeconds)
	case domain.MissionWordSearch:
		award, err = h.ledger.CompleteWordSearchMission(r.Context(), userID, missionID, req.TimeSpentSeconds)
	default:
		writeError(w, http.StatusNotFound, "unknown mission kind")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, award)
}

func (h *Handler) handleOpenChest(w http.ResponseWriter, r *http.Request) {
	chestID := mux.Vars(r)["id"]
	award, err := h.chests.OpenCatalogChest(r.Context(), middleware.UserID(r.Context()), chestID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, award)
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	skip := queryInt(r, "skip", 0)

	view, err := h.leaderboard.GetLeaderboard(r.Context(), middleware.UserID(r.Context()), limit, skip)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps sentinel outcomes to HTTP statuses. Terminal
// outcomes like an already-completed mission are conflicts, not server
// failures.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrMissionNotFound),
		errors.Is(err, domain.ErrChestNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrMissionCompleted),
		errors.Is(err, domain.ErrChestOpened),
		errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrChestLocked):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
