package achievements

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/certprep/backend/internal/attempt"
	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers achievement and created test endpoints on the
// protected subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/achievements", h.GetAchievements).Methods("GET")
	protected.HandleFunc("/created-tests", h.ListCreatedTests).Methods("GET")
	protected.HandleFunc("/created-tests", h.CreateTest).Methods("POST")
}

func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := config.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.Status(r.Context(), userID)
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Error("Get achievements failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get achievements"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListCreatedTests(w http.ResponseWriter, r *http.Request) {
	userID, ok := config.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	tests, err := h.service.CreatedTests(r.Context(), userID)
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Error("List created tests failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get created tests"})
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

func (h *Handler) CreateTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := config.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.CreateTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.AddCreatedTest(r.Context(), userID, req)
	if errors.Is(err, ErrCreatedTitleRequired) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "title is required"})
		return
	}
	var verr *attempt.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: verr.Error()})
		return
	}
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Error("Create test failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save created test"})
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
