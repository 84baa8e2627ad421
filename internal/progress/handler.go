package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/models"
	"github.com/certprep/backend/internal/titles"
	"github.com/gorilla/mux"
)

// Awarder evaluates achievements after a successful save.
type Awarder interface {
	AwardForSave(ctx context.Context, store *Store, rec models.SavedTest) ([]string, error)
}

type Handler struct {
	stores  func(userID int64) *Store
	awarder Awarder
}

// NewHandler builds a handler. stores binds a request's user to a Store;
// awarder may be nil.
func NewHandler(stores func(userID int64) *Store, awarder Awarder) *Handler {
	return &Handler{stores: stores, awarder: awarder}
}

// RegisterRoutes registers saved test endpoints on the protected subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/saved-tests", h.List).Methods("GET")
	protected.HandleFunc("/saved-tests", h.Save).Methods("POST")
	protected.HandleFunc("/saved-tests", h.ClearAll).Methods("DELETE")
	protected.HandleFunc("/saved-tests/bulk-delete", h.BulkDelete).Methods("POST")
	protected.HandleFunc("/saved-tests/{id}", h.Get).Methods("GET")
	protected.HandleFunc("/saved-tests/{id}", h.Delete).Methods("DELETE")
	protected.HandleFunc("/saved-tests/{id}/original-title", h.OriginalTitle).Methods("GET")
}

func getUserID(r *http.Request) (int64, bool) {
	return config.UserIDFromContext(r.Context())
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*Store, bool) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return nil, false
	}
	return h.stores(userID), true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	recs, err := store.List(r.Context())
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Error("List saved tests failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load saved tests"})
		return
	}

	SortByModified(recs)
	summaries := make([]models.SavedTestSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, Summarize(rec))
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	rec, err := store.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Saved test not found"})
		return
	}
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Error("Get saved test failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load saved test"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var rec models.SavedTest
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	opts := SaveOptions{Overwrite: r.URL.Query().Get("overwrite") == "true"}
	saved, err := store.Save(r.Context(), rec, opts)
	if err != nil {
		h.writeSaveError(w, r, err)
		return
	}

	unlocked := []string{}
	if h.awarder != nil {
		ids, err := h.awarder.AwardForSave(r.Context(), store, *saved)
		if err != nil {
			// The save itself succeeded; badges are retried on the next save.
			config.WithContext(r.Context()).WithError(err).Warn("Achievement evaluation failed")
		} else if ids != nil {
			unlocked = ids
		}
	}

	writeJSON(w, http.StatusOK, models.SaveTestResponse{
		SavedTest:            saved,
		PercentComplete:      CalculateProgress(saved.Progress),
		AchievementsUnlocked: unlocked,
	})
}

func (h *Handler) writeSaveError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *TitleConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, models.TitleConflictResponse{
			Error:      "A saved test with this title already exists. Resend with overwrite=true to replace it.",
			ExistingID: conflict.ExistingID,
		})
	case errors.Is(err, ErrTitleRequired):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "title is required"})
	case errors.Is(err, ErrQuotaExceeded):
		config.WithContext(r.Context()).WithError(err).Warn("Save rejected by storage quota")
		writeJSON(w, http.StatusInsufficientStorage, models.ErrorResponse{Error: "Storage is full. Delete some saved tests and try again."})
	case errors.Is(err, ErrCorruptCollection):
		config.WithContext(r.Context()).WithError(err).Error("Save refused, stored collection is corrupt")
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Saved tests could not be read. Clear them before saving again."})
	default:
		config.WithContext(r.Context()).WithError(err).Error("Save failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save progress. Please try again."})
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	if err := store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		config.WithContext(r.Context()).WithError(err).Error("Delete saved test failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete saved test"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req models.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "ids is required"})
		return
	}

	if err := store.DeleteMany(r.Context(), req.IDs); err != nil {
		config.WithContext(r.Context()).WithError(err).Error("Bulk delete failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete saved tests"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	if err := store.ClearAll(r.Context()); err != nil {
		config.WithContext(r.Context()).WithError(err).Error("Clear saved tests failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to clear saved tests"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) OriginalTitle(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	rec, err := store.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Saved test not found"})
		return
	}
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Error("Get saved test failed")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load saved test"})
		return
	}

	inf := titles.Infer(*rec)
	writeJSON(w, http.StatusOK, models.OriginalTitleResponse{Title: inf.Title, Source: string(inf.Source)})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
