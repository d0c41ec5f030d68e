package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"baraholka-main/internal/contextutil"
	"baraholka-main/internal/engagement"
	"baraholka-main/internal/kafka"
	myErr "baraholka-main/internal/types/errors"
)

type EngagementHandler struct {
	Logger         *zap.SugaredLogger
	EngagementRepo engagement.EngagementRepo
	EventProducer  kafka.EventProducer
}

func NewEngagementHandler(
	l *zap.SugaredLogger,
	er engagement.EngagementRepo,
	producer kafka.EventProducer,
) *EngagementHandler {
	return &EngagementHandler{
		Logger:         l,
		EngagementRepo: er,
		EventProducer:  producer,
	}
}

type advertisementPayload struct {
	AdvertisementID int64 `json:"advertisement_id"`
}

// AddFavorite handles POST /advertisement/favorite/add
func (h *EngagementHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	var payload advertisementPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	favorite, err := h.EngagementRepo.AddFavorite(userID, payload.AdvertisementID)
	if err != nil {
		switch {
		case errors.Is(err, myErr.ErrNotFound):
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
		case errors.Is(err, myErr.ErrAlreadyExists):
			myErr.SendErrorTo(w, err, http.StatusNotAcceptable, h.Logger)
		default:
			myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		}
		return
	}

	h.sendEvent(r.Context(), kafka.Event{
		UserID:     userID,
		Type:       kafka.EventTypeFavorite,
		Categories: []int64{favorite.Advertisement.CategoryID},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(favorite); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("advertisement %d added to favorites by user %s", payload.AdvertisementID, userID)
}

// ListFavorites handles GET /advertisements/favorite
func (h *EngagementHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	favorites, err := h.EngagementRepo.ListFavorites(userID)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(favorites); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("fetched %d favorites for user %s", len(favorites), userID)
}

// GetFavorite handles GET /advertisements/favorite/{id}
func (h *EngagementHandler) GetFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	favorite, err := h.EngagementRepo.GetFavorite(userID, id)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(favorite); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("fetched favorite %d for user %s", id, userID)
}

// RecordView handles POST /advertisement/recently_viewed/add
func (h *EngagementHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	var payload advertisementPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	viewed, err := h.EngagementRepo.RecordView(userID, payload.AdvertisementID)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.sendEvent(r.Context(), kafka.Event{
		UserID:     userID,
		Type:       kafka.EventTypeView,
		Categories: []int64{viewed.Advertisement.CategoryID},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(viewed); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("view of advertisement %d recorded for user %s", payload.AdvertisementID, userID)
}

// ListRecentlyViewed handles GET /advertisements/recently_viewed
func (h *EngagementHandler) ListRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	viewed, err := h.EngagementRepo.ListRecentlyViewed(userID)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(viewed); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("fetched %d recently viewed for user %s", len(viewed), userID)
}

func (h *EngagementHandler) sendEvent(ctx context.Context, event kafka.Event) {
	if h.EventProducer == nil {
		return
	}
	if err := h.EventProducer.SendEvent(ctx, event); err != nil {
		h.Logger.Warnf("failed to send %s event: %v", event.Type, err)
	}
}
