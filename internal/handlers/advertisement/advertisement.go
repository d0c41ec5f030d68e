package advertisement

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"baraholka-main/internal/advertisement"
	"baraholka-main/internal/contextutil"
	"baraholka-main/internal/kafka"
	"baraholka-main/internal/media"
	typesAdv "baraholka-main/internal/types/advertisement"
	esDoc "baraholka-main/internal/types/elastic"
	myErr "baraholka-main/internal/types/errors"
)

// maxImageMemory ограничивает буферизацию multipart-формы в памяти.
const maxImageMemory = 10 << 20 // 10 MiB

// Searcher - полнотекстовый поиск объявлений
type Searcher interface {
	SearchByTitle(ctx context.Context, query string) ([]esDoc.ElasticDoc, error)
}

type AdvertisementHandler struct {
	Logger            *zap.SugaredLogger
	AdvertisementRepo advertisement.AdvertisementRepo
	MediaStorage      *media.Storage
	Searcher          Searcher
	EventProducer     kafka.EventProducer
}

func NewAdvertisementHandler(
	l *zap.SugaredLogger,
	ar advertisement.AdvertisementRepo,
	ms *media.Storage,
	searcher Searcher,
	producer kafka.EventProducer,
) *AdvertisementHandler {
	return &AdvertisementHandler{
		Logger:            l,
		AdvertisementRepo: ar,
		MediaStorage:      ms,
		Searcher:          searcher,
		EventProducer:     producer,
	}
}

// Create handles POST /advertisement/create
func (h *AdvertisementHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutil.GetUserIDFromContext(r.Context())
	if !ok {
		myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, h.Logger)
		return
	}

	var input typesAdv.CreateAdvertisement
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	adv, err := h.AdvertisementRepo.Create(userID, input)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			// категория не существует
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(adv); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("advertisement created: %d by user %s", adv.ID, userID)
}

// UploadImage handles POST /advertisement/image/create
// Принимает multipart-форму с полем advertisement_id и файлом image
func (h *AdvertisementHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		myErr.SendErrorTo(w, errors.New("invalid multipart form"), http.StatusBadRequest, h.Logger)
		return
	}

	advertisementID, err := strconv.ParseInt(r.FormValue("advertisement_id"), 10, 64)
	if err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		myErr.SendErrorTo(w, errors.New("missing image file"), http.StatusBadRequest, h.Logger)
		return
	}
	defer file.Close()

	imageURL, err := h.MediaStorage.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, myErr.ErrUnsupportedMediaType) {
			myErr.SendErrorTo(w, err, http.StatusUnsupportedMediaType, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	image, err := h.AdvertisementRepo.AddImage(advertisementID, imageURL)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(image); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("image %d added to advertisement %d", image.ID, advertisementID)
}

// SetFieldValue handles POST /advertisement/category/field/value/create
func (h *AdvertisementHandler) SetFieldValue(w http.ResponseWriter, r *http.Request) {
	var input typesAdv.CreateFieldValue
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	value, err := h.AdvertisementRepo.SetFieldValue(input)
	if err != nil {
		switch {
		case errors.Is(err, myErr.ErrNotFound):
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
		case errors.Is(err, myErr.ErrInvalidFieldValue), errors.Is(err, myErr.ErrUnknownFieldType):
			myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
		default:
			myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("field value %d set for advertisement %d", value.ID, input.AdvertisementID)
}

// List handles GET /advertisement
func (h *AdvertisementHandler) List(w http.ResponseWriter, r *http.Request) {
	advs, err := h.AdvertisementRepo.List()
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(advs); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("fetched %d advertisements", len(advs))
}

// GetByID handles GET /advertisement/{id}
func (h *AdvertisementHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	adv, err := h.AdvertisementRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	// Просмотр авторизованным пользователем уходит в аналитику
	if userID, ok := contextutil.GetUserIDFromContext(r.Context()); ok {
		h.sendEvent(r.Context(), kafka.Event{
			UserID:     userID,
			Type:       kafka.EventTypeView,
			Categories: []int64{adv.CategoryID},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(adv); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("fetched advertisement by id: %d", id)
}

// Search handles GET /advertisements/search?q={query}
func (h *AdvertisementHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		myErr.SendErrorTo(w, errors.New("missing query parameter"), http.StatusBadRequest, h.Logger)
		return
	}

	docs, err := h.Searcher.SearchByTitle(r.Context(), q)
	if err != nil {
		myErr.SendErrorTo(w, myErr.ErrSearch, http.StatusInternalServerError, h.Logger)
		return
	}

	ids := make([]int64, 0, len(docs))
	for _, doc := range docs {
		id, err := strconv.ParseInt(doc.ID, 10, 64)
		if err != nil {
			h.Logger.Warnf("skipping non-numeric search hit id %q", doc.ID)
			continue
		}
		ids = append(ids, id)
	}

	advs, err := h.AdvertisementRepo.GetByIDs(ids)
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	if userID, ok := contextutil.GetUserIDFromContext(r.Context()); ok && len(docs) > 0 {
		categories := make([]int64, 0, len(docs))
		for _, doc := range docs {
			categories = append(categories, doc.Category)
		}
		h.sendEvent(r.Context(), kafka.Event{
			UserID:     userID,
			Type:       kafka.EventTypeSearch,
			Categories: categories,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(advs); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("searched advertisements with query: %s", q)
}

// sendEvent шлет событие в Kafka, не ломая основной ответ при недоступном брокере
func (h *AdvertisementHandler) sendEvent(ctx context.Context, event kafka.Event) {
	if h.EventProducer == nil {
		return
	}
	if err := h.EventProducer.SendEvent(ctx, event); err != nil {
		h.Logger.Warnf("failed to send %s event: %v", event.Type, err)
	}
}
