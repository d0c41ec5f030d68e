package category

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"baraholka-main/internal/category"
	"baraholka-main/internal/media"
	typesCat "baraholka-main/internal/types/category"
	myErr "baraholka-main/internal/types/errors"
)

const maxImageMemory = 10 << 20

type CategoryHandler struct {
	Logger       *zap.SugaredLogger
	CategoryRepo category.CategoryRepo
	MediaStorage *media.Storage
}

func NewCategoryHandler(l *zap.SugaredLogger, cr category.CategoryRepo, ms *media.Storage) *CategoryHandler {
	return &CategoryHandler{
		Logger:       l,
		CategoryRepo: cr,
		MediaStorage: ms,
	}
}

// Create handles POST /category/create
//
// Принимает multipart-форму: name, description, parent_id (опционально),
// image (опционально, файл).
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		myErr.SendErrorTo(w, errors.New("invalid multipart form"), http.StatusBadRequest, h.Logger)
		return
	}

	input := typesCat.CreateCategory{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	if raw := r.FormValue("parent_id"); raw != "" {
		parentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
			return
		}
		input.ParentID = &parentID
	}

	if file, header, err := r.FormFile("image"); err == nil {
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
		input.ImageURL = imageURL
	}

	cat, err := h.CategoryRepo.CreateCategory(input)
	if err != nil {
		if errors.Is(err, myErr.ErrNotFound) {
			// родительская категория не существует
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
			return
		}
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(cat); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("category created: %d", cat.ID)
}

// CreateField handles POST /category/field/create
func (h *CategoryHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	var input typesCat.CreateCategoryField
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	field, err := h.CategoryRepo.CreateField(input)
	if err != nil {
		switch {
		case errors.Is(err, myErr.ErrNotFound):
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
		case errors.Is(err, myErr.ErrUnknownFieldType):
			myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
		default:
			myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(field); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("category field created: %d", field.ID)
}

// CreateChoice handles POST /category/field/choice/create
func (h *CategoryHandler) CreateChoice(w http.ResponseWriter, r *http.Request) {
	var input typesCat.CreateFieldChoice
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	choice, err := h.CategoryRepo.CreateChoice(input)
	if err != nil {
		switch {
		case errors.Is(err, myErr.ErrNotFound):
			myErr.SendErrorTo(w, err, http.StatusNotFound, h.Logger)
		case errors.Is(err, myErr.ErrFieldTypeNotChoice):
			myErr.SendErrorTo(w, err, http.StatusNotAcceptable, h.Logger)
		default:
			myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(choice); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("field choice created: %d", choice.ID)
}

// ListRoot handles GET /category
func (h *CategoryHandler) ListRoot(w http.ResponseWriter, r *http.Request) {
	categories, err := h.CategoryRepo.ListRoot()
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(categories); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("fetched %d root categories", len(categories))
}

// GetByID handles GET /category/{id}
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		myErr.SendErrorTo(w, myErr.ErrBadID, http.StatusBadRequest, h.Logger)
		return
	}

	cat, err := h.CategoryRepo.GetByID(id)
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
	if err := json.NewEncoder(w).Encode(cat); err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	h.Logger.Infof("fetched category by id: %d", id)
}
