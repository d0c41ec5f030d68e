package advertisement

import (
	"time"

	"baraholka-main/internal/category"
	types "baraholka-main/internal/types/advertisement"
)

// Advertisement - объявление. Category, Images и FieldValues заполняются
// при чтении, значения полей проверяются против схемы категории при записи
type Advertisement struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Price       float64              `json:"price"`
	UserID      string               `json:"user_id"`
	CategoryID  int64                `json:"category_id"`
	CreatedAt   time.Time            `json:"created_at"`
	Category    *category.Category   `json:"category,omitempty"`
	Images      []AdvertisementImage `json:"images"`
	FieldValues []CategoryFieldValue `json:"field_values"`
}

type AdvertisementImage struct {
	ID              int64  `json:"id"`
	AdvertisementID int64  `json:"advertisement_id"`
	ImageURL        string `json:"image_url"`
}

// CategoryFieldValue - ответ объявления на одно поле своей категории
type CategoryFieldValue struct {
	ID              int64  `json:"id"`
	AdvertisementID int64  `json:"advertisement_id"`
	FieldID         int64  `json:"field_id"`
	Value           string `json:"value"`
}

//go:generate mockgen -source=advertisement.go -destination=../mocks/mock_advertisement_repo.go -package=mocks
type AdvertisementRepo interface {
	Create(userID string, form types.CreateAdvertisement) (*Advertisement, error)
	AddImage(advertisementID int64, imageURL string) (*AdvertisementImage, error)
	// SetFieldValue проверяет значение против типа поля и добавляет строку значения
	SetFieldValue(form types.CreateFieldValue) (*CategoryFieldValue, error)
	// List возвращает все объявления с категорией (и её полями), картинками и значениями
	List() ([]*Advertisement, error)
	GetByID(id int64) (*Advertisement, error)
	// GetByIDs возвращает объявления по списку id, например для выдачи поиска
	GetByIDs(ids []int64) ([]*Advertisement, error)
}
