package engagement

import (
	"time"

	"baraholka-main/internal/advertisement"
)

// Favorite - закладка пользователя на объявление.
// Пара (user_id, advertisement_id) уникальна на уровне схемы
type Favorite struct {
	ID              int64                        `json:"id"`
	UserID          string                       `json:"user_id"`
	AdvertisementID int64                        `json:"advertisement_id"`
	Advertisement   *advertisement.Advertisement `json:"advertisement,omitempty"`
}

// RecentlyViewed - отметка о просмотре объявления. На пару (user_id,
// advertisement_id) хранится одна строка, повторный просмотр обновляет ViewedAt
type RecentlyViewed struct {
	ID              int64                        `json:"id"`
	UserID          string                       `json:"user_id"`
	AdvertisementID int64                        `json:"advertisement_id"`
	ViewedAt        time.Time                    `json:"viewed_at"`
	Advertisement   *advertisement.Advertisement `json:"advertisement,omitempty"`
}

//go:generate mockgen -source=engagement.go -destination=../mocks/mock_engagement_repo.go -package=mocks
type EngagementRepo interface {
	// AddFavorite добавляет объявление в избранное, повторное добавление
	// возвращает ErrAlreadyExists
	AddFavorite(userID string, advertisementID int64) (*Favorite, error)
	// ListFavorites и GetFavorite всегда фильтруют по владельцу:
	// чужое избранное не видно даже по точному id
	ListFavorites(userID string) ([]Favorite, error)
	GetFavorite(userID string, favoriteID int64) (*Favorite, error)
	// RecordView создает отметку о просмотре или обновляет время существующей
	RecordView(userID string, advertisementID int64) (*RecentlyViewed, error)
	ListRecentlyViewed(userID string) ([]RecentlyViewed, error)
}
