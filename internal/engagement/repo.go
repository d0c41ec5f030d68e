package engagement

import (
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"baraholka-main/internal/advertisement"
	myErr "baraholka-main/internal/types/errors"
)

type EngagementDBRepository struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

func NewEngagementDBRepository(db *sql.DB, l *zap.SugaredLogger) *EngagementDBRepository {
	return &EngagementDBRepository{
		DB:     db,
		Logger: l,
	}
}

func (er *EngagementDBRepository) AddFavorite(userID string, advertisementID int64) (*Favorite, error) {
	ad, err := er.fetchAdvertisement(advertisementID)
	if err != nil {
		return nil, err
	}

	// Уникальный индекс закрывает гонку двух одновременных добавлений:
	// вставиться может только одна строка, вторая вставка не вернёт id
	query := `
	INSERT INTO favorites (user_id, advertisement_id)
	VALUES ($1, $2)
	ON CONFLICT (user_id, advertisement_id) DO NOTHING
	RETURNING id
	`

	f := Favorite{
		UserID:          userID,
		AdvertisementID: advertisementID,
		Advertisement:   ad,
	}

	err = er.DB.QueryRow(query, userID, advertisementID).Scan(&f.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, myErr.ErrAlreadyExists
		}
		er.Logger.Errorf("Error adding favorite: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return &f, nil
}

func (er *EngagementDBRepository) ListFavorites(userID string) ([]Favorite, error) {
	query := `
	SELECT f.id, f.user_id, f.advertisement_id,
		   a.title, a.description, a.price, a.user_id, a.category_id, a.created_at
	FROM favorites f
	JOIN advertisements a ON a.id = f.advertisement_id
	WHERE f.user_id = $1
	ORDER BY f.id
	`

	rows, err := er.DB.Query(query, userID)
	if err != nil {
		er.Logger.Errorf("Error listing favorites for user %v: %v", userID, err)
		return nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	var favorites []Favorite
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, myErr.ErrDBInternal
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		er.Logger.Errorf("Error iterating favorites: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return favorites, nil
}

func (er *EngagementDBRepository) GetFavorite(userID string, favoriteID int64) (*Favorite, error) {
	query := `
	SELECT f.id, f.user_id, f.advertisement_id,
		   a.title, a.description, a.price, a.user_id, a.category_id, a.created_at
	FROM favorites f
	JOIN advertisements a ON a.id = f.advertisement_id
	WHERE f.user_id = $1 AND f.id = $2
	`

	rows, err := er.DB.Query(query, userID, favoriteID)
	if err != nil {
		er.Logger.Errorf("Error getting favorite %d: %v", favoriteID, err)
		return nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			er.Logger.Errorf("Error getting favorite %d: %v", favoriteID, err)
			return nil, myErr.ErrDBInternal
		}
		// Чужая или несуществующая закладка - для пользователя одно и то же
		return nil, myErr.ErrNotFound
	}

	f, err := scanFavorite(rows)
	if err != nil {
		return nil, myErr.ErrDBInternal
	}

	return &f, nil
}

func (er *EngagementDBRepository) RecordView(userID string, advertisementID int64) (*RecentlyViewed, error) {
	ad, err := er.fetchAdvertisement(advertisementID)
	if err != nil {
		return nil, err
	}

	// Upsert: первая строка на пару создаётся, повторный просмотр
	// только сдвигает viewed_at
	query := `
	INSERT INTO recently_viewed (user_id, advertisement_id)
	VALUES ($1, $2)
	ON CONFLICT (user_id, advertisement_id) DO UPDATE SET viewed_at = now()
	RETURNING id, viewed_at
	`

	rv := RecentlyViewed{
		UserID:          userID,
		AdvertisementID: advertisementID,
		Advertisement:   ad,
	}

	err = er.DB.QueryRow(query, userID, advertisementID).Scan(&rv.ID, &rv.ViewedAt)
	if err != nil {
		er.Logger.Errorf("Error recording view: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return &rv, nil
}

func (er *EngagementDBRepository) ListRecentlyViewed(userID string) ([]RecentlyViewed, error) {
	query := `
	SELECT rv.id, rv.user_id, rv.advertisement_id, rv.viewed_at,
		   a.title, a.description, a.price, a.user_id, a.category_id, a.created_at
	FROM recently_viewed rv
	JOIN advertisements a ON a.id = rv.advertisement_id
	WHERE rv.user_id = $1
	ORDER BY rv.viewed_at DESC
	`

	rows, err := er.DB.Query(query, userID)
	if err != nil {
		er.Logger.Errorf("Error listing recently viewed for user %v: %v", userID, err)
		return nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	var viewed []RecentlyViewed
	for rows.Next() {
		var rv RecentlyViewed
		var ad advertisement.Advertisement

		err := rows.Scan(
			&rv.ID, &rv.UserID, &rv.AdvertisementID, &rv.ViewedAt,
			&ad.Title, &ad.Description, &ad.Price, &ad.UserID, &ad.CategoryID, &ad.CreatedAt,
		)
		if err != nil {
			return nil, myErr.ErrDBInternal
		}

		ad.ID = rv.AdvertisementID
		rv.Advertisement = &ad
		viewed = append(viewed, rv)
	}
	if err := rows.Err(); err != nil {
		er.Logger.Errorf("Error iterating recently viewed: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return viewed, nil
}

func scanFavorite(rows *sql.Rows) (Favorite, error) {
	var f Favorite
	var ad advertisement.Advertisement

	err := rows.Scan(
		&f.ID, &f.UserID, &f.AdvertisementID,
		&ad.Title, &ad.Description, &ad.Price, &ad.UserID, &ad.CategoryID, &ad.CreatedAt,
	)
	if err != nil {
		return Favorite{}, err
	}

	ad.ID = f.AdvertisementID
	f.Advertisement = &ad
	return f, nil
}

func (er *EngagementDBRepository) fetchAdvertisement(id int64) (*advertisement.Advertisement, error) {
	var ad advertisement.Advertisement
	err := er.DB.QueryRow(`
	SELECT id, title, description, price, user_id, category_id, created_at
	FROM advertisements
	WHERE id = $1
	`, id).Scan(&ad.ID, &ad.Title, &ad.Description, &ad.Price, &ad.UserID, &ad.CategoryID, &ad.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, myErr.ErrNotFound
		}
		er.Logger.Errorf("Error fetching advertisement %d: %v", id, err)
		return nil, myErr.ErrDBInternal
	}

	return &ad, nil
}
