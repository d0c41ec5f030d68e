package advertisement

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"baraholka-main/internal/category"
	types "baraholka-main/internal/types/advertisement"
	myErr "baraholka-main/internal/types/errors"
)

type AdvertisementDBRepository struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

func NewAdvertisementDBRepository(db *sql.DB, l *zap.SugaredLogger) *AdvertisementDBRepository {
	return &AdvertisementDBRepository{
		DB:     db,
		Logger: l,
	}
}

func (ar *AdvertisementDBRepository) Create(userID string, form types.CreateAdvertisement) (*Advertisement, error) {
	if err := ar.checkExists("SELECT 1 FROM categories WHERE id = $1", form.CategoryID); err != nil {
		return nil, err
	}

	query := `
	INSERT INTO advertisements (title, description, price, user_id, category_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, title, description, price, user_id, category_id, created_at
	`

	var a Advertisement
	err := ar.DB.QueryRow(
		query,
		form.Title,
		form.Description,
		form.Price,
		userID,
		form.CategoryID,
	).Scan(&a.ID, &a.Title, &a.Description, &a.Price, &a.UserID, &a.CategoryID, &a.CreatedAt)

	if err != nil {
		ar.Logger.Errorf("Error creating advertisement: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return &a, nil
}

func (ar *AdvertisementDBRepository) AddImage(advertisementID int64, imageURL string) (*AdvertisementImage, error) {
	if err := ar.checkExists("SELECT 1 FROM advertisements WHERE id = $1", advertisementID); err != nil {
		return nil, err
	}

	query := `
	INSERT INTO advertisement_images (advertisement_id, image_url)
	VALUES ($1, $2)
	RETURNING id, advertisement_id, image_url
	`

	var img AdvertisementImage
	err := ar.DB.QueryRow(query, advertisementID, imageURL).Scan(&img.ID, &img.AdvertisementID, &img.ImageURL)
	if err != nil {
		ar.Logger.Errorf("Error creating advertisement image: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return &img, nil
}

func (ar *AdvertisementDBRepository) SetFieldValue(form types.CreateFieldValue) (*CategoryFieldValue, error) {
	if err := ar.checkExists("SELECT 1 FROM advertisements WHERE id = $1", form.AdvertisementID); err != nil {
		return nil, err
	}

	field, err := ar.fetchField(form.FieldID)
	if err != nil {
		return nil, err
	}

	canonical, err := field.ValidateValue(form.Value)
	if err != nil {
		return nil, err
	}

	query := `
	INSERT INTO category_field_values (advertisement_id, field_id, value)
	VALUES ($1, $2, $3)
	RETURNING id, advertisement_id, field_id, value
	`

	var v CategoryFieldValue
	err = ar.DB.QueryRow(query, form.AdvertisementID, form.FieldID, canonical).
		Scan(&v.ID, &v.AdvertisementID, &v.FieldID, &v.Value)
	if err != nil {
		ar.Logger.Errorf("Error creating field value: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return &v, nil
}

func (ar *AdvertisementDBRepository) List() ([]*Advertisement, error) {
	return ar.listWhere("", nil)
}

func (ar *AdvertisementDBRepository) GetByID(id int64) (*Advertisement, error) {
	ads, err := ar.listWhere("WHERE a.id = $1", []interface{}{id})
	if err != nil {
		return nil, err
	}
	if len(ads) == 0 {
		return nil, myErr.ErrNotFound
	}

	return ads[0], nil
}

func (ar *AdvertisementDBRepository) GetByIDs(ids []int64) ([]*Advertisement, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ads, err := ar.listWhere("WHERE a.id = ANY($1)", []interface{}{pq.Int64Array(ids)})
	if err != nil {
		return nil, err
	}

	// Возвращаем объявления в порядке переданных id: поиск отдает id
	// по релевантности, и этот порядок нельзя терять
	adByID := make(map[int64]*Advertisement, len(ads))
	for _, a := range ads {
		adByID[a.ID] = a
	}

	ordered := make([]*Advertisement, 0, len(ads))
	for _, id := range ids {
		if a, ok := adByID[id]; ok {
			ordered = append(ordered, a)
		}
	}

	return ordered, nil
}

// listWhere загружает объявления вместе с категорией (и её полями),
// картинками и значениями полей
func (ar *AdvertisementDBRepository) listWhere(where string, args []interface{}) ([]*Advertisement, error) {
	query := `
	SELECT a.id, a.title, a.description, a.price, a.user_id, a.category_id, a.created_at,
		   c.name, c.description, c.parent_id, c.image_url
	FROM advertisements a
	JOIN categories c ON c.id = a.category_id
	` + where + `
	ORDER BY a.id
	`

	rows, err := ar.DB.Query(query, args...)
	if err != nil {
		ar.Logger.Errorf("Error listing advertisements: %v", err)
		return nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	var ads []*Advertisement
	adByID := make(map[int64]*Advertisement)
	catByID := make(map[int64]*category.Category)

	for rows.Next() {
		var a Advertisement
		var catName, catDescription string
		var catParentID sql.NullInt64
		var catImageURL sql.NullString

		err := rows.Scan(
			&a.ID, &a.Title, &a.Description, &a.Price, &a.UserID, &a.CategoryID, &a.CreatedAt,
			&catName, &catDescription, &catParentID, &catImageURL,
		)
		if err != nil {
			return nil, myErr.ErrDBInternal
		}

		// Объявления одной категории разделяют один экземпляр Category
		c, ok := catByID[a.CategoryID]
		if !ok {
			c = &category.Category{
				ID:          a.CategoryID,
				Name:        catName,
				Description: catDescription,
				ImageURL:    catImageURL.String,
			}
			if catParentID.Valid {
				c.ParentID = &catParentID.Int64
			}
			catByID[a.CategoryID] = c
		}
		a.Category = c

		adByID[a.ID] = &a
		ads = append(ads, &a)
	}
	if err := rows.Err(); err != nil {
		ar.Logger.Errorf("Error iterating advertisements: %v", err)
		return nil, myErr.ErrDBInternal
	}

	if len(ads) == 0 {
		return ads, nil
	}

	adIDs := make(pq.Int64Array, 0, len(ads))
	for _, a := range ads {
		adIDs = append(adIDs, a.ID)
	}
	catIDs := make(pq.Int64Array, 0, len(catByID))
	for id := range catByID {
		catIDs = append(catIDs, id)
	}

	if err := ar.attachImages(adByID, adIDs); err != nil {
		return nil, err
	}
	if err := ar.attachFieldValues(adByID, adIDs); err != nil {
		return nil, err
	}
	if err := ar.attachCategoryFields(catByID, catIDs); err != nil {
		return nil, err
	}

	return ads, nil
}

func (ar *AdvertisementDBRepository) attachImages(adByID map[int64]*Advertisement, adIDs pq.Int64Array) error {
	rows, err := ar.DB.Query(`
	SELECT id, advertisement_id, image_url
	FROM advertisement_images
	WHERE advertisement_id = ANY($1)
	ORDER BY id
	`, adIDs)
	if err != nil {
		ar.Logger.Errorf("Error loading advertisement images: %v", err)
		return myErr.ErrDBInternal
	}
	defer rows.Close()

	for rows.Next() {
		var img AdvertisementImage
		if err := rows.Scan(&img.ID, &img.AdvertisementID, &img.ImageURL); err != nil {
			return myErr.ErrDBInternal
		}
		if a, ok := adByID[img.AdvertisementID]; ok {
			a.Images = append(a.Images, img)
		}
	}
	if err := rows.Err(); err != nil {
		ar.Logger.Errorf("Error iterating advertisement images: %v", err)
		return myErr.ErrDBInternal
	}

	return nil
}

func (ar *AdvertisementDBRepository) attachFieldValues(adByID map[int64]*Advertisement, adIDs pq.Int64Array) error {
	rows, err := ar.DB.Query(`
	SELECT id, advertisement_id, field_id, value
	FROM category_field_values
	WHERE advertisement_id = ANY($1)
	ORDER BY id
	`, adIDs)
	if err != nil {
		ar.Logger.Errorf("Error loading field values: %v", err)
		return myErr.ErrDBInternal
	}
	defer rows.Close()

	for rows.Next() {
		var v CategoryFieldValue
		if err := rows.Scan(&v.ID, &v.AdvertisementID, &v.FieldID, &v.Value); err != nil {
			return myErr.ErrDBInternal
		}
		if a, ok := adByID[v.AdvertisementID]; ok {
			a.FieldValues = append(a.FieldValues, v)
		}
	}
	if err := rows.Err(); err != nil {
		ar.Logger.Errorf("Error iterating field values: %v", err)
		return myErr.ErrDBInternal
	}

	return nil
}

func (ar *AdvertisementDBRepository) attachCategoryFields(catByID map[int64]*category.Category, catIDs pq.Int64Array) error {
	rows, err := ar.DB.Query(`
	SELECT id, category_id, name, field_type, required
	FROM category_fields
	WHERE category_id = ANY($1)
	ORDER BY id
	`, catIDs)
	if err != nil {
		ar.Logger.Errorf("Error loading category fields: %v", err)
		return myErr.ErrDBInternal
	}
	defer rows.Close()

	for rows.Next() {
		var f category.CategoryField
		if err := rows.Scan(&f.ID, &f.CategoryID, &f.Name, &f.FieldType, &f.Required); err != nil {
			return myErr.ErrDBInternal
		}
		if c, ok := catByID[f.CategoryID]; ok {
			c.Fields = append(c.Fields, &f)
		}
	}
	if err := rows.Err(); err != nil {
		ar.Logger.Errorf("Error iterating category fields: %v", err)
		return myErr.ErrDBInternal
	}

	return nil
}

// fetchField достаёт поле вместе с вариантами значений для проверки типа
func (ar *AdvertisementDBRepository) fetchField(fieldID int64) (*category.CategoryField, error) {
	var f category.CategoryField
	err := ar.DB.QueryRow(`
	SELECT id, category_id, name, field_type, required
	FROM category_fields
	WHERE id = $1
	`, fieldID).Scan(&f.ID, &f.CategoryID, &f.Name, &f.FieldType, &f.Required)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, myErr.ErrNotFound
		}
		ar.Logger.Errorf("Error fetching category field %d: %v", fieldID, err)
		return nil, myErr.ErrDBInternal
	}

	if f.FieldType != category.FieldTypeChoice {
		return &f, nil
	}

	rows, err := ar.DB.Query("SELECT id, field_id, name FROM field_choices WHERE field_id = $1 ORDER BY id", fieldID)
	if err != nil {
		ar.Logger.Errorf("Error loading choices for field %d: %v", fieldID, err)
		return nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	for rows.Next() {
		var ch category.FieldChoice
		if err := rows.Scan(&ch.ID, &ch.FieldID, &ch.Name); err != nil {
			return nil, myErr.ErrDBInternal
		}
		f.Choices = append(f.Choices, ch)
	}
	if err := rows.Err(); err != nil {
		ar.Logger.Errorf("Error iterating choices: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return &f, nil
}

func (ar *AdvertisementDBRepository) checkExists(query string, id int64) error {
	var one int
	err := ar.DB.QueryRow(query, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return myErr.ErrNotFound
		}
		ar.Logger.Errorf("Error checking existence: %v", err)
		return myErr.ErrDBInternal
	}
	return nil
}
