package category

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"go.uber.org/zap"

	types "baraholka-main/internal/types/category"
	myErr "baraholka-main/internal/types/errors"
)

type CategoryDBRepository struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

func NewCategoryDBRepository(db *sql.DB, l *zap.SugaredLogger) *CategoryDBRepository {
	return &CategoryDBRepository{
		DB:     db,
		Logger: l,
	}
}

func (cr *CategoryDBRepository) CreateCategory(form types.CreateCategory) (*Category, error) {
	if form.ParentID != nil {
		if err := cr.checkExists("SELECT 1 FROM categories WHERE id = $1", *form.ParentID); err != nil {
			return nil, err
		}
	}

	query := `
	INSERT INTO categories (name, description, parent_id, image_url)
	VALUES ($1, $2, $3, $4)
	RETURNING id, name, description, parent_id, image_url
	`

	var c Category
	var parentID sql.NullInt64
	var imageURL sql.NullString

	err := cr.DB.QueryRow(
		query,
		form.Name,
		form.Description,
		form.ParentID,
		nullString(form.ImageURL),
	).Scan(&c.ID, &c.Name, &c.Description, &parentID, &imageURL)

	if err != nil {
		cr.Logger.Errorf("Error creating category: %v", err)
		return nil, myErr.ErrDBInternal
	}

	if parentID.Valid {
		c.ParentID = &parentID.Int64
	}
	c.ImageURL = imageURL.String

	return &c, nil
}

func (cr *CategoryDBRepository) CreateField(form types.CreateCategoryField) (*CategoryField, error) {
	fieldType, err := ParseFieldType(form.FieldType)
	if err != nil {
		return nil, err
	}

	if err := cr.checkExists("SELECT 1 FROM categories WHERE id = $1", form.CategoryID); err != nil {
		return nil, err
	}

	query := `
	INSERT INTO category_fields (category_id, name, field_type, required)
	VALUES ($1, $2, $3, $4)
	RETURNING id, category_id, name, field_type, required
	`

	var f CategoryField
	err = cr.DB.QueryRow(
		query,
		form.CategoryID,
		form.Name,
		string(fieldType),
		form.Required,
	).Scan(&f.ID, &f.CategoryID, &f.Name, &f.FieldType, &f.Required)

	if err != nil {
		cr.Logger.Errorf("Error creating category field: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return &f, nil
}

func (cr *CategoryDBRepository) CreateChoice(form types.CreateFieldChoice) (*FieldChoice, error) {
	var fieldType FieldType
	err := cr.DB.QueryRow(
		"SELECT field_type FROM category_fields WHERE id = $1",
		form.FieldID,
	).Scan(&fieldType)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, myErr.ErrNotFound
		}
		cr.Logger.Errorf("Error fetching field %d: %v", form.FieldID, err)
		return nil, myErr.ErrDBInternal
	}

	// Варианты значений имеют смысл только у choice-полей
	if fieldType != FieldTypeChoice {
		return nil, myErr.ErrFieldTypeNotChoice
	}

	query := `
	INSERT INTO field_choices (field_id, name)
	VALUES ($1, $2)
	RETURNING id, field_id, name
	`

	var ch FieldChoice
	err = cr.DB.QueryRow(query, form.FieldID, form.Name).Scan(&ch.ID, &ch.FieldID, &ch.Name)
	if err != nil {
		cr.Logger.Errorf("Error creating field choice: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return &ch, nil
}

func (cr *CategoryDBRepository) ListRoot() ([]*Category, error) {
	_, ordered, err := cr.loadForest(`
	SELECT id, name, description, parent_id, image_url
	FROM categories
	ORDER BY id
	`)
	if err != nil {
		return nil, err
	}

	roots := make([]*Category, 0, len(ordered))
	for _, c := range ordered {
		if c.ParentID == nil {
			roots = append(roots, c)
		}
	}

	return roots, nil
}

func (cr *CategoryDBRepository) GetByID(id int64) (*Category, error) {
	// Поддерево категории одним индексированным запросом
	byID, _, err := cr.loadForest(`
	WITH RECURSIVE subtree AS (
		SELECT id, name, description, parent_id, image_url
		FROM categories
		WHERE id = $1
		UNION ALL
		SELECT c.id, c.name, c.description, c.parent_id, c.image_url
		FROM categories c
		JOIN subtree s ON c.parent_id = s.id
	)
	SELECT id, name, description, parent_id, image_url FROM subtree
	`, id)
	if err != nil {
		return nil, err
	}

	c, ok := byID[id]
	if !ok {
		return nil, myErr.ErrNotFound
	}

	return c, nil
}

// loadForest загружает категории по переданному запросу и навешивает на них
// поля с вариантами, объявления и связи родитель-потомок
func (cr *CategoryDBRepository) loadForest(query string, args ...interface{}) (map[int64]*Category, []*Category, error) {
	rows, err := cr.DB.Query(query, args...)
	if err != nil {
		cr.Logger.Errorf("Error loading categories: %v", err)
		return nil, nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	byID := make(map[int64]*Category)
	var ordered []*Category

	for rows.Next() {
		var c Category
		var parentID sql.NullInt64
		var imageURL sql.NullString

		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &parentID, &imageURL); err != nil {
			return nil, nil, myErr.ErrDBInternal
		}
		if parentID.Valid {
			c.ParentID = &parentID.Int64
		}
		c.ImageURL = imageURL.String

		byID[c.ID] = &c
		ordered = append(ordered, &c)
	}
	if err := rows.Err(); err != nil {
		cr.Logger.Errorf("Error iterating categories: %v", err)
		return nil, nil, myErr.ErrDBInternal
	}

	if len(ordered) == 0 {
		return byID, ordered, nil
	}

	catIDs := make(pq.Int64Array, 0, len(ordered))
	for _, c := range ordered {
		catIDs = append(catIDs, c.ID)
	}

	fieldByID, err := cr.attachFields(byID, catIDs)
	if err != nil {
		return nil, nil, err
	}

	if err := cr.attachChoices(fieldByID); err != nil {
		return nil, nil, err
	}

	if err := cr.attachAdvertisements(byID, catIDs); err != nil {
		return nil, nil, err
	}

	// Связываем подкатегории с родителями. Категория, чей родитель не попал
	// в выборку, остаётся верхним узлом результата
	for _, c := range ordered {
		if c.ParentID == nil {
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Subcategories = append(parent.Subcategories, c)
		}
	}

	return byID, ordered, nil
}

func (cr *CategoryDBRepository) attachFields(byID map[int64]*Category, catIDs pq.Int64Array) (map[int64]*CategoryField, error) {
	rows, err := cr.DB.Query(`
	SELECT id, category_id, name, field_type, required
	FROM category_fields
	WHERE category_id = ANY($1)
	ORDER BY id
	`, catIDs)
	if err != nil {
		cr.Logger.Errorf("Error loading category fields: %v", err)
		return nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	fieldByID := make(map[int64]*CategoryField)
	for rows.Next() {
		var f CategoryField
		if err := rows.Scan(&f.ID, &f.CategoryID, &f.Name, &f.FieldType, &f.Required); err != nil {
			return nil, myErr.ErrDBInternal
		}

		fieldByID[f.ID] = &f
		if c, ok := byID[f.CategoryID]; ok {
			c.Fields = append(c.Fields, &f)
		}
	}
	if err := rows.Err(); err != nil {
		cr.Logger.Errorf("Error iterating category fields: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return fieldByID, nil
}

func (cr *CategoryDBRepository) attachChoices(fieldByID map[int64]*CategoryField) error {
	if len(fieldByID) == 0 {
		return nil
	}

	fieldIDs := make(pq.Int64Array, 0, len(fieldByID))
	for id := range fieldByID {
		fieldIDs = append(fieldIDs, id)
	}

	rows, err := cr.DB.Query(`
	SELECT id, field_id, name
	FROM field_choices
	WHERE field_id = ANY($1)
	ORDER BY id
	`, fieldIDs)
	if err != nil {
		cr.Logger.Errorf("Error loading field choices: %v", err)
		return myErr.ErrDBInternal
	}
	defer rows.Close()

	for rows.Next() {
		var ch FieldChoice
		if err := rows.Scan(&ch.ID, &ch.FieldID, &ch.Name); err != nil {
			return myErr.ErrDBInternal
		}
		if f, ok := fieldByID[ch.FieldID]; ok {
			f.Choices = append(f.Choices, ch)
		}
	}
	if err := rows.Err(); err != nil {
		cr.Logger.Errorf("Error iterating field choices: %v", err)
		return myErr.ErrDBInternal
	}

	return nil
}

func (cr *CategoryDBRepository) attachAdvertisements(byID map[int64]*Category, catIDs pq.Int64Array) error {
	rows, err := cr.DB.Query(`
	SELECT id, category_id, user_id, title, description, price, created_at
	FROM advertisements
	WHERE category_id = ANY($1)
	ORDER BY id
	`, catIDs)
	if err != nil {
		cr.Logger.Errorf("Error loading advertisements for categories: %v", err)
		return myErr.ErrDBInternal
	}
	defer rows.Close()

	for rows.Next() {
		var a Advertisement
		if err := rows.Scan(&a.ID, &a.CategoryID, &a.UserID, &a.Title, &a.Description, &a.Price, &a.CreatedAt); err != nil {
			return myErr.ErrDBInternal
		}
		if c, ok := byID[a.CategoryID]; ok {
			c.Advertisements = append(c.Advertisements, a)
		}
	}
	if err := rows.Err(); err != nil {
		cr.Logger.Errorf("Error iterating advertisements: %v", err)
		return myErr.ErrDBInternal
	}

	return nil
}

func (cr *CategoryDBRepository) checkExists(query string, id int64) error {
	var one int
	err := cr.DB.QueryRow(query, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return myErr.ErrNotFound
		}
		cr.Logger.Errorf("Error checking existence: %v", err)
		return myErr.ErrDBInternal
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
