package category

// CreateCategory - форма для создания категории.
// ImageURL проставляется хендлером после сохранения файла в медиа-хранилище
type CreateCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// CreateCategoryField - форма для создания поля категории
type CreateCategoryField struct {
	Name       string `json:"name"`
	FieldType  string `json:"field_type"`
	Required   bool   `json:"required"`
	CategoryID int64  `json:"category_id"`
}

// CreateFieldChoice - форма для создания варианта значения choice-поля
type CreateFieldChoice struct {
	Name    string `json:"name"`
	FieldID int64  `json:"field_id"`
}
