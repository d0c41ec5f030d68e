package category

import (
	"strconv"
	"strings"
	"time"

	types "baraholka-main/internal/types/category"
	myErr "baraholka-main/internal/types/errors"
)

// FieldType - тип динамического поля категории
type FieldType string

const (
	FieldTypeChoice  FieldType = "choice"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeInteger FieldType = "integer"
)

// ParseFieldType проверяет, что строка - один из поддерживаемых типов поля
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(strings.ToLower(strings.TrimSpace(s))) {
	case FieldTypeChoice:
		return FieldTypeChoice, nil
	case FieldTypeBoolean:
		return FieldTypeBoolean, nil
	case FieldTypeInteger:
		return FieldTypeInteger, nil
	default:
		return "", myErr.ErrUnknownFieldType
	}
}

// Category - узел дерева категорий.
// Subcategories, Fields и Advertisements заполняются при выдаче дерева
type Category struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	ParentID       *int64           `json:"parent_id,omitempty"`
	ImageURL       string           `json:"image_url,omitempty"`
	Subcategories  []*Category      `json:"subcategories"`
	Fields         []*CategoryField `json:"fields"`
	Advertisements []Advertisement  `json:"advertisements"`
}

// CategoryField - описание поля, которое объявления этой категории заполняют значениями
type CategoryField struct {
	ID         int64         `json:"id"`
	CategoryID int64         `json:"category_id"`
	Name       string        `json:"name"`
	FieldType  FieldType     `json:"field_type"`
	Required   bool          `json:"required"`
	Choices    []FieldChoice `json:"choices"`
}

// FieldChoice - одно из допустимых значений choice-поля
type FieldChoice struct {
	ID      int64  `json:"id"`
	FieldID int64  `json:"field_id"`
	Name    string `json:"name"`
}

// Advertisement - объявление в том виде, в котором оно вкладывается в дерево категорий
type Advertisement struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidateValue проверяет сырое значение против типа поля и возвращает его
// в каноничном виде для хранения. Для choice-полей значение должно совпадать
// с именем одного из вариантов
func (f *CategoryField) ValidateValue(raw string) (string, error) {
	switch f.FieldType {
	case FieldTypeBoolean:
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return "", myErr.ErrInvalidFieldValue
		}
		return strconv.FormatBool(v), nil
	case FieldTypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return "", myErr.ErrInvalidFieldValue
		}
		return strconv.FormatInt(n, 10), nil
	case FieldTypeChoice:
		for _, c := range f.Choices {
			if c.Name == raw {
				return raw, nil
			}
		}
		return "", myErr.ErrInvalidFieldValue
	default:
		return "", myErr.ErrUnknownFieldType
	}
}

//go:generate mockgen -source=category.go -destination=../mocks/mock_category_repo.go -package=mocks
type CategoryRepo interface {
	CreateCategory(form types.CreateCategory) (*Category, error)
	CreateField(form types.CreateCategoryField) (*CategoryField, error)
	CreateChoice(form types.CreateFieldChoice) (*FieldChoice, error)
	// ListRoot возвращает корневые категории с вложенными подкатегориями,
	// полями, вариантами choice-полей и объявлениями
	ListRoot() ([]*Category, error)
	// GetByID возвращает одну категорию в той же вложенной форме
	GetByID(id int64) (*Category, error)
}
