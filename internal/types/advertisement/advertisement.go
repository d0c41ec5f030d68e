package advertisement

// CreateAdvertisement - форма для создания объявления
type CreateAdvertisement struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"category_id"`
}

// CreateFieldValue - форма для значения поля категории у объявления
type CreateFieldValue struct {
	Value           string `json:"value"`
	FieldID         int64  `json:"field_id"`
	AdvertisementID int64  `json:"advertisement_id"`
}
