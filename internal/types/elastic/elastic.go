package elastic

// ElasticDoc - структура документа объявления для хранения в ES
type ElasticDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    int64  `json:"category,omitempty"`
}
