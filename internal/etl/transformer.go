package etl

import (
	"strconv"

	"go.uber.org/zap"

	"baraholka-main/internal/advertisement"
	"baraholka-main/internal/types/elastic"
)

type Transformer struct {
	Logger *zap.SugaredLogger
}

func NewTransformer(logger *zap.SugaredLogger) *Transformer {
	return &Transformer{
		Logger: logger,
	}
}

// Transform - переводит документы из формата хранения в PostgreSQL в ElasticDoc для хранения в ES
// Принимает массив Advertisement, возвращает массив ElasticDoc
func (t *Transformer) Transform(input []advertisement.Advertisement) []elastic.ElasticDoc {
	docs := make([]elastic.ElasticDoc, 0, len(input))
	for _, a := range input {
		docs = append(docs, elastic.ElasticDoc{
			ID:          strconv.FormatInt(a.ID, 10),
			Title:       a.Title,
			Description: a.Description,
			Category:    a.CategoryID,
		})
	}

	t.Logger.Infof("Transformed %d docs succesfully", len(input))

	return docs
}
