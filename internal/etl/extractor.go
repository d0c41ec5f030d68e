package etl

import (
	"database/sql"

	"go.uber.org/zap"
	"golang.org/x/net/context"

	"baraholka-main/internal/advertisement"
)

type PostgresExtractor struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

func NewPostgresExtractor(db *sql.DB, logger *zap.SugaredLogger) *PostgresExtractor {
	return &PostgresExtractor{
		DB:     db,
		Logger: logger,
	}
}

// ExtractNew - достает объявления, которые еще не попали в полнотекстовый поиск
// Возвращает массив объявлений и error
func (e *PostgresExtractor) ExtractNew(ctx context.Context) ([]advertisement.Advertisement, error) {
	query :=
		`
		SELECT id, title, description, category_id, user_id, created_at
		FROM advertisements
		WHERE searching = FALSE
		`

	rows, err := e.DB.QueryContext(ctx, query)
	if err != nil {
		e.Logger.Error("Failed to executing query", zap.Error(err))

		return nil, err
	}
	defer rows.Close()

	var result []advertisement.Advertisement

	for rows.Next() {
		var a advertisement.Advertisement
		err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.CategoryID, &a.UserID, &a.CreatedAt)
		if err != nil {
			e.Logger.Error("Failed to scan rows", zap.Error(err))

			return nil, err
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		e.Logger.Error("Error during rows iteration", zap.Error(err))
		return nil, err
	}

	return result, nil
}
