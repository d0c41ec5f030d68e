package analytics

import (
	"context"

	"go.uber.org/zap"

	"baraholka-main/internal/kafka"
)

type Service struct {
	repo   AnalyticsRepo
	logger *zap.SugaredLogger
}

func NewService(repo AnalyticsRepo, logger *zap.SugaredLogger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ProcessEvent(ctx context.Context, event kafka.Event) error {
	if event.UserID == "" {
		return nil // Игнорируем события без пользователя
	}

	weights := make(map[int64]int)
	switch event.Type {
	case kafka.EventTypeSearch:
		for _, cat := range event.Categories {
			weights[cat] += 1
		}
	case kafka.EventTypeView:
		if len(event.Categories) > 0 {
			weights[event.Categories[0]] += 2
		}
	case kafka.EventTypeFavorite:
		if len(event.Categories) > 0 {
			weights[event.Categories[0]] += 3
		}
	}

	if len(weights) == 0 {
		return nil
	}

	return s.repo.UpdatePreferences(ctx, event.UserID, weights)
}

func (s *Service) GetTopCategories(ctx context.Context, userID string, limit int) ([]int64, error) {
	return s.repo.GetTopCategories(ctx, userID, limit)
}
