package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"baraholka-main/internal/session"
	myErr "baraholka-main/internal/types/errors"
)

type SessKey string

var sessKey SessKey = "sessionKey"

// SessionChecker - то, что умеет проверить сессию запроса.
// Реализуется session.SessionRepository
type SessionChecker interface {
	CheckSession(r *http.Request) (*session.Session, error)
}

func Auth(logger *zap.SugaredLogger, sm SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Проверка сессии пользователя
			sess, err := sm.CheckSession(r)
			if err != nil {
				myErr.SendErrorTo(w, myErr.ErrNoAuth, http.StatusUnauthorized, logger)
				return
			}

			// Добавляем сессию в контекст и передаем дальше
			ctx := ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SoftSession кладет сессию в контекст, если запрос пришел с валидным
// токеном, но в отличие от Auth пропускает и анонимные запросы.
// Вешается на публичные ручки, которым сессия нужна только для
// событий аналитики
func SoftSession(sm SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, err := sm.CheckSession(r); err == nil {
				r = r.WithContext(ContextWithSession(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ContextWithSession(ctx context.Context, s *session.Session) context.Context {
	// создаем новый контекст с нашим ключом и сессией
	return context.WithValue(ctx, sessKey, s)
}

// GetSessionFromContext достает сессию, положенную Auth
func GetSessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessKey).(*session.Session)
	return s, ok
}
