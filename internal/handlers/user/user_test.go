package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/assert"
	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"baraholka-main/internal/mocks"
	"baraholka-main/internal/session"
	myErr "baraholka-main/internal/types/errors"
	types "baraholka-main/internal/types/user"
	"baraholka-main/internal/user"
)

const (
	invalidJSON = "Invalid JSON"
)

func TestUserHandler_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepo(ctrl)
	mockSessionRepo := mocks.NewMockSessionRepo(ctrl)
	logger := zap.NewNop().Sugar()
	handler := &UserHandler{
		Logger:         logger,
		UserRepository: mockUserRepo,
		SessionManger:  mockSessionRepo,
	}

	tests := []struct {
		name           string
		body           types.LoginUser
		mockBehavior   func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: types.LoginUser{
				Email:    "test@example.com",
				Password: "123456",
			},
			mockBehavior: func() {
				mockUserRepo.EXPECT().
					CheckUser("test@example.com", "123456").
					Return(&user.User{ID: "1", Email: "test@example.com"}, nil)

				mockSessionRepo.EXPECT().
					CreateSession(gomock.Any(), gomock.Any(), "1", "test@example.com").
					Return(&session.Session{ID: "sess-123"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "User Not Found",
			body: types.LoginUser{
				Email:    "notfound@example.com",
				Password: "123456",
			},
			mockBehavior: func() {
				mockUserRepo.EXPECT().
					CheckUser("notfound@example.com", "123456").
					Return(nil, myErr.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Wrong Password",
			body: types.LoginUser{
				Email:    "test@example.com",
				Password: "wrongpass",
			},
			mockBehavior: func() {
				mockUserRepo.EXPECT().
					CheckUser("test@example.com", "wrongpass").
					Return(nil, myErr.ErrBadPassword)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Internal Error",
			body: types.LoginUser{
				Email:    "test@example.com",
				Password: "123456",
			},
			mockBehavior: func() {
				mockUserRepo.EXPECT().
					CheckUser("test@example.com", "123456").
					Return(nil, errors.New("db failure"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           invalidJSON,
			body:           types.LoginUser{}, // ignored
			mockBehavior:   func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()

			var body io.Reader
			if tt.name == invalidJSON {
				body = strings.NewReader("{invalid-json}")
			} else {
				bodyBytes, _ := json.Marshal(tt.body) // nolint:errcheck
				body = bytes.NewReader(bodyBytes)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/user/login", body)
			w := httptest.NewRecorder()

			handler.Login(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestUserHandler_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepo(ctrl)
	mockSessionRepo := mocks.NewMockSessionRepo(ctrl)
	logger := zap.NewNop().Sugar()
	handler := &UserHandler{
		Logger:         logger,
		UserRepository: mockUserRepo,
		SessionManger:  mockSessionRepo,
	}

	form := types.CreateUser{
		Name:        "John",
		Surname:     "Doe",
		Email:       "john@example.com",
		PhoneNumber: "1234567890",
		Password:    "securepass123",
	}

	tests := []struct {
		name           string
		body           types.CreateUser
		mockBehavior   func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: form,
			mockBehavior: func() {
				mockUserRepo.EXPECT().
					CreateUser(form).
					Return(&user.User{ID: "1", Email: form.Email}, nil)

				mockSessionRepo.EXPECT().
					CreateSession(gomock.Any(), gomock.Any(), "1", form.Email).
					Return(&session.Session{ID: "sess-123"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Already Exists",
			body: form,
			mockBehavior: func() {
				mockUserRepo.EXPECT().
					CreateUser(form).
					Return(nil, myErr.ErrAlreadyExists)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "Invalid Email",
			body: types.CreateUser{
				Name:     "John",
				Email:    "not-an-email",
				Password: "securepass123",
			},
			mockBehavior:   func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           invalidJSON,
			body:           types.CreateUser{}, // ignored
			mockBehavior:   func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()

			var body io.Reader
			if tt.name == invalidJSON {
				body = strings.NewReader("{invalid-json}")
			} else {
				bodyBytes, _ := json.Marshal(tt.body) // nolint:errcheck
				body = bytes.NewReader(bodyBytes)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/register", body)
			w := httptest.NewRecorder()

			handler.Register(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestUserHandler_Info(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepo(ctrl)
	logger := zap.NewNop().Sugar()
	handler := &UserHandler{
		Logger:         logger,
		UserRepository: mockUserRepo,
	}

	validID := "7b8e1f12-13cd-4b5a-b0a5-2a1f4bb1c001"

	tests := []struct {
		name           string
		userID         string
		mockBehavior   func()
		expectedStatus int
	}{
		{
			name:   "Success",
			userID: validID,
			mockBehavior: func() {
				mockUserRepo.EXPECT().
					Info(validID).
					Return(&user.User{ID: validID, Name: "John"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Bad ID",
			userID:         "not-a-uuid",
			mockBehavior:   func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "Not Found",
			userID: validID,
			mockBehavior: func() {
				mockUserRepo.EXPECT().
					Info(validID).
					Return(nil, myErr.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()

			req := httptest.NewRequest(http.MethodGet, "/api/user/"+tt.userID, nil)
			w := httptest.NewRecorder()

			r := mux.NewRouter()
			r.HandleFunc("/api/user/{id}", handler.Info).Methods(http.MethodGet)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestUserHandler_ChangeProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepo(ctrl)
	logger := zap.NewNop().Sugar()
	handler := &UserHandler{
		Logger:         logger,
		UserRepository: mockUserRepo,
	}

	validID := "7b8e1f12-13cd-4b5a-b0a5-2a1f4bb1c001"
	update := types.ChangeUser{Name: "Alice"}

	tests := []struct {
		name           string
		userID         string
		mockBehavior   func()
		expectedStatus int
	}{
		{
			name:   "Success",
			userID: validID,
			mockBehavior: func() {
				mockUserRepo.EXPECT().
					ChangeProfile(validID, update).
					Return(&user.User{ID: validID, Name: "Alice"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Not Found",
			userID: validID,
			mockBehavior: func() {
				mockUserRepo.EXPECT().
					ChangeProfile(validID, update).
					Return(nil, myErr.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Bad ID",
			userID:         "42",
			mockBehavior:   func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()

			bodyBytes, _ := json.Marshal(update) // nolint:errcheck
			req := httptest.NewRequest(http.MethodPost, "/api/user/"+tt.userID+"/change", bytes.NewReader(bodyBytes))
			w := httptest.NewRecorder()

			r := mux.NewRouter()
			r.HandleFunc("/api/user/{id}/change", handler.ChangeProfile).Methods(http.MethodPost)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
