package user

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	myErr "baraholka-main/internal/types/errors"
	types "baraholka-main/internal/types/user"
)

func TestUserDBRepository_CreateUser(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repo := NewUserDBRepository(db, logger)

	u := types.CreateUser{
		Name:        "John",
		Surname:     "Doe",
		Email:       "john@example.com",
		PhoneNumber: "1234567890",
		Password:    "securepass123",
	}

	t.Run("successfully_create_user", func(t *testing.T) {
		// 1. Почта свободна
		mock.ExpectQuery(`SELECT id FROM users WHERE email = \$1`).
			WithArgs(u.Email).
			WillReturnError(sql.ErrNoRows)

		// 2. INSERT INTO users
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), u.Name, u.Surname, sqlmock.AnyArg(),
				u.Email, u.PhoneNumber, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		created, err := repo.CreateUser(u)
		require.NoError(t, err)
		require.NotNil(t, created)
		require.Equal(t, u.Name, created.Name)
		require.Equal(t, u.Email, created.Email)
		require.NotEmpty(t, created.ID)
		// в базу ушел хеш, а не пароль
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(u.Password)))
	})

	t.Run("user_already_exists", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id FROM users WHERE email = \$1`).
			WithArgs(u.Email).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("some-id"))

		_, err := repo.CreateUser(u)
		require.ErrorIs(t, err, myErr.ErrAlreadyExists)
	})
}

func TestUserDBRepository_CheckUser(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repository := NewUserDBRepository(db, logger)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost) // nolint:errcheck

	tests := []struct {
		name        string
		email       string
		password    string
		mockQuery   func()
		expectUser  bool
		expectError error
	}{
		{
			name:     "valid credentials",
			email:    "valid@example.com",
			password: "correct_password",
			mockQuery: func() {
				mock.ExpectQuery(`SELECT id,.*FROM users\s+WHERE email = \$1`).
					WithArgs("valid@example.com").
					WillReturnRows(sqlmock.NewRows([]string{
						"id", "name", "surname", "registration_date",
						"email", "phone_number", "password_hash",
					}).AddRow(
						"123", "John", "Doe", time.Now(),
						"valid@example.com", "1234567890", string(hashedPassword),
					))
			},
			expectUser:  true,
			expectError: nil,
		},
		{
			name:     "user not found",
			email:    "notfound@example.com",
			password: "whatever",
			mockQuery: func() {
				mock.ExpectQuery(`SELECT id,.*FROM users\s+WHERE email = \$1`).
					WithArgs("notfound@example.com").
					WillReturnError(sql.ErrNoRows)
			},
			expectUser:  false,
			expectError: myErr.ErrNotFound,
		},
		{
			name:     "wrong password",
			email:    "valid@example.com",
			password: "wrong_password",
			mockQuery: func() {
				mock.ExpectQuery(`SELECT id,.*FROM users\s+WHERE email = \$1`).
					WithArgs("valid@example.com").
					WillReturnRows(sqlmock.NewRows([]string{
						"id", "name", "surname", "registration_date",
						"email", "phone_number", "password_hash",
					}).AddRow(
						"123", "John", "Doe", time.Now(),
						"valid@example.com", "1234567890", string(hashedPassword),
					))
			},
			expectUser:  false,
			expectError: myErr.ErrBadPassword,
		},
		{
			name:     "db error",
			email:    "error@example.com",
			password: "irrelevant",
			mockQuery: func() {
				mock.ExpectQuery(`SELECT id,.*FROM users\s+WHERE email = \$1`).
					WithArgs("error@example.com").
					WillReturnError(errors.New("db failure"))
			},
			expectUser:  false,
			expectError: myErr.ErrDBInternal,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.mockQuery()
			user, err := repository.CheckUser(tt.email, tt.password)

			if tt.expectUser {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
			} else {
				assert.Nil(t, user)
				assert.ErrorIs(t, err, tt.expectError)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserDBRepository_Info(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repository := NewUserDBRepository(db, logger)

	registered := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		userID      string
		mockQuery   func()
		expected    *User
		expectError error
	}{
		{
			name:   "valid user",
			userID: "123",
			mockQuery: func() {
				mock.ExpectQuery(`SELECT id,.*FROM users\s+WHERE id = \$1`).
					WithArgs("123").
					WillReturnRows(sqlmock.NewRows([]string{
						"id", "name", "surname", "registration_date", "email", "phone_number",
					}).AddRow(
						"123", "John", "Doe", registered,
						"john@example.com", "1234567890",
					))
			},
			expected: &User{
				ID:               "123",
				Name:             "John",
				Surname:          "Doe",
				RegistrationDate: registered,
				Email:            "john@example.com",
				PhoneNumber:      "1234567890",
			},
			expectError: nil,
		},
		{
			name:   "user not found",
			userID: "999",
			mockQuery: func() {
				mock.ExpectQuery(`SELECT id,.*FROM users\s+WHERE id = \$1`).
					WithArgs("999").
					WillReturnError(sql.ErrNoRows)
			},
			expected:    nil,
			expectError: myErr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.mockQuery()

			user, err := repository.Info(tt.userID)
			assert.Equal(t, tt.expected, user)
			assert.Equal(t, tt.expectError, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserDBRepository_ChangeProfile(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger := zaptest.NewLogger(t).Sugar()
	repository := NewUserDBRepository(db, logger)

	registered := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		userID         string
		update         types.ChangeUser
		mockQuery      func()
		expectedResult *User
		expectError    error
	}{
		{
			name:   "update name and email",
			userID: "123",
			update: types.ChangeUser{
				Name:  "Alice",
				Email: "alice@example.com",
			},
			mockQuery: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET name = $1, email = $2 WHERE id = $3`)).
					WithArgs("Alice", "alice@example.com", "123").
					WillReturnResult(sqlmock.NewResult(0, 1))

				mock.ExpectQuery(`SELECT id,.*FROM users\s+WHERE id = \$1`).
					WithArgs("123").
					WillReturnRows(sqlmock.NewRows([]string{
						"id", "name", "surname", "registration_date", "email", "phone_number",
					}).AddRow(
						"123", "Alice", "Doe", registered,
						"alice@example.com", "1234567890",
					))
			},
			expectedResult: &User{
				ID:               "123",
				Name:             "Alice",
				Surname:          "Doe",
				RegistrationDate: registered,
				Email:            "alice@example.com",
				PhoneNumber:      "1234567890",
			},
			expectError: nil,
		},
		{
			name:   "no update fields",
			userID: "123",
			update: types.ChangeUser{},
			mockQuery: func() {
				mock.ExpectQuery(`SELECT id,.*FROM users\s+WHERE id = \$1`).
					WithArgs("123").
					WillReturnRows(sqlmock.NewRows([]string{
						"id", "name", "surname", "registration_date", "email", "phone_number",
					}).AddRow(
						"123", "John", "Doe", registered,
						"john@example.com", "1234567890",
					))
			},
			expectedResult: &User{
				ID:               "123",
				Name:             "John",
				Surname:          "Doe",
				RegistrationDate: registered,
				Email:            "john@example.com",
				PhoneNumber:      "1234567890",
			},
			expectError: nil,
		},
		{
			name:   "db error on update",
			userID: "123",
			update: types.ChangeUser{
				Name: "Alice",
			},
			mockQuery: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET name = $1 WHERE id = $2`)).
					WithArgs("Alice", "123").
					WillReturnError(errors.New("db failure"))
			},
			expectedResult: nil,
			expectError:    myErr.ErrDBInternal,
		},
		{
			name:   "user not found",
			userID: "404",
			update: types.ChangeUser{
				Name: "Ghost",
			},
			mockQuery: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET name = $1 WHERE id = $2`)).
					WithArgs("Ghost", "404").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedResult: nil,
			expectError:    myErr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.mockQuery()

			result, err := repository.ChangeProfile(tt.userID, tt.update)
			assert.Equal(t, tt.expectedResult, result)
			assert.Equal(t, tt.expectError, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
