package user

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	myErr "baraholka-main/internal/types/errors"
	types "baraholka-main/internal/types/user"
)

type UserDBRepository struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

func NewUserDBRepository(db *sql.DB, l *zap.SugaredLogger) *UserDBRepository {
	return &UserDBRepository{
		DB:     db,
		Logger: l,
	}
}

// CreateUser регистрирует нового пользователя. Почта уникальна,
// при попытке повторной регистрации возвращает ErrAlreadyExists.
func (ur *UserDBRepository) CreateUser(cu types.CreateUser) (*User, error) {
	var exists string
	err := ur.DB.QueryRow(`SELECT id FROM users WHERE email = $1`, cu.Email).Scan(&exists)
	if err == nil {
		return nil, myErr.ErrAlreadyExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		ur.Logger.Warnf("Ошибка при проверке почты %s: %v", cu.Email, err)
		return nil, myErr.ErrDBInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cu.Password), bcrypt.DefaultCost)
	if err != nil {
		ur.Logger.Warnf("Ошибка при хешировании пароля: %v", err)
		return nil, err
	}

	u := &User{
		ID:               uuid.New().String(),
		Name:             cu.Name,
		Surname:          cu.Surname,
		RegistrationDate: time.Now(),
		Email:            cu.Email,
		PhoneNumber:      cu.PhoneNumber,
		PasswordHash:     string(hash),
	}

	query := `
	INSERT INTO users (id, name, surname, registration_date, email, phone_number, password_hash)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = ur.DB.Exec(query,
		u.ID, u.Name, u.Surname, u.RegistrationDate,
		u.Email, u.PhoneNumber, u.PasswordHash,
	)
	if err != nil {
		ur.Logger.Warnf("Ошибка при создании пользователя: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return u, nil
}

// CheckUser - проверяет пользователя по почте и паролю
// Возвращает ErrNotFound если почта не зарегистрирована и ErrBadPassword при неверном пароле
func (ur *UserDBRepository) CheckUser(email, password string) (*User, error) {
	query := `
	SELECT id, name, surname, registration_date, email, phone_number, password_hash
	FROM users
	WHERE email = $1
	`
	u := &User{}
	err := ur.DB.QueryRow(query, email).
		Scan(
			&u.ID, &u.Name, &u.Surname, &u.RegistrationDate,
			&u.Email, &u.PhoneNumber, &u.PasswordHash,
		)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, myErr.ErrNotFound
		}
		ur.Logger.Warnf("Ошибка при поиске пользователя по почте: %v", err)
		return nil, myErr.ErrDBInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, myErr.ErrBadPassword
	}

	return u, nil
}

func (ur *UserDBRepository) Info(userID string) (*User, error) {
	query := `
	SELECT id,
		   name,
		   surname,
		   registration_date,
		   email,
		   phone_number
	FROM users
	WHERE id = $1
	`
	u := &User{}
	err := ur.DB.QueryRow(query, userID).
		Scan(
			&u.ID, &u.Name, &u.Surname,
			&u.RegistrationDate, &u.Email, &u.PhoneNumber,
		)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, myErr.ErrNotFound
		}
		ur.Logger.Warnf("Ошибка при получения информации о пользователе: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return u, nil
}

func (ur *UserDBRepository) ChangeProfile(userID string, updateUser types.ChangeUser) (*User, error) {
	fields := []string{}
	args := []interface{}{}
	argID := 1

	// Динамически добавляем поля в обновление
	if updateUser.Name != "" {
		fields = append(fields, "name = $"+strconv.Itoa(argID))
		args = append(args, updateUser.Name)
		argID++
	}
	if updateUser.Surname != "" {
		fields = append(fields, "surname = $"+strconv.Itoa(argID))
		args = append(args, updateUser.Surname)
		argID++
	}
	if updateUser.Email != "" {
		fields = append(fields, "email = $"+strconv.Itoa(argID))
		args = append(args, updateUser.Email)
		argID++
	}
	if updateUser.PhoneNumber != "" {
		fields = append(fields, "phone_number = $"+strconv.Itoa(argID))
		args = append(args, updateUser.PhoneNumber)
		argID++
	}

	if len(fields) == 0 {
		return ur.Info(userID) // Если ничего не обновляется, просто вернуть текущие данные
	}

	query := "UPDATE users SET " + strings.Join(fields, ", ") + " WHERE id = $" + strconv.Itoa(argID) // nolint:gosec
	args = append(args, userID)

	res, err := ur.DB.Exec(query, args...)
	if err != nil {
		ur.Logger.Warnf("Ошибка при обновлении профиля: %v", err)
		return nil, myErr.ErrDBInternal
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		ur.Logger.Warnf("Не удалось получить количество обновлённых строк: %v", err)
		return nil, myErr.ErrDBInternal
	}

	if rowsAffected == 0 {
		return nil, myErr.ErrNotFound
	}

	return ur.Info(userID) // Возвращаем обновлённые данные пользователя
}
