package user

// CreateUser структура с полями для регистрации пользователя
type CreateUser struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// ChangeUser структура пользователя с полями для изменения
type ChangeUser struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// LoginUser структура с полями для входа
type LoginUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
