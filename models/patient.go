package models

type User struct {
	UserID  string  `json:"userId"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Image   string  `json:"image"`
	Phone   string  `json:"phone"`
	Gender  string  `json:"gender"`
	Dob     string  `json:"dob"`
	Address Address `json:"address"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}
