package model

import "time"

// Admin is an administrator account that can log in and manage projects.
//
// PasswordHash holds the bcrypt digest and is tagged `json:"-"` so it can
// never leak through a response by accident. Handlers return AdminPublic
// anyway; the tag is the second lock on the door.
type Admin struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AdminPublic is the projection of Admin that is safe to send to clients.
type AdminPublic struct {
	ID       string `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

// Public returns the client-safe view of the admin.
func (a *Admin) Public() *AdminPublic {
	return &AdminPublic{
		ID:       a.ID,
		FullName: a.FullName,
		Email:    a.Email,
	}
}

// RegisterRequest is the request body for POST /admin/register.
type RegisterRequest struct {
	FullName string `json:"fullname" validate:"required,max=200"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the request body for POST /admin/login.
// The field is called "username" for compatibility with OAuth2 password-flow
// clients; its value is the admin's email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
