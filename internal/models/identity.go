package models

// Identity is the signed-in principal carried by a session or API token.
type Identity struct {
	Email string `json:"email"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
