package models

import "time"

type User struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name  string `json:"name"`
	Email string `json:"email"`

	// PasswordHash is empty for accounts created through Google login.
	PasswordHash string `json:"-"`
	GoogleID     string `json:"-"`
}

// PublicProfile is the user shape returned to clients. Credentials never
// leave the server.
type PublicProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email}
}
