package entity

import "time"

// Session token claim names.
const (
	ClaimUserID   = "id"
	ClaimUsername = "username"
	ClaimEmail    = "email"
)

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// LoginData is the subset of a user carried in the session token.
func (u User) LoginData() UserLoginData {
	return UserLoginData{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

type UserLoginData struct {
	ID       string
	Username string
	Email    string
}

func (d UserLoginData) Claims() map[string]interface{} {
	return map[string]interface{}{
		ClaimUserID:   d.ID,
		ClaimUsername: d.Username,
		ClaimEmail:    d.Email,
	}
}

// UserLoginDataFromClaims rebuilds the login data; ok is false without a user id.
func UserLoginDataFromClaims(claims map[string]interface{}) (UserLoginData, bool) {
	id, _ := claims[ClaimUserID].(string)
	username, _ := claims[ClaimUsername].(string)
	email, _ := claims[ClaimEmail].(string)

	return UserLoginData{ID: id, Username: username, Email: email}, id != ""
}
