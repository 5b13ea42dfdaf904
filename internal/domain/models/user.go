package models

import "time"

// User is the authentication entity. Password holds the scrypt hash in
// "hex(key).hex(salt)" form, never the plain text.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
