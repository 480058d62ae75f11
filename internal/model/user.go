package model

// User is the identity resolved from a bearer token
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
