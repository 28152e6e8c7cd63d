package models

// User identifies a community member. Identity is owned by an external
// provider; the engine never mutates it.
type User struct {
	ID     string `json:"id"`
	Pseudo string `json:"pseudo"`
}

// SystemUser is the pseudo-sender of engine generated messages.
var SystemUser = User{ID: "system", Pseudo: "Système"}
