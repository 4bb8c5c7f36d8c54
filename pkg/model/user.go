package model

import "time"

type UserID string

// LocalUserID is used when credentials are given directly and no identity
// provider is involved
const LocalUserID UserID = "local"

// User is the currently authenticated identity
type User struct {
	ID        UserID
	Email     string
	IDToken   string
	ExpiresAt time.Time
}
