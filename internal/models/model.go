package models

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Blog is a single post. Owner is filled from a join on users and is empty
// for freshly created rows.
type Blog struct {
	ID        int64
	OwnerID   int64
	Name      string
	Body      string
	CreatedAt time.Time
	Owner     string
}

// UserSummary is a row of the user directory.
type UserSummary struct {
	ID       int64
	Username string
	Posts    int
}
