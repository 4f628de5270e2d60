package domain

// User represents an account allowed to log in to the price board.
type User struct {
	Username     string
	PasswordHash string
}
