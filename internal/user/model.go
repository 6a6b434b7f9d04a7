package user

import "time"

type User struct {
	ID           string
	Name         string
	Phone        string
	Email        string
	PasswordHash string
	// PointsBalance is a non-negative rewards balance; 10 points are worth
	// one rupee of discount at checkout. Mutated only by the rewards process.
	PointsBalance int
	CreatedAt     time.Time
}
