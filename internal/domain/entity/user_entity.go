package entity

import (
	"time"
)

// User is the aggregate root of the identity service. Password holds a bcrypt
// hash; other services only ever see the UserView projection carried in events.
type User struct {
	ID             string
	Name           string
	Email          string
	Password       string
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
