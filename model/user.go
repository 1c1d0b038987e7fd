package model

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/nickoine/know/repository"
)

// User registration methods.
const (
	RegistrationEmail  = "email"
	RegistrationGoogle = "google"
)

var UserMeta = repository.Metadata{Namespace: "user", Name: "user"}

// User is an application account. Staff accounts manage questionnaires
// and review submissions; verification state is tracked so mandatory
// questionnaires can gate on it.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                 int64          `bun:"id,pk,autoincrement"`
	Username           string         `bun:"username,notnull,unique"`
	Email              string         `bun:"email,notnull"`
	FirstName          string         `bun:"first_name"`
	LastName           string         `bun:"last_name"`
	RegistrationMethod string         `bun:"registration_method,notnull"`
	IsStaff            bool           `bun:"is_staff"`
	IsActive           bool           `bun:"is_active"`
	IsVerified         bool           `bun:"is_verified"`
	DateVerified       *time.Time     `bun:"date_verified,nullzero"`
	Metadata           map[string]any `bun:"metadata"`
	DateJoined         time.Time      `bun:"date_joined,nullzero,notnull,default:current_timestamp"`
}

func (u *User) GetID() int64 { return u.ID }

func (u *User) ApplyFields(fields map[string]any) error {
	return assignFields(u, fields)
}

// AgeDays returns the whole days since the account joined, or -1 when the
// join time is unset.
func (u *User) AgeDays(now time.Time) int {
	if u.DateJoined.IsZero() {
		return -1
	}
	return int(now.Sub(u.DateJoined).Hours() / 24)
}
