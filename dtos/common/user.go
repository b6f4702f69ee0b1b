package common

import (
	"encoding/json"

	"go.uber.org/multierr"
)

var _ Validator = User{}

// User is a postgres role. Pw is only required for roles the tool logs in as.
type User struct {
	Name string  `json:"name"`
	Pw   *string `json:"pw"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	type user User
	data, err := ExactKeys(data, "name", "pw")
	if err != nil {
		return err
	}
	return json.Unmarshal(data, (*user)(u))
}

// NewUser returns a User carrying the given password
func NewUser(name, pw string) User {
	return User{Name: name, Pw: &pw}
}

// Password returns the password or "" when it is unknown
func (u User) Password() string {
	if u.Pw == nil {
		return ""
	}
	return *u.Pw
}

// HasPassword reports whether the user carries a non-empty password
func (u User) HasPassword() bool {
	return u.Password() != ""
}

// Validate checks that name is set and that pw, when present, is not empty
func (u User) Validate() error {
	errs := NotEmptyField("name", u.Name)
	if u.Pw != nil {
		errs = multierr.Append(errs, NotEmptyField("pw", *u.Pw))
	}
	return errs
}
