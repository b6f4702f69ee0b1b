package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty is returned for a required string field holding "".
	ErrEmpty = errors.New("must not be empty")
	// ErrMissingPassword is returned for a privileged user without a password.
	ErrMissingPassword = errors.New("password is required")
	// ErrPathSegment is returned for an identity that cannot be used as one directory name.
	ErrPathSegment = errors.New("must be a single path segment")
)

// Validator is implemented by every persisted model
type Validator interface {
	// Validate returns all field errors of the value combined into one error
	Validate() error
}

// FieldError ties a validation failure to the field that caused it
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NotEmpty returns v unchanged, or ErrEmpty when v is ""
func NotEmpty(v string) (string, error) {
	if v == "" {
		return v, ErrEmpty
	}
	return v, nil
}

// Field wraps err with the field name. A nil err stays nil.
func Field(name string, err error) error {
	if err == nil {
		return nil
	}
	return &FieldError{Field: name, Err: err}
}

// NotEmptyField runs NotEmpty on v and reports a failure against name
func NotEmptyField(name, v string) error {
	_, err := NotEmpty(v)
	return Field(name, err)
}

// PathSegmentField reports values that would escape or collapse their directory
// when used as a path element. "" is left to NotEmptyField.
func PathSegmentField(name, v string) error {
	if v == "." || v == ".." || strings.ContainsAny(v, "/\\\x00") {
		return Field(name, ErrPathSegment)
	}
	return nil
}

// ExactKeys drops object keys that only match one of fields case-insensitively,
// so encoding/json cannot bind them to a field. Other input is returned unchanged.
func ExactKeys(data []byte, fields ...string) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}

	dropped := false
	for key := range obj {
		for _, field := range fields {
			if key != field && strings.EqualFold(key, field) {
				delete(obj, key)
				dropped = true
				break
			}
		}
	}
	if !dropped {
		return data, nil
	}
	return json.Marshal(obj)
}
