// Package validate holds the local form checks run before any request is
// sent. A failed check never reaches the session store.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

const (
	MinPasswordLen = 6
	MinNameLen     = 2
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidationError is a failed check on one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return common.ErrorInvalidInput
}

// Errors collects every failed check of a form, in field order.
type Errors []*ValidationError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e Errors) Unwrap() []error {
	out := make([]error, 0, len(e))
	for _, v := range e {
		out = append(out, v)
	}
	return out
}

// Field returns the message for field, or "".
func (e Errors) Field(field string) string {
	for _, v := range e {
		if v.Field == field {
			return v.Message
		}
	}
	return ""
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Login checks the sign-in form.
func Login(email, password string) error {
	var errs Errors
	errs = appendErr(errs, "email", checkEmail(email))
	switch {
	case password == "":
		errs = appendErr(errs, "password", "Password is required")
	case len(password) < MinPasswordLen:
		errs = appendErr(errs, "password", "Password must be at least 6 characters")
	}
	return errs.orNil()
}

// Register checks the sign-up form.
func Register(name, email, password, confirm string) error {
	var errs Errors
	errs = appendErr(errs, "name", checkName(name))
	errs = appendErr(errs, "email", checkEmail(email))
	errs = appendErr(errs, "password", checkStrongPassword(password))
	errs = appendErr(errs, "confirmPassword", checkConfirm(password, confirm))
	return errs.orNil()
}

// Profile checks a profile change. Empty fields mean "unchanged", but at
// least one must be set.
func Profile(name, email string) error {
	var errs Errors
	if name == "" && email == "" {
		return append(errs, &ValidationError{Field: "name", Message: "Nothing to update"})
	}
	if name != "" {
		errs = appendErr(errs, "name", checkName(name))
	}
	if email != "" {
		errs = appendErr(errs, "email", checkEmail(email))
	}
	return errs.orNil()
}

// PasswordChange checks a password change. The new password follows the
// sign-up rules.
func PasswordChange(current, next, confirm string) error {
	var errs Errors
	if current == "" {
		errs = appendErr(errs, "currentPassword", "Current password is required")
	}
	errs = appendErr(errs, "newPassword", checkStrongPassword(next))
	errs = appendErr(errs, "confirmPassword", checkConfirm(next, confirm))
	return errs.orNil()
}

// Fields returns the per-field messages of err, if it came from this
// package.
func Fields(err error) Errors {
	var errs Errors
	if errors.As(err, &errs) {
		return errs
	}
	var one *ValidationError
	if errors.As(err, &one) {
		return Errors{one}
	}
	return nil
}

func appendErr(errs Errors, field, msg string) Errors {
	if msg == "" {
		return errs
	}
	return append(errs, &ValidationError{Field: field, Message: msg})
}

func checkName(name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "Full name is required"
	case len([]rune(name)) < MinNameLen:
		return "Name must be at least 2 characters"
	}
	return ""
}

func checkEmail(email string) string {
	switch {
	case email == "":
		return "Email is required"
	case !emailPattern.MatchString(email):
		return "Please enter a valid email address"
	}
	return ""
}

func checkStrongPassword(p string) string {
	if p == "" {
		return "Password is required"
	}
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if len(p) < MinPasswordLen || !upper || !lower || !digit {
		return "Password must meet all requirements"
	}
	return ""
}

func checkConfirm(p, confirm string) string {
	switch {
	case confirm == "":
		return "Please confirm your password"
	case p != confirm:
		return "Passwords do not match"
	}
	return ""
}
