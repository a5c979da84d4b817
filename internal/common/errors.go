package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// input errors
	ErrorInvalidInput = errors.New("invalid input")
)
