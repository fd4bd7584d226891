package server

import "github.com/ayoisaiah/lift/internal/apperr"

var errBadRequest = &apperr.Error{
	Message: "bad request: %s",
}
