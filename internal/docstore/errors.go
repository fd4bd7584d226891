package docstore

import "errors"

var (
	errNotArray  = errors.New("payload is not a JSON array")
	errNotObject = errors.New("payload is not a JSON object")
)
