package location

import "errors"

var (
	ErrInvalidLocation = errors.New("invalid store location")
	ErrDuplicateID     = errors.New("store location id already exists")
)
