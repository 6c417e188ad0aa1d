package flashcard

import "errors"

// ErrInvalidArgument is wrapped by every error caused by a value outside its
// declared domain (unknown mastery status, unknown review outcome, negative
// streak, empty card text). Check with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")
