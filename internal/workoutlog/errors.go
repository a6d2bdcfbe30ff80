package workoutlog

import "errors"

// ErrSetNotFound: the submitted workout_set_id does not resolve to a set the
// caller owns. Fatal for the whole request.
var ErrSetNotFound = errors.New("workout set not found")

// ErrAlreadyLogged: the same session (batch token) was flushed before. No new
// rows were written.
var ErrAlreadyLogged = errors.New("workout already logged")

// ValidationError marks a user-correctable problem with the finish payload.
type ValidationError struct {
	Msg    string
	Fields map[string]string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(msg string, fields map[string]string) error {
	return &ValidationError{Msg: msg, Fields: fields}
}
