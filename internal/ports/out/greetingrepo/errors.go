package greetingrepo

import "errors"

// ErrUnknownID indicates a save or lookup referenced an id that was never issued.
var ErrUnknownID = errors.New("unknown greeting id")
