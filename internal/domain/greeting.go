package domain

import "errors"

// ErrBlankMessage indicates a greeting message that is empty after trimming whitespace.
var ErrBlankMessage = errors.New("greeting message must be non-blank")

// Greeting is a stored greeting record. It always carries an assigned ID.
type Greeting struct {
	ID      GreetingID
	Message string
}

// Draft is a client-supplied greeting on its way to the store.
// A nil ID means the greeting has not been assigned an id yet.
type Draft struct {
	ID      *GreetingID
	Message string
}

// NewDraft validates the message and returns a Draft that owns its own copy of id.
// The message is kept verbatim; only the blank check looks at trimmed text.
func NewDraft(id *GreetingID, message string) (Draft, error) {
	if IsBlank(message) {
		return Draft{}, ErrBlankMessage
	}
	d := Draft{Message: message}
	if id != nil {
		v := *id
		d.ID = &v
	}
	return d, nil
}

// HasID reports whether the draft targets an existing greeting.
func (d Draft) HasID() bool { return d.ID != nil }
