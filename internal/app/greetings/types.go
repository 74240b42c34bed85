package greetings

// SaveGreetingInput is a greeting as submitted by a client.
// A nil ID requests creation; a non-nil ID targets an existing greeting.
type SaveGreetingInput struct {
	ID      *int64
	Message string
}
