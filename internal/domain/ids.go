package domain

import "strconv"

// GreetingID identifies a stored greeting. Issued ids start at 1 and are never reused.
type GreetingID int64

func (id GreetingID) String() string { return strconv.FormatInt(int64(id), 10) }
