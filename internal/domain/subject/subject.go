// Package subject defines the fixed, ordered set of graded subjects.
package subject

// Key identifies one of the graded subjects.
type Key string

// The five subjects, in contract order.
const (
	Mathematics     Key = "mathematics"
	Science         Key = "science"
	English         Key = "english"
	History         Key = "history"
	ComputerScience Key = "computer_science"
)

// Count is the number of graded subjects.
const Count = 5

// Subject pairs a key with its display label.
type Subject struct {
	Key   Key    `json:"key"`
	Label string `json:"label"`
}

var subjects = [Count]Subject{ //nolint:gochecknoglobals // immutable subject list
	{Key: Mathematics, Label: "Mathematics"},
	{Key: Science, Label: "Science"},
	{Key: English, Label: "English"},
	{Key: History, Label: "History"},
	{Key: ComputerScience, Label: "Computer Science"},
}

// All returns the subjects in contract order.
func All() []Subject {
	out := make([]Subject, Count)
	copy(out, subjects[:])
	return out
}

// Keys returns the subject keys in contract order.
func Keys() []Key {
	out := make([]Key, Count)
	for i, s := range subjects {
		out[i] = s.Key
	}
	return out
}

// Label returns the display label of k, or k itself when unknown.
func (k Key) Label() string {
	for _, s := range subjects {
		if s.Key == k {
			return s.Label
		}
	}
	return string(k)
}

// Valid reports whether k is one of the graded subjects.
func (k Key) Valid() bool {
	return k.Index() >= 0
}

// Index returns the position of k in contract order, or -1.
func (k Key) Index() int {
	for i, s := range subjects {
		if s.Key == k {
			return i
		}
	}
	return -1
}
