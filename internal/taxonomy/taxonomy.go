// Package taxonomy defines the canonical emotion labels and the ordinal
// distance between them. The ordering is a fixed numeric convention used
// for drift computation, not a claim of semantic adjacency; changing it
// would make historical drift values incomparable.
package taxonomy

import "strings"

// Label is a canonical emotion label.
type Label string

// The eight canonical labels, in taxonomy order.
const (
	Neutral   Label = "neutral"
	Calm      Label = "calm"
	Happy     Label = "happy"
	Surprised Label = "surprised"
	Sad       Label = "sad"
	Fearful   Label = "fearful"
	Angry     Label = "angry"
	Disgust   Label = "disgust"
)

// Order lists the canonical labels by index. Index 0 is the default for
// unrecognized input.
var Order = []Label{Neutral, Calm, Happy, Surprised, Sad, Fearful, Angry, Disgust}

var indexByLabel = func() map[Label]int {
	m := make(map[Label]int, len(Order))
	for i, l := range Order {
		m[l] = i
	}
	return m
}()

// Size returns the number of canonical labels.
func Size() int {
	return len(Order)
}

// MaxDistance is the largest possible ordinal distance between two labels.
func MaxDistance() int {
	return len(Order) - 1
}

// Normalize maps raw classifier output to a canonical label. Matching is
// case-insensitive; anything unrecognized becomes Neutral so classification
// noise never aborts the pipeline.
func Normalize(raw string) Label {
	l := Label(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := indexByLabel[l]; ok {
		return l
	}
	return Neutral
}

// IndexOf returns the taxonomy index of a label. Unrecognized labels map to
// the index of Neutral (0) rather than failing.
func IndexOf(l Label) int {
	if i, ok := indexByLabel[l]; ok {
		return i
	}
	return indexByLabel[Neutral]
}

// Distance returns the absolute ordinal distance between two labels,
// in [0, MaxDistance()]. It is symmetric and zero on equal labels.
func Distance(a, b Label) int {
	d := IndexOf(a) - IndexOf(b)
	if d < 0 {
		d = -d
	}
	return d
}
