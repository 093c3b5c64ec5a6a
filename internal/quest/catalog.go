// Package quest defines the five quest kinds an event can carry, their
// schema descriptors, validation of candidate quests and the per-event quest set.
package quest

import (
	"errors"
	"fmt"
)

// Kind tags a quest definition
type Kind string

const (
	KindAttendance Kind = "attendance"
	KindEarlyBird  Kind = "earlyBird"
	KindQnA        Kind = "q&a"
	KindNetworking Kind = "networking"
	KindFeedback   Kind = "feedback"
)

// ErrUnknownQuestKind is returned for any kind outside the catalog
var ErrUnknownQuestKind = errors.New("unknown quest kind")

// Field names used in quest forms and records
const (
	FieldQuestName       = "questName"
	FieldDescription     = "description"
	FieldDiamondsRewards = "diamondsRewards"
	FieldPointsRewards   = "pointsRewards"
	FieldCompletionNum   = "completionNum"
	FieldMaxEarlyBird    = "maxEarlyBird"
	FieldQuestion        = "question"
	FieldCorrectAnswer   = "correctAnswer"
)

// Descriptor is the schema of one quest kind
type Descriptor struct {
	Kind               Kind     `json:"kind"`
	DefaultName        string   `json:"defaultName"`
	DefaultDescription string   `json:"defaultDescription"`
	Fields             []string `json:"fields"`
	Editable           bool     `json:"editable"`
	Removable          bool     `json:"removable"`
	// Multiple kinds may appear any number of times in a set; the rest at most once.
	Multiple bool `json:"multiple"`
	// FixedCompletionNum, when non-zero, overrides any caller-supplied completionNum.
	FixedCompletionNum int `json:"fixedCompletionNum,omitempty"`
	DefaultDiamonds    int `json:"defaultDiamonds,omitempty"`
	DefaultPoints      int `json:"defaultPoints,omitempty"`
}

var commonFields = []string{FieldQuestName, FieldDescription, FieldDiamondsRewards, FieldPointsRewards}

var catalog = map[Kind]Descriptor{
	KindAttendance: {
		Kind:               KindAttendance,
		DefaultName:        "Attendance",
		DefaultDescription: "Check in at the event to collect your rewards.",
		Fields:             commonFields,
		FixedCompletionNum: 1,
		DefaultDiamonds:    10,
		DefaultPoints:      50,
	},
	KindEarlyBird: {
		Kind:               KindEarlyBird,
		DefaultName:        "Early Bird",
		DefaultDescription: "Be one of the first attendees to check in.",
		Fields:             append(append([]string{}, commonFields...), FieldMaxEarlyBird),
		Editable:           true,
		Removable:          true,
	},
	KindQnA: {
		Kind:               KindQnA,
		DefaultName:        "Q&A",
		DefaultDescription: "Answer the question correctly during the event.",
		Fields:             append(append([]string{}, commonFields...), FieldQuestion, FieldCorrectAnswer),
		Editable:           true,
		Removable:          true,
		Multiple:           true,
	},
	KindNetworking: {
		Kind:               KindNetworking,
		DefaultName:        "Networking",
		DefaultDescription: "Connect with other attendees at the event.",
		Fields:             append(append([]string{}, commonFields...), FieldCompletionNum),
		Editable:           true,
		Removable:          true,
	},
	KindFeedback: {
		Kind:               KindFeedback,
		DefaultName:        "Feedback",
		DefaultDescription: "Share your feedback after the event.",
		Fields:             commonFields,
		FixedCompletionNum: 1,
		DefaultDiamonds:    5,
		DefaultPoints:      20,
	},
}

var kindOrder = []Kind{KindAttendance, KindEarlyBird, KindQnA, KindNetworking, KindFeedback}

// Describe returns the descriptor of kind
func Describe(kind Kind) (Descriptor, error) {
	d, ok := catalog[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownQuestKind, string(kind))
	}
	d.Fields = append([]string(nil), d.Fields...)
	return d, nil
}

// ParseKind converts raw input to a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := catalog[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuestKind, s)
	}
	return k, nil
}

// Kinds lists every kind in persistence order
func Kinds() []Kind {
	return append([]Kind(nil), kindOrder...)
}
