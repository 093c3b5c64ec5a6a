package quest

import (
	"errors"
	"fmt"
)

var (
	// ErrQuestExists is returned when a single-instance kind is added twice
	ErrQuestExists = errors.New("quest of this kind already exists")
	// ErrNotEditable is returned for system-generated kinds
	ErrNotEditable = errors.New("quest kind is not editable")
	// ErrNotRemovable is returned for system-generated kinds
	ErrNotRemovable = errors.New("quest kind is not removable")
	// ErrQuestNotFound is returned when the addressed quest does not exist
	ErrQuestNotFound = errors.New("quest not found")
)

// Definition is one quest attached to an event. Kind selects which of the
// kind-specific fields are meaningful.
type Definition struct {
	Kind            Kind   `json:"kind"`
	QuestName       string `json:"questName"`
	Description     string `json:"description"`
	DiamondsRewards int    `json:"diamondsRewards"`
	PointsRewards   int    `json:"pointsRewards"`
	CompletionNum   int    `json:"completionNum"`
	MaxEarlyBird    int    `json:"maxEarlyBird,omitempty"`
	Question        string `json:"question,omitempty"`
	CorrectAnswer   string `json:"correctAnswer,omitempty"`
}

func defaultDefinition(d Descriptor) Definition {
	return Definition{
		Kind:            d.Kind,
		QuestName:       d.DefaultName,
		Description:     d.DefaultDescription,
		DiamondsRewards: d.DefaultDiamonds,
		PointsRewards:   d.DefaultPoints,
		CompletionNum:   d.FixedCompletionNum,
	}
}

// Set is every quest of one event
type Set struct {
	Attendance Definition   `json:"attendance"`
	EarlyBird  *Definition  `json:"earlyBird,omitempty"`
	QnA        []Definition `json:"qna"`
	Networking *Definition  `json:"networking,omitempty"`
	Feedback   Definition   `json:"feedback"`
}

// NewSet returns a set holding only the synthesized attendance and feedback quests
func NewSet() Set {
	return Set{
		Attendance: defaultDefinition(catalog[KindAttendance]),
		QnA:        []Definition{},
		Feedback:   defaultDefinition(catalog[KindFeedback]),
	}
}

// Add attaches def. Single-instance kinds are rejected when already present.
func (s *Set) Add(def Definition) error {
	desc, err := Describe(def.Kind)
	if err != nil {
		return err
	}
	if !desc.Editable {
		return fmt.Errorf("%w: %s", ErrNotEditable, def.Kind)
	}
	switch def.Kind {
	case KindEarlyBird:
		if s.EarlyBird != nil {
			return fmt.Errorf("%w: %s", ErrQuestExists, def.Kind)
		}
		s.EarlyBird = &def
	case KindNetworking:
		if s.Networking != nil {
			return fmt.Errorf("%w: %s", ErrQuestExists, def.Kind)
		}
		s.Networking = &def
	case KindQnA:
		s.QnA = append(s.QnA, def)
	}
	return nil
}

// Replace swaps the quest at (kind, index) for def. index only matters for q&a.
func (s *Set) Replace(kind Kind, index int, def Definition) error {
	desc, err := Describe(kind)
	if err != nil {
		return err
	}
	if !desc.Editable {
		return fmt.Errorf("%w: %s", ErrNotEditable, kind)
	}
	if def.Kind != kind {
		return fmt.Errorf("cannot replace %s quest with %s quest", kind, def.Kind)
	}
	switch kind {
	case KindEarlyBird:
		if s.EarlyBird == nil {
			return fmt.Errorf("%w: %s", ErrQuestNotFound, kind)
		}
		s.EarlyBird = &def
	case KindNetworking:
		if s.Networking == nil {
			return fmt.Errorf("%w: %s", ErrQuestNotFound, kind)
		}
		s.Networking = &def
	case KindQnA:
		if index < 0 || index >= len(s.QnA) {
			return fmt.Errorf("%w: %s[%d]", ErrQuestNotFound, kind, index)
		}
		s.QnA[index] = def
	}
	return nil
}

// Remove drops the quest at (kind, index)
func (s *Set) Remove(kind Kind, index int) error {
	desc, err := Describe(kind)
	if err != nil {
		return err
	}
	if !desc.Removable {
		return fmt.Errorf("%w: %s", ErrNotRemovable, kind)
	}
	switch kind {
	case KindEarlyBird:
		if s.EarlyBird == nil {
			return fmt.Errorf("%w: %s", ErrQuestNotFound, kind)
		}
		s.EarlyBird = nil
	case KindNetworking:
		if s.Networking == nil {
			return fmt.Errorf("%w: %s", ErrQuestNotFound, kind)
		}
		s.Networking = nil
	case KindQnA:
		if index < 0 || index >= len(s.QnA) {
			return fmt.Errorf("%w: %s[%d]", ErrQuestNotFound, kind, index)
		}
		s.QnA = append(s.QnA[:index], s.QnA[index+1:]...)
	}
	return nil
}

// Ordered lists the quests in persistence order: attendance, early bird,
// q&a, networking, feedback. Kinds with a fixed completion count get it
// regardless of what the definition holds.
func (s Set) Ordered() []Definition {
	out := make([]Definition, 0, 3+len(s.QnA))
	out = append(out, s.Attendance)
	if s.EarlyBird != nil {
		out = append(out, *s.EarlyBird)
	}
	out = append(out, s.QnA...)
	if s.Networking != nil {
		out = append(out, *s.Networking)
	}
	out = append(out, s.Feedback)

	for i := range out {
		if desc, ok := catalog[out[i].Kind]; ok && desc.FixedCompletionNum > 0 {
			out[i].CompletionNum = desc.FixedCompletionNum
		}
	}
	return out
}

// Clone deep-copies the set
func (s Set) Clone() Set {
	c := Set{
		Attendance: s.Attendance,
		Feedback:   s.Feedback,
		QnA:        append([]Definition{}, s.QnA...),
	}
	if s.EarlyBird != nil {
		eb := *s.EarlyBird
		c.EarlyBird = &eb
	}
	if s.Networking != nil {
		n := *s.Networking
		c.Networking = &n
	}
	return c
}

// Equal compares two sets field by field, q&a order included
func (s Set) Equal(o Set) bool {
	a, b := s.Ordered(), o.Ordered()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FromOrdered rebuilds a set from persisted definitions. Missing attendance
// or feedback quests are synthesized.
func FromOrdered(defs []Definition) (Set, error) {
	s := NewSet()
	for _, def := range defs {
		switch def.Kind {
		case KindAttendance:
			s.Attendance = def
		case KindFeedback:
			s.Feedback = def
		case KindEarlyBird, KindNetworking, KindQnA:
			if err := s.Add(def); err != nil {
				return Set{}, err
			}
		default:
			return Set{}, fmt.Errorf("%w: %q", ErrUnknownQuestKind, string(def.Kind))
		}
	}
	return s, nil
}
