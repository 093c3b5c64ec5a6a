package draft

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/uniexp/uniexp-admin-backend/internal/validation"
)

// FieldSet is a set of top-level field names, kept in canonical field order
type FieldSet []string

// Has reports whether name is in the set
func (s FieldSet) Has(name string) bool {
	for _, f := range s {
		if f == name {
			return true
		}
	}
	return false
}

// Empty reports whether the set has no fields
func (s FieldSet) Empty() bool { return len(s) == 0 }

// Diff returns the fields whose values differ between original and current.
//
// Comparison policy per field:
//   - dates compare by instant
//   - capacity compares numerically, so 5 and "5" are equal
//   - yearsRestricted compares as a set, order ignored
//   - images compare by position; any reordered, replaced, added or removed
//     image is a change
//   - quests compare definition by definition in persistence order
func Diff(original, current EventDraft) FieldSet {
	var out FieldSet
	add := func(name string, changed bool) {
		if changed {
			out = append(out, name)
		}
	}

	add(FieldEventName, original.EventName != current.EventName)
	add(FieldEventDescription, original.EventDescription != current.EventDescription)
	add(FieldCategory, original.Category != current.Category)
	add(FieldEventStartDateTime, !sameInstant(original.EventStartDateTime, current.EventStartDateTime))
	add(FieldEventEndDateTime, !sameInstant(original.EventEndDateTime, current.EventEndDateTime))
	add(FieldRegistrationClosingDate, !sameInstant(original.RegistrationClosingDate, current.RegistrationClosingDate))
	add(FieldLocationName, original.LocationName != current.LocationName)
	add(FieldPinpoint, !samePinpoint(original, current))
	add(FieldRequiresCapacity, original.RequiresCapacity != current.RequiresCapacity)
	add(FieldCapacity, !sameCapacity(original.Capacity, current.Capacity))
	add(FieldIsFacultyRestrict, original.IsFacultyRestrict != current.IsFacultyRestrict)
	add(FieldIsYearRestrict, original.IsYearRestrict != current.IsYearRestrict)
	add(FieldYearsRestricted, !sameYears(original.YearsRestricted, current.YearsRestricted))
	add(FieldPaymentProofRequired, original.PaymentProofRequired != current.PaymentProofRequired)
	add(FieldImages, !sameSequence(original.Images, current.Images))
	add(FieldStatus, original.Status != current.Status)
	add(FieldQuests, !original.Quests.Equal(current.Quests))
	return out
}

func sameInstant(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() == b.IsZero()
	}
	return a.Equal(b)
}

func samePinpoint(a, b EventDraft) bool {
	if a.Pinpoint == nil || b.Pinpoint == nil {
		return a.Pinpoint == nil && b.Pinpoint == nil
	}
	return *a.Pinpoint == *b.Pinpoint
}

func sameCapacity(a, b any) bool {
	if validation.Blank(a) || validation.Blank(b) {
		return validation.Blank(a) == validation.Blank(b)
	}
	na, errA := validation.Int(a)
	nb, errB := validation.Int(b)
	if errA == nil && errB == nil {
		return na == nb
	}
	if errA == nil || errB == nil {
		return false
	}
	return strings.TrimSpace(fmt.Sprint(a)) == strings.TrimSpace(fmt.Sprint(b))
}

func sameYears(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]int(nil), a...)
	sb := append([]int(nil), b...)
	sort.Ints(sa)
	sort.Ints(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func sameSequence(a, b []string) bool {
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
