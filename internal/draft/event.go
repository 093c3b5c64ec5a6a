// Package draft holds an event being authored or edited: the mutable
// current state, the last persisted snapshot it is diffed against, field
// mutators with their cascade rules, and whole-draft validation.
package draft

import (
	"time"

	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/quest"
)

// Field names, shared by error maps, change-sets and store payloads
const (
	FieldEventName               = "eventName"
	FieldEventDescription        = "eventDescription"
	FieldCategory                = "category"
	FieldEventStartDateTime      = "eventStartDateTime"
	FieldEventEndDateTime        = "eventEndDateTime"
	FieldRegistrationClosingDate = "registrationClosingDate"
	FieldLocationName            = "locationName"
	FieldPinpoint                = "pinpoint"
	FieldRequiresCapacity        = "requiresCapacity"
	FieldCapacity                = "capacity"
	FieldIsFacultyRestrict       = "isFacultyRestrict"
	FieldIsYearRestrict          = "isYearRestrict"
	FieldYearsRestricted         = "yearsRestricted"
	FieldPaymentProofRequired    = "paymentProofRequired"
	FieldImages                  = "images"
	FieldStatus                  = "status"
	FieldQuests                  = "quests"
)

// Fields lists every top-level field in canonical order
var Fields = []string{
	FieldEventName,
	FieldEventDescription,
	FieldCategory,
	FieldEventStartDateTime,
	FieldEventEndDateTime,
	FieldRegistrationClosingDate,
	FieldLocationName,
	FieldPinpoint,
	FieldRequiresCapacity,
	FieldCapacity,
	FieldIsFacultyRestrict,
	FieldIsYearRestrict,
	FieldYearsRestricted,
	FieldPaymentProofRequired,
	FieldImages,
	FieldStatus,
	FieldQuests,
}

const (
	// MaxImages caps the poster sequence; the first image is the thumbnail
	MaxImages = 4
	// LeadTime separates start from end, and registration close from start
	LeadTime = time.Hour
)

// EventDraft is the full state of an event under authoring
type EventDraft struct {
	EventName               string             `json:"eventName"`
	EventDescription        string             `json:"eventDescription"`
	Category                models.Category    `json:"category"`
	EventStartDateTime      time.Time          `json:"eventStartDateTime"`
	EventEndDateTime        time.Time          `json:"eventEndDateTime"`
	RegistrationClosingDate time.Time          `json:"registrationClosingDate"`
	LocationName            string             `json:"locationName"`
	Pinpoint                *models.GeoPoint   `json:"pinpoint,omitempty"`
	RequiresCapacity        bool               `json:"requiresCapacity"`
	// Capacity keeps the raw form value; it is coerced to a number when
	// validated, compared or persisted.
	Capacity                any                `json:"capacity,omitempty"`
	IsFacultyRestrict       bool               `json:"isFacultyRestrict"`
	IsYearRestrict          bool               `json:"isYearRestrict"`
	YearsRestricted         []int              `json:"yearsRestricted"`
	PaymentProofRequired    bool               `json:"paymentProofRequired"`
	Images                  []string           `json:"images"`
	Status                  models.EventStatus `json:"status"`
	Quests                  quest.Set          `json:"quests"`
}

// NewEventDraft returns the empty draft of the creation flow with the
// attendance and feedback quests already in place
func NewEventDraft() EventDraft {
	return EventDraft{
		Status:          models.EventStatusScheduled,
		YearsRestricted: []int{},
		Images:          []string{},
		Quests:          quest.NewSet(),
	}
}

// Clone deep-copies e
func (e EventDraft) Clone() EventDraft {
	c := e
	if e.Pinpoint != nil {
		p := *e.Pinpoint
		c.Pinpoint = &p
	}
	if e.YearsRestricted != nil {
		c.YearsRestricted = append([]int{}, e.YearsRestricted...)
	}
	if e.Images != nil {
		c.Images = append([]string{}, e.Images...)
	}
	c.Quests = e.Quests.Clone()
	return c
}

// ApplyStartDateChange moves the start of e and re-anchors the dependent
// dates: end becomes start+LeadTime and registration closes at
// start-LeadTime.
func ApplyStartDateChange(e EventDraft, start time.Time) EventDraft {
	out := e.Clone()
	out.EventStartDateTime = start
	out.EventEndDateTime = start.Add(LeadTime)
	out.RegistrationClosingDate = start.Add(-LeadTime)
	return out
}
