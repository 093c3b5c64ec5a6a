package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventStatus is the lifecycle state of an event record
type EventStatus string

const (
	EventStatusScheduled EventStatus = "Scheduled"
	EventStatusOngoing   EventStatus = "Ongoing"
	EventStatusPostponed EventStatus = "Postponed"
	EventStatusCompleted EventStatus = "Completed"
	EventStatusCancelled EventStatus = "Cancelled"
)

// Valid reports whether s is one of the known statuses
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusScheduled, EventStatusOngoing, EventStatusPostponed, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// Category is the admin-facing event category name. Records store its numeric code.
type Category string

const (
	CategoryAcademic         Category = "Academic"
	CategorySports           Category = "Sports"
	CategoryVolunteering     Category = "Volunteering"
	CategoryEntrepreneurship Category = "Entrepreneurship"
	CategoryCultural         Category = "Cultural"
	CategoryWellness         Category = "Wellness"
	CategoryOthers           Category = "Others"
)

var categoryCodes = []Category{
	CategoryAcademic,
	CategorySports,
	CategoryVolunteering,
	CategoryEntrepreneurship,
	CategoryCultural,
	CategoryWellness,
	CategoryOthers,
}

// Categories returns every category in code order
func Categories() []Category {
	out := make([]Category, len(categoryCodes))
	copy(out, categoryCodes)
	return out
}

// Code maps the category to its persisted numeric code
func (c Category) Code() (int, error) {
	for i, v := range categoryCodes {
		if v == c {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown category %q", string(c))
}

// CategoryFromCode is the inverse of Category.Code
func CategoryFromCode(code int) (Category, error) {
	if code < 0 || code >= len(categoryCodes) {
		return "", fmt.Errorf("unknown category code %d", code)
	}
	return categoryCodes[code], nil
}

// GeoPoint is a lat/lng pair picked on the map
type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Event is the persisted event record
type Event struct {
	ID                      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	EventName               string             `json:"eventName" bson:"eventName"`
	EventDescription        string             `json:"eventDescription" bson:"eventDescription"`
	Category                int                `json:"category" bson:"category"`
	EventStartDateTime      time.Time          `json:"eventStartDateTime" bson:"eventStartDateTime"`
	EventEndDateTime        time.Time          `json:"eventEndDateTime" bson:"eventEndDateTime"`
	RegistrationClosingDate time.Time          `json:"registrationClosingDate" bson:"registrationClosingDate"`
	LocationName            string             `json:"locationName" bson:"locationName"`
	Pinpoint                *GeoPoint          `json:"pinpoint,omitempty" bson:"pinpoint,omitempty"`
	RequiresCapacity        bool               `json:"requiresCapacity" bson:"requiresCapacity"`
	Capacity                *int               `json:"capacity,omitempty" bson:"capacity,omitempty"`
	IsFacultyRestrict       bool               `json:"isFacultyRestrict" bson:"isFacultyRestrict"`
	IsYearRestrict          bool               `json:"isYearRestrict" bson:"isYearRestrict"`
	YearsRestricted         []int              `json:"yearsRestricted,omitempty" bson:"yearsRestricted,omitempty"`
	PaymentProofRequired    bool               `json:"paymentProofRequired" bson:"paymentProofRequired"`
	Status                  EventStatus        `json:"status" bson:"status"`
	OrganiserID             string             `json:"organiserID" bson:"organiserID"`
	AdminID                 string             `json:"adminID" bson:"adminID"`
	CreatedAt               time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt               time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// EventImages is the images sub-record, keyed by the owning event id.
// The first image is the thumbnail.
type EventImages struct {
	EventID   primitive.ObjectID `json:"eventID" bson:"_id"`
	Images    []string           `json:"images" bson:"images"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
