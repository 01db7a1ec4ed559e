package models

import "time"

// AttendeeTimeLayout is the ISO-8601 layout attendee timestamps are written in.
const AttendeeTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// AttendeeModel is a lead-shaped registration embedded in an event.
// CreatedAt is stamped by the registering client, not the store.
type AttendeeModel struct {
	Name      string `bson:"name" json:"name"`
	Business  string `bson:"business" json:"business"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone" json:"phone"`
	CreatedAt string `bson:"createdAt" json:"createdAt"`
}

type EventModel struct {
	EventId     string          `bson:"_id" json:"id"`
	Title       string          `bson:"title" json:"title"`
	Location    string          `bson:"location" json:"location"`
	Date        string          `bson:"date" json:"date"`
	Time        string          `bson:"time" json:"time"`
	TimeZone    string          `bson:"timeZone" json:"timeZone"`
	Description string          `bson:"description" json:"description"`
	Image       string          `bson:"image" json:"image"`
	Capacity    int             `bson:"capacity" json:"capacity"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	Attendees   []AttendeeModel `bson:"attendees" json:"attendees"`
}

func (m EventModel) Id() string {
	return m.EventId
}

func (m EventModel) CreatedOn() time.Time {
	return m.CreatedAt
}

// SpotsLeft is display-only; registrations past capacity are accepted.
func (m EventModel) SpotsLeft() int {
	return m.Capacity - len(m.Attendees)
}
