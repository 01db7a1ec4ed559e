package service

import "strings"

type LeadRequest struct {
	Name     string `json:"name"`
	Business string `json:"business"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// AttendeeRequest is the per-event registration form; same fields as a lead.
type AttendeeRequest LeadRequest

type EventRequest struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	TimeZone    string `json:"timeZone"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Capacity    int    `json:"capacity"`
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
