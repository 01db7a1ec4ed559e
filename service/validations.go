package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// all input validations will be added here.

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^[+]?[(]?[0-9]{3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}$`)
)

// ValidationError maps form field names to the message shown next to them.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

type fieldErrors map[string]string

func (f fieldErrors) required(field, value, message string) bool {
	if strings.TrimSpace(value) == "" {
		f[field] = message
		return false
	}
	return true
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func (f fieldErrors) contact(name, business, email, phone string) {
	f.required("name", name, "Name is required")
	f.required("business", business, "Business name is required")
	if f.required("email", email, "Email is required") && !emailPattern.MatchString(email) {
		f["email"] = "Please enter a valid email"
	}
	f.required("phone", phone, "Phone number is required")
}

// ValidateLeadRequest checks the public application form.
func ValidateLeadRequest(req *LeadRequest) error {
	errs := fieldErrors{}
	errs.contact(req.Name, req.Business, req.Email, req.Phone)
	if _, bad := errs["phone"]; !bad && !phonePattern.MatchString(strings.TrimSpace(req.Phone)) {
		errs["phone"] = "Please enter a valid phone number"
	}
	return errs.err()
}

// ValidateAttendeeRequest checks an event registration; the phone number is
// required but its format is not.
func ValidateAttendeeRequest(req *AttendeeRequest) error {
	errs := fieldErrors{}
	errs.contact(req.Name, req.Business, req.Email, req.Phone)
	return errs.err()
}

func ValidateEventRequest(req *EventRequest) error {
	errs := fieldErrors{}
	errs.required("title", req.Title, "Title is required")
	errs.required("location", req.Location, "Location is required")
	errs.required("date", req.Date, "Date is required")
	errs.required("time", req.Time, "Time is required")
	errs.required("timeZone", req.TimeZone, "Time zone is required")
	errs.required("description", req.Description, "Description is required")
	errs.required("image", req.Image, "Image URL is required")
	if req.Capacity < 1 {
		errs["capacity"] = "Capacity must be at least 1"
	}
	return errs.err()
}
