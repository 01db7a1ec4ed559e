package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kotlang/summitGo/models"
)

type DateFilter string

const (
	AllDates  DateFilter = "all"
	Today     DateFilter = "today"
	ThisWeek  DateFilter = "thisWeek"
	ThisMonth DateFilter = "thisMonth"
)

// ParseDateFilter accepts the query values used by the admin board. An empty
// value means AllDates.
func ParseDateFilter(value string) (DateFilter, error) {
	switch f := DateFilter(value); f {
	case "":
		return AllDates, nil
	case AllDates, Today, ThisWeek, ThisMonth:
		return f, nil
	default:
		return "", fmt.Errorf("unknown date filter %q", value)
	}
}

// InDateRange reports whether ts falls in the range f names, measured in the
// location of now. Weeks start on Sunday. A zero ts is never in range.
func InDateRange(ts time.Time, f DateFilter, now time.Time) bool {
	if ts.IsZero() {
		return false
	}

	ts = ts.In(now.Location())
	switch f {
	case Today:
		return sameDay(ts, now)
	case ThisWeek:
		startOfWeek := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
		return !ts.Before(startOfWeek)
	case ThisMonth:
		return ts.Year() == now.Year() && ts.Month() == now.Month()
	default:
		return true
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// matchesSearch is a case-insensitive substring match over any of fields.
func matchesSearch(term string, fields ...string) bool {
	term = strings.ToLower(term)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// FilterLeads keeps the leads whose name, business or email contains search
// and whose createdAt falls in the date range. Order is preserved.
func FilterLeads(leads []models.LeadModel, search string, f DateFilter, now time.Time) []models.LeadModel {
	filtered := []models.LeadModel{}
	for _, lead := range leads {
		if !matchesSearch(search, lead.Name, lead.Business, lead.Email) {
			continue
		}
		if !InDateRange(lead.CreatedAt, f, now) {
			continue
		}
		filtered = append(filtered, lead)
	}
	return filtered
}

// FilterEvents keeps the events whose title, location or description contains
// search. Order is preserved.
func FilterEvents(events []models.EventModel, search string) []models.EventModel {
	filtered := []models.EventModel{}
	for _, event := range events {
		if matchesSearch(search, event.Title, event.Location, event.Description) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
