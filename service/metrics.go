package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "summit",
		Name:      "leads_created_total",
		Help:      "Leads captured through the application form.",
	})
	eventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "summit",
		Name:      "events_created_total",
		Help:      "Events created from the admin dashboard.",
	})
	attendeesRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "summit",
		Name:      "attendees_registered_total",
		Help:      "Attendee registrations appended to events.",
	})
	storeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "summit",
		Name:      "store_failures_total",
		Help:      "Record store operations that failed, by operation.",
	}, []string{"operation"})
)
