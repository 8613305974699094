// Package domain defines the fitness records tracked by the service.
package domain

import (
	"strings"

	"example.com/runtracker/internal/civil"
)

// ActivityKind enumerates the supported sports.
type ActivityKind int

const (
	KindRun ActivityKind = iota
	KindBike
	KindSwim
)

var kindNames = [...]string{
	KindRun:  "Run",
	KindBike: "Bike",
	KindSwim: "Swim",
}

// ParseActivityKind matches name against the known kinds, ignoring case.
func ParseActivityKind(name string) (ActivityKind, bool) {
	name = strings.TrimSpace(name)
	for kind, known := range kindNames {
		if strings.EqualFold(name, known) {
			return ActivityKind(kind), true
		}
	}
	return 0, false
}

// Valid reports whether k is one of the defined kinds.
func (k ActivityKind) Valid() bool {
	return k >= KindRun && int(k) < len(kindNames)
}

func (k ActivityKind) String() string {
	if !k.Valid() {
		return "Unknown"
	}
	return kindNames[k]
}

// Activity is a single recorded fitness session.
type Activity struct {
	ID               int64
	UserID           int64
	Kind             ActivityKind
	DistanceInMeters float64
	Duration         civil.Span
	Date             civil.Date
	Location         string
	Notes            string
}
