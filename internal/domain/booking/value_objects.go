package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeSlot  = errors.New("invalid time slot")
	ErrLeadTimeNotMet   = errors.New("lead time requirement not met")
	ErrInvalidPartySize = errors.New("party size must be between 1 and 20")
)

const (
	MinPartySize = 1
	MaxPartySize = 20
)

type TimeSlot struct {
	start time.Time
	end   time.Time
}

func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{start: start, end: end}, nil
}

func (ts TimeSlot) Start() time.Time {
	return ts.start
}

func (ts TimeSlot) End() time.Time {
	return ts.end
}

func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

func (ts TimeSlot) ToTstzrange() string {
	return fmt.Sprintf("[%s,%s)", ts.start.Format(time.RFC3339), ts.end.Format(time.RFC3339))
}

func (ts TimeSlot) MeetsLeadTimeAt(now time.Time, leadTimeMinutes int) bool {
	required := now.Add(time.Duration(leadTimeMinutes) * time.Minute)
	return ts.start.After(required)
}

func (ts TimeSlot) ValidateLeadTimeAt(now time.Time, leadTimeMinutes int) error {
	if !ts.MeetsLeadTimeAt(now, leadTimeMinutes) {
		return ErrLeadTimeNotMet
	}
	return nil
}

type PartySize struct {
	value int
}

func NewPartySize(value int) (PartySize, error) {
	if value < MinPartySize || value > MaxPartySize {
		return PartySize{}, ErrInvalidPartySize
	}
	return PartySize{value: value}, nil
}

func (p PartySize) Value() int {
	return p.value
}

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: value}
}

func (n Note) String() string {
	return n.value
}

func (n Note) IsEmpty() bool {
	return n.value == ""
}
