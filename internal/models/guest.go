package models

import "time"

// MaxPartySize is the largest number of attendees a single invitation may confirm.
const MaxPartySize = 5

// GuestRecord represents a single invitation as stored in guests.json.
// The guest code is the key of the enclosing GuestBook and is not repeated here.
type GuestRecord struct {
	Name          string     `json:"name"`
	Ceremony      bool       `json:"ceremony"`
	FirstViewedAt *time.Time `json:"first_viewed_at,omitempty"`
	ViewCount     int        `json:"view_count"`
	RSVP          *RSVP      `json:"rsvp,omitempty"`
	Phone         string     `json:"phone,omitempty"`
}

// RSVP is the guest's attendance response. GuestCount is zero unless attending.
type RSVP struct {
	IsAttending bool `json:"is_attending"`
	GuestCount  int  `json:"guest_count"`
}

// GuestState is the lifecycle position of an invitation
type GuestState string

const (
	StateInvited      GuestState = "invited"
	StateViewed       GuestState = "viewed"
	StateAttending    GuestState = "attending"
	StateNotAttending GuestState = "not_attending"
)

// State derives the lifecycle state from the record's fields. A response
// outranks a view, and a view is never undone.
func (g GuestRecord) State() GuestState {
	switch {
	case g.RSVP != nil && g.RSVP.IsAttending:
		return StateAttending
	case g.RSVP != nil:
		return StateNotAttending
	case g.ViewCount > 0 || g.FirstViewedAt != nil:
		return StateViewed
	default:
		return StateInvited
	}
}

// Responded reports whether the guest has submitted an RSVP.
func (g GuestRecord) Responded() bool {
	return g.RSVP != nil
}

// Guest pairs a record with its code, for callers that need both.
type Guest struct {
	Code string `json:"code"`
	GuestRecord
	State GuestState `json:"state"`
}
