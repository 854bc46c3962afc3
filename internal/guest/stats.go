package guest

import (
	"fmt"

	"wedding-invitation/internal/models"
)

// Filter selects a subset of guests for the dashboard lists.
type Filter string

const (
	FilterAll          Filter = "all"
	FilterReplied      Filter = "replied"
	FilterAttending    Filter = "attending"
	FilterNotAttending Filter = "not_attending"
	FilterPending      Filter = "pending"
	FilterCeremony     Filter = "ceremony"
)

// ParseFilter maps a query value to a Filter. Empty means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterReplied, FilterAttending, FilterNotAttending, FilterPending, FilterCeremony:
		return f, nil
	default:
		return "", models.NewValidationError("filter", "unknown filter %q", s)
	}
}

// Match reports whether g belongs to the filtered list. The ceremony list
// only holds ceremony invitees who confirmed attendance.
func (f Filter) Match(g models.GuestRecord) bool {
	switch f {
	case FilterReplied:
		return g.Responded()
	case FilterAttending:
		return g.RSVP != nil && g.RSVP.IsAttending
	case FilterNotAttending:
		return g.RSVP != nil && !g.RSVP.IsAttending
	case FilterPending:
		return !g.Responded()
	case FilterCeremony:
		return g.Ceremony && g.RSVP != nil && g.RSVP.IsAttending
	default:
		return true
	}
}

// Stats summarizes responses across all invitations.
type Stats struct {
	Invitations       int `json:"invitations"`
	Viewed            int `json:"viewed"`
	Replied           int `json:"replied"`
	Attending         int `json:"attending"`
	NotAttending      int `json:"not_attending"`
	Pending           int `json:"pending"`
	CeremonyInvited   int `json:"ceremony_invited"`
	CeremonyAttendees int `json:"ceremony_attendees"`
	TotalAttendees    int `json:"total_attendees"`
}

// Summarize counts guests in book. Attendee totals sum guest_count over
// attending responses.
func Summarize(book *models.GuestBook) Stats {
	var s Stats
	for _, g := range book.Guests() {
		s.Invitations++
		if g.ViewCount > 0 {
			s.Viewed++
		}
		if g.Ceremony {
			s.CeremonyInvited++
		}
		switch {
		case g.RSVP == nil:
			s.Pending++
		case g.RSVP.IsAttending:
			s.Replied++
			s.Attending++
			s.TotalAttendees += g.RSVP.GuestCount
			if g.Ceremony {
				s.CeremonyAttendees += g.RSVP.GuestCount
			}
		default:
			s.Replied++
			s.NotAttending++
		}
	}
	return s
}

// List returns the guests matching filter in insertion order.
func (m *Manager) List(filter Filter) []models.Guest {
	return filterGuests(m.store.Load(), filter)
}

// Overview returns the filtered guest list and statistics from one read of
// the document.
func (m *Manager) Overview(filter Filter) ([]models.Guest, Stats) {
	book := m.store.Load()
	return filterGuests(book, filter), Summarize(book)
}

func filterGuests(book *models.GuestBook, filter Filter) []models.Guest {
	out := make([]models.Guest, 0, book.Len())
	for _, g := range book.Guests() {
		if filter.Match(g.GuestRecord) {
			out = append(out, g)
		}
	}
	return out
}

// Stats summarizes the current guest book.
func (m *Manager) Stats() Stats {
	return Summarize(m.store.Load())
}

func (s Stats) String() string {
	return fmt.Sprintf("%d invited, %d replied (%d attending, %d declined), %d attendees", s.Invitations, s.Replied, s.Attending, s.NotAttending, s.TotalAttendees)
}
