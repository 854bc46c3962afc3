// Package guest implements the invitation lifecycle on top of the guest
// store: creating invitations, tracking views, recording RSVPs and admin
// edits. Every operation is a single load-modify-save through the store.
package guest

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/models"
)

// Store is the persistence the manager needs. *storage.GuestStore satisfies it.
type Store interface {
	Load() *models.GuestBook
	Update(fn func(book *models.GuestBook) error) error
}

// Manager applies lifecycle operations to guest records.
type Manager struct {
	store   Store
	log     zerolog.Logger
	now     func() time.Time
	newCode func() string
}

// Option customizes a Manager
type Option func(*Manager)

// WithClock overrides the time source used for first-view timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithCodeGenerator overrides guest code generation.
func WithCodeGenerator(gen func() string) Option {
	return func(m *Manager) { m.newCode = gen }
}

// NewManager creates a manager over store
func NewManager(store Store, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		log:     log.With().Str("component", "guests").Logger(),
		now:     time.Now,
		newCode: NewCode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewCode returns an 8 character hex code taken from a random UUID.
func NewCode() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

// Created describes the outcome of CreateOrUpdate
type Created struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Ceremony bool   `json:"ceremony"`
	Updated  bool   `json:"updated"`
}

// GuestView is what the invitation page needs to render a guest.
type GuestView struct {
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Ceremony  bool         `json:"ceremony"`
	RSVP      *models.RSVP `json:"rsvp,omitempty"`
	ViewCount int          `json:"view_count"`
}

// CreateOrUpdate adds an invitation for name. If a guest with exactly this
// name already exists, only its ceremony flag is changed and Updated is set.
func (m *Manager) CreateOrUpdate(name string, ceremony bool) (Created, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Created{}, models.NewValidationError("name", "guest name is required")
	}

	var result Created
	err := m.store.Update(func(book *models.GuestBook) error {
		if code, ok := book.FindByName(name); ok {
			rec, _ := book.Get(code)
			rec.Ceremony = ceremony
			book.Set(code, rec)
			result = Created{Code: code, Name: name, Ceremony: ceremony, Updated: true}
			return nil
		}

		code := m.newCode()
		for book.Has(code) {
			code = m.newCode()
		}
		book.Set(code, models.GuestRecord{Name: name, Ceremony: ceremony})
		result = Created{Code: code, Name: name, Ceremony: ceremony}
		return nil
	})
	if err != nil {
		return Created{}, err
	}

	m.log.Info().Str("code", result.Code).Str("name", name).Bool("updated", result.Updated).Msg("Guest saved")
	return result, nil
}

// RecordView counts a visit to the guest's invitation page and stamps the
// first visit.
func (m *Manager) RecordView(code string) (GuestView, error) {
	var view GuestView
	err := m.store.Update(func(book *models.GuestBook) error {
		rec, ok := book.Get(code)
		if !ok {
			return &models.NotFoundError{Code: code}
		}
		if rec.FirstViewedAt == nil {
			now := m.now()
			rec.FirstViewedAt = &now
		}
		rec.ViewCount++
		book.Set(code, rec)

		view = GuestView{
			Code:      code,
			Name:      rec.Name,
			Ceremony:  rec.Ceremony,
			RSVP:      rec.RSVP,
			ViewCount: rec.ViewCount,
		}
		return nil
	})
	if err != nil {
		return GuestView{}, err
	}
	return view, nil
}

// SubmitRSVP replaces the guest's response. isAttending must be set; when
// attending, guestCount must be between 1 and MaxPartySize. A declining
// guest is stored with a count of zero.
func (m *Manager) SubmitRSVP(code string, isAttending *bool, guestCount int) (models.RSVP, error) {
	if isAttending == nil {
		return models.RSVP{}, models.NewValidationError("is_attending", "attendance must be specified")
	}
	rsvp := models.RSVP{IsAttending: *isAttending}
	if rsvp.IsAttending {
		if guestCount < 1 || guestCount > models.MaxPartySize {
			return models.RSVP{}, models.NewValidationError("guest_count", "must be between 1 and %d", models.MaxPartySize)
		}
		rsvp.GuestCount = guestCount
	}

	err := m.store.Update(func(book *models.GuestBook) error {
		rec, ok := book.Get(code)
		if !ok {
			return &models.NotFoundError{Code: code}
		}
		stored := rsvp
		rec.RSVP = &stored
		book.Set(code, rec)
		return nil
	})
	if err != nil {
		return models.RSVP{}, err
	}

	m.log.Info().Str("code", code).Bool("attending", rsvp.IsAttending).Int("guest_count", rsvp.GuestCount).Msg("RSVP recorded")
	return rsvp, nil
}

// EditGuest applies a rename and a ceremony change in one save. Nil fields
// are left alone. An invalid name rejects the whole edit.
func (m *Manager) EditGuest(code string, name *string, ceremony *bool) error {
	var newName string
	if name != nil {
		newName = strings.TrimSpace(*name)
		if newName == "" {
			return models.NewValidationError("name", "guest name is required")
		}
	}
	return m.modify(code, func(rec *models.GuestRecord) {
		if name != nil {
			rec.Name = newName
		}
		if ceremony != nil {
			rec.Ceremony = *ceremony
		}
	})
}

// RenameGuest changes the display name. Uniqueness against other guests is
// not enforced.
func (m *Manager) RenameGuest(code, newName string) error {
	return m.EditGuest(code, &newName, nil)
}

// SetCeremony changes whether the guest is invited to the ceremony.
func (m *Manager) SetCeremony(code string, ceremony bool) error {
	return m.EditGuest(code, nil, &ceremony)
}

// AttachPhone records the number an invitation was delivered to.
func (m *Manager) AttachPhone(code, phone string) error {
	return m.modify(code, func(rec *models.GuestRecord) {
		rec.Phone = phone
	})
}

// DeleteGuest removes the guest entirely.
func (m *Manager) DeleteGuest(code string) error {
	err := m.store.Update(func(book *models.GuestBook) error {
		if !book.Delete(code) {
			return &models.NotFoundError{Code: code}
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.log.Info().Str("code", code).Msg("Guest deleted")
	return nil
}

func (m *Manager) modify(code string, fn func(rec *models.GuestRecord)) error {
	return m.store.Update(func(book *models.GuestBook) error {
		rec, ok := book.Get(code)
		if !ok {
			return &models.NotFoundError{Code: code}
		}
		fn(&rec)
		book.Set(code, rec)
		return nil
	})
}

// Get returns a single guest without counting a view.
func (m *Manager) Get(code string) (models.Guest, error) {
	rec, ok := m.store.Load().Get(code)
	if !ok {
		return models.Guest{}, &models.NotFoundError{Code: code}
	}
	return models.Guest{Code: code, GuestRecord: rec, State: rec.State()}, nil
}

// FindByPhone returns the guest an invitation was delivered to over phone.
func (m *Manager) FindByPhone(phone string) (models.Guest, bool) {
	book := m.store.Load()
	code, ok := book.FindByPhone(phone)
	if !ok {
		return models.Guest{}, false
	}
	rec, _ := book.Get(code)
	return models.Guest{Code: code, GuestRecord: rec, State: rec.State()}, true
}
