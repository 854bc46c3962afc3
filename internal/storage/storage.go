package storage

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/models"
)

// GuestsFile is the name of the guest document inside the data directory.
const GuestsFile = "guests.json"

// GuestStore persists the guest book as a single JSON document.
type GuestStore struct {
	doc *document[models.GuestBook]
}

// NewGuestStore creates a store for <dataDir>/guests.json. Nothing is read
// or created until first use.
func NewGuestStore(dataDir string, policy RetryPolicy, log zerolog.Logger) *GuestStore {
	return &GuestStore{
		doc: newDocument[models.GuestBook](filepath.Join(dataDir, GuestsFile), policy, log),
	}
}

// Path returns the location of the backing document
func (s *GuestStore) Path() string {
	return s.doc.path
}

// Load returns the full guest book. A missing document is an empty book.
// If the document stays unreadable for the whole retry budget the result
// is also empty, so an empty book may mean "unavailable".
func (s *GuestStore) Load() *models.GuestBook {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()

	book, _ := s.doc.load()
	return book
}

// Save replaces the document with book.
func (s *GuestStore) Save(book *models.GuestBook) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	return s.doc.save(book)
}

// Update runs fn on the current book and saves the result, holding the
// document mutex throughout so concurrent updates in this process cannot
// lose each other's changes. Nothing is saved if fn fails.
func (s *GuestStore) Update(fn func(book *models.GuestBook) error) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	book, status := s.doc.load()
	if status == docDegraded {
		return fmt.Errorf("load %s: %w", s.doc.path, ErrUnavailable)
	}

	if err := fn(book); err != nil {
		return err
	}
	return s.doc.save(book)
}
