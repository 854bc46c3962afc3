package models

import (
	"bytes"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// GuestBook maps guest codes to records and remembers insertion order, so
// that the JSON document keeps the order guests were added in and lookups
// by name resolve to the earliest match.
type GuestBook struct {
	m *orderedmap.OrderedMap[string, GuestRecord]
}

// NewGuestBook returns an empty book
func NewGuestBook() *GuestBook {
	return &GuestBook{m: orderedmap.New[string, GuestRecord]()}
}

func (b *GuestBook) entries() *orderedmap.OrderedMap[string, GuestRecord] {
	if b.m == nil {
		b.m = orderedmap.New[string, GuestRecord]()
	}
	return b.m
}

// Len returns the number of guests
func (b *GuestBook) Len() int {
	return b.entries().Len()
}

// Get returns the record stored under code.
func (b *GuestBook) Get(code string) (GuestRecord, bool) {
	return b.entries().Get(code)
}

// Has reports whether code is present
func (b *GuestBook) Has(code string) bool {
	_, ok := b.entries().Get(code)
	return ok
}

// Set inserts or replaces the record under code. Replacing keeps the
// original position.
func (b *GuestBook) Set(code string, rec GuestRecord) {
	b.entries().Set(code, rec)
}

// Delete removes code and reports whether it was present.
func (b *GuestBook) Delete(code string) bool {
	_, ok := b.entries().Delete(code)
	return ok
}

// Codes returns the guest codes in insertion order.
func (b *GuestBook) Codes() []string {
	codes := make([]string, 0, b.Len())
	for pair := b.entries().Oldest(); pair != nil; pair = pair.Next() {
		codes = append(codes, pair.Key)
	}
	return codes
}

// FindByName returns the code of the first guest, in insertion order,
// whose name equals name.
func (b *GuestBook) FindByName(name string) (string, bool) {
	return b.find(func(rec GuestRecord) bool { return rec.Name == name })
}

// FindByPhone returns the code of the first guest with the given phone number.
func (b *GuestBook) FindByPhone(phone string) (string, bool) {
	if phone == "" {
		return "", false
	}
	return b.find(func(rec GuestRecord) bool { return rec.Phone == phone })
}

func (b *GuestBook) find(match func(GuestRecord) bool) (string, bool) {
	for pair := b.entries().Oldest(); pair != nil; pair = pair.Next() {
		if match(pair.Value) {
			return pair.Key, true
		}
	}
	return "", false
}

// Guests returns all entries in insertion order
func (b *GuestBook) Guests() []Guest {
	guests := make([]Guest, 0, b.Len())
	for pair := b.entries().Oldest(); pair != nil; pair = pair.Next() {
		guests = append(guests, Guest{Code: pair.Key, GuestRecord: pair.Value, State: pair.Value.State()})
	}
	return guests
}

// MarshalJSON writes the book as a JSON object keyed by code, in insertion order.
func (b *GuestBook) MarshalJSON() ([]byte, error) {
	return b.entries().MarshalJSON()
}

// UnmarshalJSON reads a JSON object keyed by code, keeping the key order.
// null yields an empty book. A duplicated key keeps its first position and
// its last value.
func (b *GuestBook) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, GuestRecord]()
	if trimmed := bytes.TrimSpace(data); !bytes.Equal(trimmed, []byte("null")) {
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return fmt.Errorf("guest book must be a JSON object")
		}
		if err := m.UnmarshalJSON(trimmed); err != nil {
			return fmt.Errorf("failed to decode guest book: %w", err)
		}
	}
	b.m = m
	return nil
}
