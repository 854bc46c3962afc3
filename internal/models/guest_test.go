package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestGuestRecord_State(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		rec  GuestRecord
		want GuestState
	}{
		{"fresh", GuestRecord{Name: "a"}, StateInvited},
		{"viewed", GuestRecord{Name: "a", ViewCount: 1, FirstViewedAt: &now}, StateViewed},
		{"attending", GuestRecord{Name: "a", ViewCount: 1, RSVP: &RSVP{IsAttending: true, GuestCount: 2}}, StateAttending},
		{"declined", GuestRecord{Name: "a", ViewCount: 4, RSVP: &RSVP{}}, StateNotAttending},
		{"responded without view", GuestRecord{Name: "a", RSVP: &RSVP{IsAttending: true, GuestCount: 1}}, StateAttending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.State(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestGuestBook_JSONKeepsOrder(t *testing.T) {
	input := `{"zz000001":{"name":"Z","ceremony":false,"view_count":0},"aa000002":{"name":"A","ceremony":true,"view_count":2}}`

	book := NewGuestBook()
	if err := json.Unmarshal([]byte(input), book); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got := book.Codes(); !reflect.DeepEqual(got, []string{"zz000001", "aa000002"}) {
		t.Errorf("unexpected order %v", got)
	}

	out, err := json.Marshal(book)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != input {
		t.Errorf("expected\n%s\ngot\n%s", input, out)
	}
}

func TestGuestBook_UnmarshalRejectsNonObject(t *testing.T) {
	book := NewGuestBook()
	if err := json.Unmarshal([]byte(`[1,2]`), book); err == nil {
		t.Error("expected error for array document")
	}
}

func TestGuestBook_UnmarshalNullAndReplace(t *testing.T) {
	book := NewGuestBook()
	book.Set("old", GuestRecord{Name: "Old"})

	if err := json.Unmarshal([]byte(`{"new":{"name":"New","ceremony":false,"view_count":0}}`), book); err != nil {
		t.Fatal(err)
	}
	if got := book.Codes(); !reflect.DeepEqual(got, []string{"new"}) {
		t.Errorf("decoding must replace existing entries, got %v", got)
	}

	if err := json.Unmarshal([]byte(`null`), book); err != nil {
		t.Fatal(err)
	}
	if book.Len() != 0 {
		t.Errorf("expected empty book from null, got %d entries", book.Len())
	}
}

func TestGuestBook_ZeroValueUsable(t *testing.T) {
	var book GuestBook
	if book.Len() != 0 || book.Has("x") {
		t.Error("zero book must be empty")
	}
	book.Set("x", GuestRecord{Name: "X"})
	out, err := json.Marshal(&book)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"x":{"name":"X","ceremony":false,"view_count":0}}` {
		t.Errorf("unexpected JSON %s", out)
	}
}

func TestGuestBook_FindByNameFirstMatch(t *testing.T) {
	book := NewGuestBook()
	book.Set("c1", GuestRecord{Name: "Dup"})
	book.Set("c2", GuestRecord{Name: "Other"})
	book.Set("c3", GuestRecord{Name: "Dup"})

	code, ok := book.FindByName("Dup")
	if !ok || code != "c1" {
		t.Errorf("expected c1, got %q (ok=%v)", code, ok)
	}
	if _, ok := book.FindByName("Missing"); ok {
		t.Error("expected no match")
	}
}

func TestGuestBook_SetKeepsPositionAndDelete(t *testing.T) {
	book := NewGuestBook()
	book.Set("c1", GuestRecord{Name: "One"})
	book.Set("c2", GuestRecord{Name: "Two"})
	book.Set("c1", GuestRecord{Name: "Uno"})

	if got := book.Codes(); !reflect.DeepEqual(got, []string{"c1", "c2"}) {
		t.Errorf("replacing must keep position, got %v", got)
	}
	if !book.Delete("c1") {
		t.Error("expected delete to report presence")
	}
	if book.Delete("c1") {
		t.Error("second delete must report absence")
	}
	if got := book.Codes(); !reflect.DeepEqual(got, []string{"c2"}) {
		t.Errorf("unexpected codes after delete %v", got)
	}
}

func TestTheme_Valid(t *testing.T) {
	for _, theme := range Themes {
		if !theme.Valid() {
			t.Errorf("%q should be valid", theme)
		}
	}
	for _, theme := range []Theme{"", "neon", "Classic"} {
		if theme.Valid() {
			t.Errorf("%q should be invalid", theme)
		}
	}
}
