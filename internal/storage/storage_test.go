package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/models"
)

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}
}

func newTestGuestStore(t *testing.T) *GuestStore {
	t.Helper()
	return NewGuestStore(t.TempDir(), testPolicy(), zerolog.Nop())
}

func sampleBook() *models.GuestBook {
	viewed := time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)
	book := models.NewGuestBook()
	book.Set("b2c3d4e5", models.GuestRecord{Name: "Zhang Wei", Ceremony: true})
	book.Set("a1b2c3d4", models.GuestRecord{
		Name:          "Li Na",
		FirstViewedAt: &viewed,
		ViewCount:     3,
		RSVP:          &models.RSVP{IsAttending: true, GuestCount: 2},
	})
	book.Set("ffee0011", models.GuestRecord{
		Name: "王芳",
		RSVP: &models.RSVP{IsAttending: false},
	})
	return book
}

func TestGuestStore_LoadMissingDocument(t *testing.T) {
	store := newTestGuestStore(t)

	book := store.Load()
	if book.Len() != 0 {
		t.Errorf("expected empty book, got %d guests", book.Len())
	}
	if _, err := os.Stat(store.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("load must not create the document, stat err = %v", err)
	}
}

func TestGuestStore_RoundTrip(t *testing.T) {
	store := newTestGuestStore(t)
	want := sampleBook()

	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := store.Load()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got.Guests(), want.Guests())
	}
}

func TestGuestStore_PreservesInsertionOrder(t *testing.T) {
	store := newTestGuestStore(t)
	if err := store.Save(sampleBook()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	first := strings.Index(text, `"b2c3d4e5"`)
	second := strings.Index(text, `"a1b2c3d4"`)
	third := strings.Index(text, `"ffee0011"`)
	if first < 0 || !(first < second && second < third) {
		t.Errorf("keys out of insertion order in document:\n%s", text)
	}
	if !strings.Contains(text, "王芳") {
		t.Errorf("expected non-ASCII names to be written unescaped:\n%s", text)
	}

	codes := store.Load().Codes()
	want := []string{"b2c3d4e5", "a1b2c3d4", "ffee0011"}
	if !reflect.DeepEqual(codes, want) {
		t.Errorf("expected codes %v, got %v", want, codes)
	}
}

func TestGuestStore_EmptyFileIsEmptyBook(t *testing.T) {
	store := newTestGuestStore(t)
	if err := os.WriteFile(store.Path(), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if n := store.Load().Len(); n != 0 {
		t.Errorf("expected empty book, got %d guests", n)
	}
}

func TestGuestStore_CorruptDocumentDegradesToEmpty(t *testing.T) {
	store := newTestGuestStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if n := store.Load().Len(); n != 0 {
		t.Errorf("expected empty book on unreadable document, got %d guests", n)
	}

	err := store.Update(func(book *models.GuestBook) error {
		book.Set("abcd1234", models.GuestRecord{Name: "Nobody"})
		return nil
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	data, _ := os.ReadFile(store.Path())
	if string(data) != "{not json" {
		t.Errorf("update after degraded read must not overwrite the document, got %q", data)
	}
}

func TestGuestStore_LoadDegradesWhileExclusivelyLocked(t *testing.T) {
	store := newTestGuestStore(t)
	if err := store.Save(sampleBook()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	lock, err := tryLock(store.Path()+".lock", true)
	if err != nil {
		t.Fatalf("failed to take lock: %v", err)
	}
	defer lock.release()

	if n := store.Load().Len(); n != 0 {
		t.Errorf("expected empty book while locked, got %d guests", n)
	}
}

func TestGuestStore_SaveFailsWhileLocked(t *testing.T) {
	store := newTestGuestStore(t)

	lock, err := tryLock(store.Path()+".lock", false)
	if err != nil {
		t.Fatalf("failed to take lock: %v", err)
	}

	start := time.Now()
	err = store.Save(sampleBook())
	lock.release()

	var fatal *StorageFatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected StorageFatalError, got %v", err)
	}
	if fatal.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", fatal.Attempts)
	}
	if !errors.Is(err, ErrTransient) {
		t.Errorf("expected cause to wrap ErrTransient, got %v", err)
	}
	// 1ms + 2ms of linear backoff between three attempts
	if elapsed := time.Since(start); elapsed < 3*time.Millisecond {
		t.Errorf("expected backoff between attempts, finished in %v", elapsed)
	}

	if err := store.Save(sampleBook()); err != nil {
		t.Errorf("Save after release failed: %v", err)
	}
}

func TestGuestStore_UpdateErrorSkipsSave(t *testing.T) {
	store := newTestGuestStore(t)
	if err := store.Save(sampleBook()); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := store.Update(func(book *models.GuestBook) error {
		book.Delete("a1b2c3d4")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if !store.Load().Has("a1b2c3d4") {
		t.Error("failed update must not be persisted")
	}
}

func TestGuestStore_UpdateCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store := NewGuestStore(dir, testPolicy(), zerolog.Nop())

	err := store.Update(func(book *models.GuestBook) error {
		book.Set("abcd1234", models.GuestRecord{Name: "Chen Jie"})
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if rec, ok := store.Load().Get("abcd1234"); !ok || rec.Name != "Chen Jie" {
		t.Errorf("expected saved guest, got %+v (found=%v)", rec, ok)
	}
}

func TestSettingsStore_LoadCreatesDefault(t *testing.T) {
	store := NewSettingsStore(t.TempDir(), testPolicy(), zerolog.Nop())

	if theme := store.Load(); theme != models.ThemeClassic {
		t.Errorf("expected classic, got %q", theme)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("expected default to be persisted: %v", err)
	}
	if !strings.Contains(string(data), `"theme": "classic"`) {
		t.Errorf("unexpected document: %s", data)
	}
}

func TestSettingsStore_SaveRejectsUnknownTheme(t *testing.T) {
	store := NewSettingsStore(t.TempDir(), testPolicy(), zerolog.Nop())

	err := store.Save("neon")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := os.Stat(store.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Error("invalid theme must not reach disk")
	}
}

func TestSettingsStore_SaveThenLoad(t *testing.T) {
	store := NewSettingsStore(t.TempDir(), testPolicy(), zerolog.Nop())

	for _, theme := range models.Themes {
		if err := store.Save(theme); err != nil {
			t.Fatalf("Save(%q) failed: %v", theme, err)
		}
		if got := store.Load(); got != theme {
			t.Errorf("expected %q, got %q", theme, got)
		}
	}
}

func TestSettingsStore_InvalidThemeOnDiskFallsBack(t *testing.T) {
	dir := t.TempDir()
	store := NewSettingsStore(dir, testPolicy(), zerolog.Nop())
	if err := os.WriteFile(store.Path(), []byte(`{"theme":"neon"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if theme := store.Load(); theme != models.DefaultTheme {
		t.Errorf("expected default theme, got %q", theme)
	}
}
