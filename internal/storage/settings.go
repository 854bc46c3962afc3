package storage

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/models"
)

// ThemeFile is the name of the settings document inside the data directory.
const ThemeFile = "theme.json"

// SettingsStore persists the selected invitation theme.
type SettingsStore struct {
	doc *document[models.ThemeSetting]
}

// NewSettingsStore creates a store for <dataDir>/theme.json
func NewSettingsStore(dataDir string, policy RetryPolicy, log zerolog.Logger) *SettingsStore {
	return &SettingsStore{
		doc: newDocument[models.ThemeSetting](filepath.Join(dataDir, ThemeFile), policy, log),
	}
}

// Path returns the location of the backing document
func (s *SettingsStore) Path() string {
	return s.doc.path
}

// Load returns the selected theme. A missing document is created with the
// default theme. An unreadable document or an unknown theme id yields the
// default without touching disk.
func (s *SettingsStore) Load() models.Theme {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	setting, status := s.doc.load()
	switch status {
	case docMissing:
		if err := s.doc.save(&models.ThemeSetting{Theme: models.DefaultTheme}); err != nil {
			s.doc.log.Error().Err(err).Msg("Failed to create default theme setting")
		}
		return models.DefaultTheme
	case docDegraded:
		return models.DefaultTheme
	}

	if !setting.Theme.Valid() {
		return models.DefaultTheme
	}
	return setting.Theme
}

// Save stores theme after checking it against the allowed set.
func (s *SettingsStore) Save(theme models.Theme) error {
	if !theme.Valid() {
		return models.NewValidationError("theme", "unknown theme %q", theme)
	}

	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	return s.doc.save(&models.ThemeSetting{Theme: theme})
}
