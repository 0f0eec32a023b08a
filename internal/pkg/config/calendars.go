package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

// calendarsFile is the layout of CALENDARS_FILE:
//
//	[[calendar]]
//	place_id = "93"
//	calendar_id = "12"
type calendarsFile struct {
	Calendars []struct {
		PlaceID    string `toml:"place_id"`
		CalendarID string `toml:"calendar_id"`
	} `toml:"calendar"`
}

// LoadCalendars reads the pairs listed in a calendars file. Duplicates are
// dropped; an invalid pair fails the whole file.
func LoadCalendars(path string) ([]domain.CalendarKey, error) {
	var file calendarsFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("config: read calendars file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: unknown keys in %s: %v", path, undecoded)
	}

	seen := make(map[domain.CalendarKey]bool, len(file.Calendars))
	keys := make([]domain.CalendarKey, 0, len(file.Calendars))
	for i, c := range file.Calendars {
		key := domain.CalendarKey{PlaceID: c.PlaceID, CalendarID: c.CalendarID}
		if err := key.Validate(); err != nil {
			return nil, fmt.Errorf("config: calendar #%d in %s: %w", i+1, path, err)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys, nil
}
