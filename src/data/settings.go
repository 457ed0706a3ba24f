package data

import (
	"sync"

	"gorm.io/gorm"
)

// Setting is a configuration override stored in the database.
type Setting struct {
	ID     uint8  `gorm:"primaryKey"`
	Name   string `gorm:"size:32;not null"`
	Value  string `gorm:"type:text;not null"`
	Active uint8  `gorm:"not null"`
}

var (
	settingsCache map[string]string
	settingsMu    sync.RWMutex
)

// LoadSettings loads all active settings from the database into cache.
func LoadSettings(db *gorm.DB) error {
	var settings []Setting
	if err := db.Where("active = ?", 1).Find(&settings).Error; err != nil {
		return err
	}

	settingsMu.Lock()
	defer settingsMu.Unlock()

	settingsCache = make(map[string]string, len(settings))
	for _, s := range settings {
		settingsCache[s.Name] = s.Value
	}

	return nil
}

// GetSetting retrieves a setting value from cache (call LoadSettings first)
func GetSetting(name string) string {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settingsCache[name]
}

// SetSettingsForTest replaces the cache without a database.
func SetSettingsForTest(values map[string]string) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settingsCache = values
}
