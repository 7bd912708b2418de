package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// CatalogURL is the CelesTrak endpoint with all active satellites in TLE format.
	CatalogURL = "https://celestrak.org/NORAD/elements/gp.php?GROUP=active&FORMAT=tle"

	CatalogUserAgent = "Mozilla/5.0 (compatible; BrowserGator/1.0; Satellite-Tracker)"
	CatalogTimeout   = 30 * time.Second

	CatalogFile = "fullcatalog.txt"
	BackupFile  = "fullcatalog_backup.txt"

	// ViewerURL is the page of the local server that renders the catalog.
	ViewerURL = "http://localhost:8000/index_daynight.html"
)

// UpdaterConfig is a struct for the catalog updater config.
type UpdaterConfig struct {
	URL         string        `validate:"required,url,startswith=http"`
	UserAgent   string        `validate:"required"`
	Timeout     time.Duration `validate:"gt=0"`
	CatalogPath string        `validate:"required"`
	BackupPath  string        `validate:"required,nefield=CatalogPath"`
	ViewerURL   string
}

// DefaultUpdaterConfig returns the fixed configuration of the updater.
// Files are resolved against the working directory.
func DefaultUpdaterConfig() *UpdaterConfig {
	return &UpdaterConfig{
		URL:         CatalogURL,
		UserAgent:   CatalogUserAgent,
		Timeout:     CatalogTimeout,
		CatalogPath: CatalogFile,
		BackupPath:  BackupFile,
		ViewerURL:   ViewerURL,
	}
}

// Validate checks the config with the given validator.
func (c *UpdaterConfig) Validate(v *validator.Validate) error {
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid updater config: %w", err)
	}
	return nil
}
