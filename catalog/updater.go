package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pelageech/browsergator/config"
)

// Result describes a successful update.
type Result struct {
	Satellites int
	Size       int64
	Backup     bool
	UpdatedAt  time.Time
}

// Updater downloads the catalog and rotates it on disk, printing its
// progress to the console logger.
type Updater struct {
	fetcher   *Fetcher
	store     *Store
	viewerURL string
	console   *log.Logger

	// Now returns the current time, replaced in tests.
	Now func() time.Time
}

// NewUpdater creates an Updater from the updater config.
func NewUpdater(cfg *config.UpdaterConfig, console *log.Logger) *Updater {
	u := &Updater{
		fetcher: NewFetcher(cfg),
		store: &Store{
			CatalogPath: cfg.CatalogPath,
			BackupPath:  cfg.BackupPath,
		},
		viewerURL: cfg.ViewerURL,
		console:   console,
		Now:       time.Now,
	}
	u.store.OnBackup = func(path string) {
		u.console.Printf("💾 Creating backup: %s", path)
	}
	return u
}

// PrintTitle prints the banner of the updater.
func (u *Updater) PrintTitle() {
	u.console.Print("🛰️  BrowserGator Satellite Catalog Updater")
	u.console.Print(strings.Repeat("=", 50))
}

// Run downloads the catalog, backs up the previous one and writes the new one.
// Any failure is final.
func (u *Updater) Run(ctx context.Context) (*Result, error) {
	u.console.Printf("📡 Downloading from: %s", u.fetcher.URL())
	data, err := u.fetcher.Download(ctx)
	if err != nil {
		var netErr *NetworkError
		if errors.Is(err, ErrEmptyResponse) {
			u.console.Print("✅ Successfully downloaded TLE data")
		} else if errors.As(err, &netErr) {
			u.console.Printf("❌ Network error: %v", err)
		} else {
			u.console.Printf("❌ Download failed: %v", err)
		}
		u.console.Print("❌ Failed to download TLE data")
		return nil, fmt.Errorf("download: %w", err)
	}
	u.console.Print("✅ Successfully downloaded TLE data")

	count := CountSatellites(data)
	u.console.Printf("📊 Parsed %d satellites", count)
	if count == 0 {
		u.console.Print("⚠️  Warning: No satellites found in data")
	}

	backup, err := u.store.Update(u.fetcher.URL(), data, u.Now())
	if err != nil {
		u.console.Printf("❌ Failed to update catalog: %v", err)
		return nil, fmt.Errorf("update: %w", err)
	}
	u.console.Printf("✅ Catalog updated: %s", u.store.CatalogPath)

	size, err := u.store.Size()
	if err != nil {
		u.console.Printf("❌ Failed to update catalog: %v", err)
		return nil, fmt.Errorf("stat catalog: %w", err)
	}

	res := &Result{
		Satellites: count,
		Size:       size,
		Backup:     backup,
		UpdatedAt:  u.Now().UTC(),
	}

	u.console.Printf("📦 Catalog size: %s bytes", humanize.Comma(res.Size))
	u.console.Printf("📋 Satellites: %s", humanize.Comma(int64(res.Satellites)))
	u.console.Printf("📅 Updated: %s", res.UpdatedAt.Format(TimeFormat))
	u.console.Print("")
	u.console.Print("✨ Catalog update completed successfully!")
	u.console.Printf("🌐 Use the catalog in: %s", u.viewerURL)

	return res, nil
}
