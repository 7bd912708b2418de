// Command update_catalog downloads the active satellites catalog from
// CelesTrak into fullcatalog.txt, keeping the previous one in
// fullcatalog_backup.txt.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/pelageech/browsergator/catalog"
	"github.com/pelageech/browsergator/config"
)

func main() {
	console := log.New(os.Stdout)
	os.Exit(run(context.Background(), config.DefaultUpdaterConfig(), console))
}

func run(ctx context.Context, cfg *config.UpdaterConfig, console *log.Logger) int {
	if err := cfg.Validate(validator.New()); err != nil {
		console.Printf("❌ %v", err)
		return 1
	}

	u := catalog.NewUpdater(cfg, console)
	u.PrintTitle()
	if _, err := u.Run(ctx); err != nil {
		return 1
	}
	return 0
}
