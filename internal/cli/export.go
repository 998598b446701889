package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/export"
	"github.com/quizdesk/quizdesk/internal/kv"
	"github.com/quizdesk/quizdesk/internal/queue"
)

func newExportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write all local submissions to a CSV in the export directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), *configPath)
		},
	}
}

func runExport(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	subs, err := queue.New(kv.NewSQLStore(dbh, kv.Schema)).All(ctx)
	if err != nil {
		return err
	}

	dir, err := export.NewDir(cfg.ExportDir)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("submissions-%s.csv", time.Now().Format("20060102-150405"))
	path, err := dir.Save(name, subs)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d submissions to %s\n", len(subs), path)
	return nil
}
