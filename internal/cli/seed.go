package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/kv"
	"github.com/quizdesk/quizdesk/internal/quiz"
)

func newSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load quiz definitions from a YAML file into the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file with quiz definitions")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.SeedFile
	}
	if file == "" {
		return fmt.Errorf("no seed file given (use --file or SEED_FILE)")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var quizzes []quiz.Quiz
	if err := yaml.Unmarshal(data, &quizzes); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()
	store := kv.NewSQLStore(dbh, kv.Schema)

	for _, q := range quizzes {
		key, err := quiz.PutQuiz(ctx, store, q)
		if err != nil {
			return err
		}
		fmt.Printf("seeded quiz %s (%q)\n", key, q.Title)
	}
	return nil
}
