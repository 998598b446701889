package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quizdesk/quizdesk/internal/attempt"
	"github.com/quizdesk/quizdesk/internal/config"
	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/kv"
	"github.com/quizdesk/quizdesk/internal/queue"
	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/session"
)

func newTakeCmd(configPath *string) *cobra.Command {
	var quizID string
	var timeLimit int
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take a quiz interactively; the graded submission is queued locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			openCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
			if err != nil {
				return err
			}
			defer dbh.Close()
			store := kv.NewSQLStore(dbh, kv.Schema)

			return takeQuiz(cmd.Context(), store, cfg, quizID, timeLimit, os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id to take")
	cmd.Flags().IntVar(&timeLimit, "time-limit", 600, "time limit in seconds")
	return cmd
}

// takeQuiz drives one attempt over a line protocol: "questionID=answer"
// records an answer (comma-separated for multi-select), "blur" counts one
// focus-loss event, "submit" ends the attempt. EOF submits whatever was
// answered. A background ticker runs the attempt timer, so the attempt can
// also end by running out of time.
func takeQuiz(ctx context.Context, store kv.Store, cfg config.Config, quizID string, timeLimitSec int, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q, err := quiz.GetQuiz(ctx, store, quizID)
	if err != nil {
		return fmt.Errorf("load quiz %q: %w", quizID, err)
	}

	var student attempt.Student
	if u, ok := session.New(store).CurrentUser(ctx); ok {
		student = attempt.Student{ID: u.ID, Email: u.Email, Name: u.Name}
	}

	a := attempt.New(q, student, timeLimitSec, queue.New(store),
		attempt.WithMaxViolations(cfg.AttemptMaxViolations))

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				_ = a.Tick(ctx)
			}
		}
	}()

	fmt.Fprintf(out, "%s: %d questions, %ds\n", q.Title, len(q.Questions), timeLimitSec)
	for _, qq := range q.Questions {
		fmt.Fprintf(out, "  [%s] %s\n", qq.ID, qq.Prompt)
	}

	sc := bufio.NewScanner(in)
	for sc.Scan() && a.State() == attempt.StateInProgress {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case line == "submit":
			key, err := a.Submit(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "submission queued as %s\n", key)
			return nil
		case line == "blur":
			n, err := a.AddViolation(ctx)
			if err != nil {
				return err
			}
			if a.State() == attempt.StateSubmitted {
				fmt.Fprintf(out, "violation limit reached, submission queued as %s\n", a.LocalKey())
				return nil
			}
			fmt.Fprintf(out, "violation %d of %d\n", n, cfg.AttemptMaxViolations)
		default:
			id, val, ok := strings.Cut(line, "=")
			if !ok {
				fmt.Fprintf(out, "unrecognized input %q\n", line)
				continue
			}
			if err := a.RecordAnswer(strings.TrimSpace(id), parseAnswer(q, strings.TrimSpace(id), val)); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	if a.State() == attempt.StateSubmitted {
		fmt.Fprintf(out, "time is up, submission queued as %s\n", a.LocalKey())
		return nil
	}
	key, err := a.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "submission queued as %s\n", key)
	return nil
}

// parseAnswer splits multi-select answers on commas; everything else is a
// plain string.
func parseAnswer(q quiz.Quiz, questionID, val string) any {
	for _, qq := range q.Questions {
		if qq.ID == questionID && qq.Type == quiz.TypeMultiChoice {
			parts := strings.Split(val, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if s := strings.TrimSpace(p); s != "" {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return strings.TrimSpace(val)
}
