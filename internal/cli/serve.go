package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quizdesk/quizdesk/internal/backend"
	"github.com/quizdesk/quizdesk/internal/config"
	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/gateway"
	"github.com/quizdesk/quizdesk/internal/kv"
	"github.com/quizdesk/quizdesk/internal/logging"
	"github.com/quizdesk/quizdesk/internal/queue"
	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/session"
	syncx "github.com/quizdesk/quizdesk/internal/sync"
)

func newServeCmd(configPath, addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the simulated backend and the sync coordinator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, *addr, cmd.Flags().Changed("addr"))
		},
	}
}

// effectiveAddr resolves the listen address with flag > file > env
// precedence. The flag carries an env-derived default, so only an
// explicitly set flag overrides the config.
func effectiveAddr(cfg config.Config, flagValue string, flagSet bool) string {
	if flagSet {
		return flagValue
	}
	return cfg.HTTPAddr
}

func runServe(parent context.Context, configPath, addrFlag string, addrSet bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.HTTPAddr = effectiveAddr(cfg, addrFlag, addrSet)

	log := logging.New(cfg.LogLevel, cfg.LogFile)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	store := kv.NewSQLStore(dbh, kv.Schema)
	q := queue.New(store)
	sess := session.New(store)

	// Simulated backend, seeded from the local store's published quizzes.
	state := backend.NewState()
	seedDemoUsers(state, log)
	published, err := quiz.PublishedQuizzes(ctx, store)
	if err != nil {
		log.Warn("load published quizzes", zap.Error(err))
	}
	for _, pub := range published {
		state.PutQuiz(pub)
	}

	auth := backend.NewAuthService(cfg.AuthHMACSecret)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: backend.NewRouter(state, auth, cfg.CORSOrigins, log),
	}
	go func() {
		log.Info("backend listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("backend server", zap.Error(err))
			stop()
		}
	}()

	gw := gateway.NewHTTPGateway(baseURL(cfg.HTTPAddr), 10*time.Second)
	gw.Token = sess.Token

	coord := syncx.NewCoordinator(q, gw, log)
	coord.RetryFailed = cfg.SyncRetryFailed
	triggers := syncx.NewNotifier(gw, cfg.SyncProbeInterval, log).Watch(ctx)
	go coord.Run(ctx, triggers)

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

func loadConfig(path string) (config.Config, error) {
	cfg := config.FromEnv()
	if path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://127.0.0.1" + addr
	}
	return "http://" + addr
}

// seedDemoUsers keeps the simulated backend usable out of the box.
func seedDemoUsers(state *backend.State, log *zap.Logger) {
	demo := []struct{ email, name, role, pass string }{
		{"instructor@quizdesk.local", "Demo Instructor", "instructor", "instructor"},
		{"student@quizdesk.local", "Demo Student", "student", "student"},
	}
	for _, u := range demo {
		if err := state.AddUser(u.email, u.name, u.role, u.pass); err != nil {
			log.Warn("seed user", zap.String("email", u.email), zap.Error(err))
		}
	}
}
