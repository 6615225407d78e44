package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/config"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/daily"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/oracle"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/payment"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/session"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/store"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/words"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if cfg.UsesDefaultSecret() {
		log.Warn().Msg("JWT_SECRET not set; tokens are verified with the public development key")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// --- relational store ---
	db, err := store.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.DBDriver, err)
	}
	defer db.Close()
	log.Info().Str("driver", db.Driver()).Msg("relational store ready")

	checks := map[string]httpserver.Check{"db": db.PingContext}

	// --- ledger + session state ---
	var (
		ledger daily.Ledger
		states store.StateStore
	)
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		ledger = daily.NewRedisLedger(rdb, daily.DefaultKey)
		states = store.NewRedisStateStore(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Msg("using redis ledger and session state")
	} else {
		ledger = daily.NewMemoryLedger()
		states = store.NewMemoryStore()
		log.Warn().Msg("REDIS_URL not set; ledger and session state are in memory")
	}

	// --- words + oracle ---
	lexicon, err := words.Load(cfg.WordsAllowedFile)
	if err != nil {
		return fmt.Errorf("loading word list: %w", err)
	}
	source, err := newOracle(cfg, lexicon)
	if err != nil {
		return err
	}

	// --- payments ---
	var gateway payment.Gateway = payment.Disabled{}
	if cfg.StripeKey != "" {
		gateway, err = payment.NewStripe(payment.StripeConfig{
			SecretKey:  cfg.StripeKey,
			PriceID:    cfg.HintPriceID,
			SuccessURL: cfg.HintSuccessURL,
		})
		if err != nil {
			return fmt.Errorf("configuring stripe: %w", err)
		}
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set; hints are unavailable")
	}

	// --- metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	// --- sessions ---
	bg := session.NewBackground(cfg.BackgroundWorkers, cfg.BackgroundQueue, m)
	defer bg.Close()
	sessions := session.NewRegistry(session.Config{
		Ledger:      ledger,
		States:      states,
		Stats:       db,
		Payments:    gateway,
		Hints:       source,
		Background:  bg,
		Metrics:     m,
		IdleTimeout: cfg.SessionIdleTimeout,
	})
	// Runs before bg.Close so in-flight turns can still enqueue their stats.
	defer sessions.Close()

	// --- daily rotation ---
	rotator := daily.NewRotator(ledger, source, lexicon, cfg.RotateMaxAttempts, m)
	if cfg.RotateOnStart {
		if err := rotateIfDue(ctx, rotator); err != nil {
			return err
		}
	}
	cron, err := rotator.Schedule(ctx, cfg.RotateSchedule)
	if err != nil {
		return err
	}
	cron.Start()
	defer func() { <-cron.Stop().Done() }()

	// --- HTTP ---
	srv := httpserver.New(httpserver.Deps{
		Sessions:        sessions,
		Rotator:         rotator,
		Checks:          checks,
		Metrics:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		JWTSecret:       cfg.JWTSecret,
		JWTIssuer:       cfg.JWTIssuer,
		RotateTokenHash: cfg.RotateTokenHash,
	}).HTTPServer(":" + cfg.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("starting mcp-server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newOracle picks the language model when a key is configured and the
// embedded answers otherwise.
func newOracle(cfg *config.Config, lexicon *words.Lexicon) (oracle.Oracle, error) {
	if cfg.OpenAIKey != "" {
		o, err := oracle.NewOpenAI(oracle.Config{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring openai: %w", err)
		}
		return o, nil
	}
	log.Warn().Msg("OPENAI_API_KEY not set; using the built-in word list and structural hints")
	if lexicon.Size() > 0 {
		return oracle.NewLocal(lexicon), nil
	}
	answers, err := words.DailyAnswers()
	if err != nil {
		return nil, fmt.Errorf("loading built-in answers: %w", err)
	}
	return oracle.NewLocal(answers), nil
}

func rotateIfDue(ctx context.Context, r *daily.Rotator) error {
	due, err := r.Due(ctx)
	if err != nil {
		return fmt.Errorf("reading daily ledger: %w", err)
	}
	if !due {
		return nil
	}
	entry, _, err := r.Rotate(ctx)
	if err != nil {
		// Rotation is retried by the schedule and the admin route.
		log.Error().Err(err).Msg("startup rotation failed")
		return nil
	}
	log.Info().Str("gameId", entry.GameID).Str("date", entry.Date).Msg("published daily word")
	return nil
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
