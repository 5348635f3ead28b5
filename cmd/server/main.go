package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/eima40x4c/CampusCard/internal/audit"
	"github.com/eima40x4c/CampusCard/internal/auth"
	"github.com/eima40x4c/CampusCard/internal/blob"
	"github.com/eima40x4c/CampusCard/internal/bootstrap"
	"github.com/eima40x4c/CampusCard/internal/directory"
	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/jwttoken"
	"github.com/eima40x4c/CampusCard/internal/lifecycle"
	"github.com/eima40x4c/CampusCard/internal/moderation"
	"github.com/eima40x4c/CampusCard/internal/notify"
	"github.com/eima40x4c/CampusCard/internal/platform/config"
	"github.com/eima40x4c/CampusCard/internal/platform/httpserver"
	"github.com/eima40x4c/CampusCard/internal/platform/logger"
	"github.com/eima40x4c/CampusCard/internal/platform/metrics"
	platformpg "github.com/eima40x4c/CampusCard/internal/platform/postgres"
	platformredis "github.com/eima40x4c/CampusCard/internal/platform/redis"
	"github.com/eima40x4c/CampusCard/internal/profile"
	"github.com/eima40x4c/CampusCard/internal/signup"
	"github.com/eima40x4c/CampusCard/internal/storage"
	"github.com/eima40x4c/CampusCard/internal/storage/memory"
	storagepg "github.com/eima40x4c/CampusCard/internal/storage/postgres"
	httptransport "github.com/eima40x4c/CampusCard/internal/transport/http"
	"github.com/eima40x4c/CampusCard/internal/verification"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		log.Error("store initialization failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	m := metrics.New()

	recorder, closeRecorder := buildRecorder(ctx, cfg, log)
	defer closeRecorder()

	blobs, err := buildBlobStore(ctx, cfg)
	if err != nil {
		log.Error("blob store initialization failed", "error", err)
		os.Exit(1)
	}

	wordCache, closeCache, err := buildWordCache(cfg)
	if err != nil {
		log.Error("redis initialization failed", "error", err)
		os.Exit(1)
	}
	defer closeCache()

	notifier := notify.NewLogNotifier(log)
	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "campuscard", cfg.JWTTTL)

	moderationOpts := []moderation.Option{
		moderation.WithRecorder(recorder),
		moderation.WithMetrics(m),
		moderation.WithLogger(log),
	}
	if wordCache != nil {
		moderationOpts = append(moderationOpts, moderation.WithCache(wordCache))
	}
	moderationSvc := moderation.New(stores.bannedWords, stores.flagged, moderationOpts...)

	signupSvc := signup.New(stores.users, stores.profiles, stores.faculties, stores.departments, stores.tx,
		signup.WithBlobStore(blobs),
		signup.WithModeration(moderationSvc),
		signup.WithRecorder(recorder),
		signup.WithMetrics(m),
		signup.WithLogger(log),
	)
	authSvc := auth.New(stores.users, tokens,
		auth.WithRecorder(recorder),
		auth.WithMetrics(m),
		auth.WithLogger(log),
	)
	verificationSvc := verification.New(stores.users, cfg.VerificationTTL,
		verification.WithNotifier(notifier),
		verification.WithRecorder(recorder),
		verification.WithMetrics(m),
		verification.WithLogger(log),
	)
	lifecycleSvc := lifecycle.New(stores.users,
		lifecycle.WithNotifier(notifier),
		lifecycle.WithRecorder(recorder),
		lifecycle.WithMetrics(m),
		lifecycle.WithLogger(log),
	)
	profileSvc := profile.New(stores.profiles, stores.users,
		profile.WithBlobStore(blobs),
		profile.WithModeration(moderationSvc),
		profile.WithRecorder(recorder),
		profile.WithLogger(log),
	)
	directorySvc := directory.New(stores.faculties, stores.departments, stores.profiles)

	if err := bootstrap.SeedAdmin(ctx, stores.users, stores.profiles, stores.tx,
		cfg.AdminSeedEmail, cfg.AdminSeedPassword, log); err != nil {
		log.Error("admin seed failed", "error", err)
		os.Exit(1)
	}

	handler := httptransport.NewHandler(log, tokens,
		signupSvc, authSvc, verificationSvc, lifecycleSvc, moderationSvc,
		profileSvc, directorySvc, stores.users)
	router := httptransport.NewRouter(handler)

	srv := httpserver.New(cfg.Addr, router)
	metricsSrv := httpserver.New(cfg.MetricsAddr, promhttp.Handler())

	log.Info("starting campuscard", "addr", cfg.Addr, "metrics_addr", cfg.MetricsAddr, "dev_mode", cfg.DevMode)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// storeSet groups the persistence interfaces main hands to the services.
type storeSet struct {
	users       storage.UserStore
	profiles    storage.ProfileStore
	bannedWords storage.BannedWordStore
	flagged     storage.FlaggedContentStore
	faculties   storage.FacultyStore
	departments storage.DepartmentStore
	tx          storage.TxRunner
}

func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*storeSet, func(), error) {
	if cfg.DevMode || cfg.Postgres.DSN == "" {
		log.Info("using in-memory stores")
		users := memory.NewUserStore()
		faculties := memory.NewFacultyStore(devFaculties())
		departments := memory.NewDepartmentStore(devDepartments())
		return &storeSet{
			users:       users,
			profiles:    memory.NewProfileStore(users, faculties, departments),
			bannedWords: memory.NewBannedWordStore(),
			flagged:     memory.NewFlaggedContentStore(),
			faculties:   faculties,
			departments: departments,
			tx:          memory.NewTxRunner(),
		}, func() {}, nil
	}

	db, err := platformpg.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := storagepg.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return &storeSet{
		users:       storagepg.NewUserStore(db),
		profiles:    storagepg.NewProfileStore(db),
		bannedWords: storagepg.NewBannedWordStore(db),
		flagged:     storagepg.NewFlaggedContentStore(db),
		faculties:   storagepg.NewFacultyStore(db),
		departments: storagepg.NewDepartmentStore(db),
		tx:          storagepg.NewTxRunner(db),
	}, func() { closeQuietly(db, log) }, nil
}

func buildRecorder(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Recorder, func()) {
	if len(cfg.Kafka.Brokers) == 0 {
		return audit.NewLogRecorder(log), func() {}
	}
	recorder, err := audit.NewKafkaRecorder(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	if err != nil {
		log.Warn("kafka unavailable, audit events go to the log", "error", err)
		return audit.NewLogRecorder(log), func() {}
	}
	return recorder, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := recorder.Close(closeCtx); err != nil {
			log.Warn("audit recorder close failed", "error", err)
		}
	}
}

func buildBlobStore(ctx context.Context, cfg config.Server) (blob.Store, error) {
	if cfg.S3.Endpoint == "" {
		return blob.NewMemoryStore(), nil
	}
	return blob.NewS3Store(ctx, cfg.S3)
}

func buildWordCache(cfg config.Server) (moderation.WordCache, func(), error) {
	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return nil, func() {}, nil
	}
	return moderation.NewRedisWordCache(client), func() { _ = client.Close() }, nil
}

func closeQuietly(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("database close failed", "error", err)
	}
}

func devFaculties() []domain.Faculty {
	return []domain.Faculty{
		{ID: 1, Name: "Engineering", Years: 5},
		{ID: 2, Name: "Medicine", Years: 6},
		{ID: 3, Name: "Science", Years: 4},
	}
}

func devDepartments() []domain.Department {
	return []domain.Department{
		{ID: 1, Name: "Computer Science", FacultyID: 1},
		{ID: 2, Name: "Mechanical Engineering", FacultyID: 1},
		{ID: 3, Name: "General Medicine", FacultyID: 2},
		{ID: 4, Name: "Physics", FacultyID: 3},
	}
}
