package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/analytics"
	analyticsPostgres "github.com/frahmantamala/workforce-presence/internal/analytics/postgres"
	"github.com/frahmantamala/workforce-presence/internal/attendance"
	attendancePostgres "github.com/frahmantamala/workforce-presence/internal/attendance/postgres"
	"github.com/frahmantamala/workforce-presence/internal/auth"
	authPostgres "github.com/frahmantamala/workforce-presence/internal/auth/postgres"
	"github.com/frahmantamala/workforce-presence/internal/breaksession"
	breakPostgres "github.com/frahmantamala/workforce-presence/internal/breaksession/postgres"
	"github.com/frahmantamala/workforce-presence/internal/clock"
	"github.com/frahmantamala/workforce-presence/internal/core/events"
	"github.com/frahmantamala/workforce-presence/internal/identity"
	identityPostgres "github.com/frahmantamala/workforce-presence/internal/identity/postgres"
	"github.com/frahmantamala/workforce-presence/internal/process"
	processPostgres "github.com/frahmantamala/workforce-presence/internal/process/postgres"
	"github.com/frahmantamala/workforce-presence/internal/scan"
	"github.com/frahmantamala/workforce-presence/internal/transport"
	"github.com/frahmantamala/workforce-presence/internal/transport/rest"
	"github.com/frahmantamala/workforce-presence/internal/worksession"
	sessionPostgres "github.com/frahmantamala/workforce-presence/internal/worksession/postgres"
	"github.com/frahmantamala/workforce-presence/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	Location *time.Location
	Clock    clock.Clock
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "timezone", deps.Location.String())

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	identityService := identity.NewService(identityPostgres.NewIdentityRepository(deps.GormDB), lg)
	attendanceService := attendance.NewService(attendancePostgres.NewAttendanceRepository(deps.GormDB), identityService, deps.Clock, deps.Location, lg)
	sessionService := worksession.NewService(sessionPostgres.NewWorkSessionRepository(deps.GormDB), identityService, deps.Clock, deps.Location, lg)
	processService := process.NewService(processPostgres.NewProcessRepository(deps.GormDB), lg)
	breakService := breaksession.NewService(breakPostgres.NewBreakSessionRepository(deps.GormDB), deps.Clock, deps.Location, lg)
	analyticsService := analytics.NewService(analyticsPostgres.NewAnalyticsRepository(deps.DB), deps.Clock, deps.Location, lg)

	sec := deps.Config.Security
	tokenGen := auth.NewJWTTokenGenerator(sec.JWTAccessSecret, sec.JWTRefreshSecret, sec.AccessTokenDuration, sec.RefreshTokenDuration)
	authService := auth.NewService(authPostgres.NewUserRepository(deps.GormDB), tokenGen, sec.BCryptCost, lg)

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.EventTypeScanRecorded, scan.AuditLog(lg))
	dispatcher := scan.NewDispatcher(attendanceService, sessionService, processService, lg).WithPublisher(bus)

	rest.RegisterAllRoutes(deps.Router, deps.DB, rest.Handlers{
		Auth:         auth.NewHandler(base, authService),
		Scan:         scan.NewHandler(base, dispatcher),
		Attendance:   attendance.NewHandler(base, attendanceService),
		WorkSession:  worksession.NewHandler(base, sessionService),
		Identity:     identity.NewHandler(base, identityService),
		BreakSession: breaksession.NewHandler(base, breakService),
		Analytics:    analytics.NewHandler(base, analyticsService),
		Process:      process.NewHandler(base, processService),
	}, deps.Config.Server, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitWithOptions(logger.Options{
		Env:    config.Logging.Env,
		Level:  config.Logging.Level,
		Format: config.Logging.Format,
	})
	lg := logger.LoggerWrapper()

	location, err := config.Attendance.Location()
	if err != nil {
		return nil, err
	}

	if _, err := rest.LoadOpenAPI(context.Background(), config.Server.OpenAPIPath); err != nil {
		lg.Warn("openapi document unavailable", "error", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db, config.Logging.Env)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		Logger:   lg,
		Location: location,
		Clock:    clock.Real(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers gorm on the same connection pool so both read paths share limits.
func initGorm(db *sqlx.DB, env string) (*gorm.DB, error) {
	level := gormLogger.Warn
	if env != "production" {
		level = gormLogger.Info
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
}
