package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/employee_records/internal/config"
	"github.com/locvowork/employee_records/internal/database"
	"github.com/locvowork/employee_records/internal/handler"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/repository"
	"github.com/locvowork/employee_records/internal/service"
	"github.com/locvowork/employee_records/internal/validator"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Echo *echo.Echo
	DB   *sql.DB

	Departments service.DepartmentService
	Employees   service.EmployeeService

	// Optional integrations; nil when not configured.
	Search    *database.ElasticSearchClient
	ChangeLog *database.DatastoreClient
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	return &App{Echo: e}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(logger.Options{
		FilePath: cfg.LOG_FILE_PATH,
		Level:    cfg.LOG_LEVEL,
		Format:   cfg.LOG_FORMAT,
	})
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize database connection
	dbConfig := database.Config{
		Driver:          cfg.DB_DRIVER,
		Host:            cfg.DB_HOST,
		Port:            cfg.DB_PORT,
		User:            cfg.DB_USER,
		Password:        cfg.DB_PASSWORD,
		DBName:          cfg.DB_NAME,
		SSLMode:         cfg.DB_SSL_MODE,
		SQLitePath:      cfg.SQLITE_PATH,
		MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
	}

	db, err := database.Open(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db

	if cfg.DB_AUTO_MIGRATE {
		driver := cfg.DB_DRIVER
		if driver == "" {
			driver = database.DriverPostgres
		}
		if err := database.Migrate(ctx, db, driver); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Optional integrations
	var svcOpts []service.Option
	if cfg.ELASTIC_URL != "" {
		es, err := database.NewElasticSearchClient(cfg.ELASTIC_URL)
		if err != nil {
			return err
		}
		if err := es.Ping(ctx, cfg.ELASTIC_URL); err != nil {
			logger.WarnLog(ctx, "Elasticsearch at %s is not reachable yet: %v", cfg.ELASTIC_URL, err)
		}
		a.Search = es
		svcOpts = append(svcOpts, service.WithIndexer(es))
	}
	if cfg.DATASTORE_PROJECT_ID != "" {
		dc, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return err
		}
		a.ChangeLog = dc
		svcOpts = append(svcOpts, service.WithRecorder(dc))
	}

	endpoints, err := config.LoadExternalAPIConfig(cfg.ENDPOINTS_CONFIG_PATH, cfg.PUBLIC_BASE_URL)
	if err != nil {
		return err
	}

	// Initialize dependencies
	deptRepo := repository.NewDepartmentRepository(db)
	empRepo := repository.NewEmployeeRepository(db)
	a.Departments = service.NewDepartmentService(deptRepo, svcOpts...)
	a.Employees = service.NewEmployeeService(empRepo, deptRepo, svcOpts...)

	empOpts := []handler.EmployeeHandlerOption{handler.WithDefaultPageSize(cfg.DEFAULT_PAGE_SIZE)}
	if a.Search != nil {
		empOpts = append(empOpts, handler.WithSearcher(a.Search))
	}
	if a.ChangeLog != nil {
		empOpts = append(empOpts, handler.WithHistory(a.ChangeLog))
	}

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	handler.RegisterRoutes(a.Echo, handler.Handlers{
		Employee:   handler.NewEmployeeHandler(a.Employees, empOpts...),
		Department: handler.NewDepartmentHandler(a.Departments),
		Config:     handler.NewConfigHandler(endpoints),
		Health:     handler.NewHealthHandler(db),
		JWTSecret:  cfg.AUTH_JWT_SECRET,
	})

	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Validator = validator.New(nil)

	a.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	a.Echo.Use(requestContext)
	a.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				logger.ErrorLog(ctx, "%s %s -> %d (%v): %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			logger.InfoLog(ctx, "%s %s -> %d (%v)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

// requestContext attaches a logger carrying the request id to the request context.
func requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		ctx := logger.WithLogger(req.Context(), map[string]interface{}{"request_id": id})
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	addr := ":" + config.DefaultEnvConfig.APP_PORT

	errCh := make(chan error, 1)
	go func() {
		logger.InfoLog(ctx, "HTTP server listening on %s", addr)
		if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.InfoLog(ctx, "shutting down HTTP server")
	return a.Echo.Shutdown(shutdownCtx)
}

// Close releases the store and optional clients.
func (a *App) Close() error {
	var errs []error
	if a.ChangeLog != nil {
		errs = append(errs, a.ChangeLog.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
