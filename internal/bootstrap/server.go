package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/mohammadpnp/customer-import/internal/application/audit"
	custapp "github.com/mohammadpnp/customer-import/internal/application/customer"
	importapp "github.com/mohammadpnp/customer-import/internal/application/importing"
	"github.com/mohammadpnp/customer-import/internal/config"
	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/auth"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/chunk"
	infrafile "github.com/mohammadpnp/customer-import/internal/infrastructure/file"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/parser"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/repository"
	httpecho "github.com/mohammadpnp/customer-import/internal/interfaces/http/echo"
	"github.com/mohammadpnp/customer-import/internal/worker"
)

// multipart framing on top of the file itself
const bodyLimitSlack = 1 << 20

type ServerDeps struct {
	Config    *config.Config
	Tasks     *repository.UploadTaskRepository
	Customers *repository.CustomerRepository
	Remarks   *repository.CustomerRemarkRepository
	Logs      *repository.OperationLogRepository
	Cache     domain.CountCache
	Spooler   *infrafile.Spooler
	Chunks    *chunk.Assembler
	Pool      *worker.Pool
	Runner    *importapp.Orchestrator
	Log       zerolog.Logger
}

func NewHTTPServer(deps ServerDeps) *echo.Echo {
	cfg := deps.Config

	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(requestLogger(deps.Log))
	server.Use(middleware.BodyLimit(fmt.Sprintf("%dB", cfg.Import.MaxFileSize+bodyLimitSlack)))

	maxFileSize := cfg.Import.MaxFileSize
	importLog := deps.Log.With().Str("component", "import").Logger()

	startImport := importapp.NewStartImport(deps.Spooler, deps.Tasks, deps.Pool, deps.Runner, maxFileSize, importLog)
	uploadChunk := importapp.NewUploadChunk(deps.Chunks, maxFileSize)
	mergeAndImport := importapp.NewMergeAndImport(deps.Chunks, deps.Tasks, deps.Pool, deps.Runner, importLog)
	cleanupUpload := importapp.NewCleanupUpload(deps.Chunks)
	importHandler := httpecho.NewImportHandler(startImport, uploadChunk, mergeAndImport, cleanupUpload, parser.WriteTemplate)

	taskHandler := httpecho.NewTaskHandler(
		importapp.NewListTasks(deps.Tasks),
		importapp.NewGetTask(deps.Tasks),
		importapp.NewGetLatestProcessingTask(deps.Tasks),
		importapp.NewDeleteTasks(deps.Tasks, deps.Customers, deps.Cache),
		importapp.NewUpdateTaskRemark(deps.Tasks),
	)

	customerHandler := httpecho.NewCustomerHandler(
		custapp.NewGetCustomerByID(deps.Customers),
		custapp.NewSaveCustomer(deps.Customers, deps.Cache),
		custapp.NewDeleteCustomers(deps.Customers, deps.Cache),
		custapp.NewSearchCustomers(deps.Customers),
		custapp.NewCountCustomers(deps.Customers, deps.Cache, deps.Log.With().Str("component", "customer").Logger()),
		custapp.NewCountTodayCustomers(deps.Customers, nil),
	).WithBatchQuery(custapp.NewBatchQueryCustomers(deps.Customers))

	remarkHandler := httpecho.NewCustomerRemarkHandler(
		custapp.NewGetCustomerRemark(deps.Remarks),
		custapp.NewSaveCustomerRemark(deps.Customers, deps.Remarks),
		custapp.NewDeleteCustomerRemark(deps.Remarks),
	)

	routes := httpecho.Routes{
		Import:    importHandler,
		Tasks:     taskHandler,
		Customers: customerHandler,
		Remarks:   remarkHandler,
		Logs:      httpecho.NewOperationLogHandler(audit.NewListOperationLogs(deps.Logs)),
	}

	if cfg.Auth.JWTSecret != "" {
		accounts := make([]auth.Account, 0, len(cfg.Auth.Users))
		for _, u := range cfg.Auth.Users {
			accounts = append(accounts, auth.Account{Username: u.Username, PasswordHash: u.PasswordHash, Role: u.Role})
		}
		tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		routes.Auth = httpecho.NewAuthHandler(auth.NewAccounts(accounts), tokens)
		routes.Authenticate = httpecho.Authenticate(tokens)
	} else {
		deps.Log.Warn().Msg("auth.jwt_secret is empty, API runs without authentication")
	}

	httpecho.RegisterRoutes(server, routes)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return server
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
