package cmd

import (
	"database/sql"
	"net"

	"github.com/refi-auto/ms-go-accounts/app/controller"
	"github.com/refi-auto/ms-go-accounts/app/middleware"
	"github.com/refi-auto/ms-go-accounts/app/repository"
	"github.com/refi-auto/ms-go-accounts/app/service"
	"github.com/refi-auto/ms-go-accounts/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server for the user-account service.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	userRepo := repository.NewUserRepository(db)
	revokedRepo := repository.NewRevokedTokenRepository(db)
	tokenService := service.NewTokenService(revokedRepo, cfg)
	userService := service.NewUserService(userRepo, revokedRepo, tokenService, cfg.PasswordPolicy)

	startHTTPServer(cfg, userService, tokenService)
}

func startHTTPServer(cfg *config.Config, userService *service.UserService, tokenService *service.TokenService) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	userController := controller.NewUserController(userService)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	e.POST("/register", userController.Register)
	e.POST("/login", userController.Login)
	e.POST("/refresh", userController.Refresh, authMiddleware.RequireRefresh)
	e.POST("/logout", userController.Logout, authMiddleware.RequireAuth)
	e.PUT("/update-password", userController.UpdatePassword, authMiddleware.RequireAuth)
	e.GET("/user/:id", userController.GetUser, authMiddleware.RequireAuth)
	e.DELETE("/user/:id", userController.DeleteUser, authMiddleware.RequireFresh)

	httpAddr := net.JoinHostPort("", cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}
