package main

import (
	"net/http"
	"os"
	"time"

	"inkbytr/api/handler"
	apiMiddleware "inkbytr/api/middleware"
	"inkbytr/api/routes"
	"inkbytr/config"
	"inkbytr/internal/repository"
	"inkbytr/internal/service"
	"inkbytr/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	db := config.ConnectionDb()
	validate := validator.New()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	secret := []byte(os.Getenv("JWT_SECRET"))
	if len(secret) == 0 {
		logger.Fatal("JWT_SECRET is required")
	}
	jwtManager := utils.JWTManager{
		Secret:          secret,
		Issuer:          os.Getenv("JWT_ISSUER"),
		SessionTokenTTL: 7 * 24 * time.Hour,
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	emailSender := service.NewResendEmailSender(
		os.Getenv("RESEND_API_KEY"),
		os.Getenv("EMAIL_FROM"),
		os.Getenv("FRONTEND_URL"),
	)

	authService := service.NewAuthService(
		userRepo,
		emailSender,
		service.BcryptPasswordHasher{},
		service.JWTSessionIssuer{Manager: &jwtManager},
		service.RealClock{},
		logger,
		service.AuthConfig{
			SessionTokenTTL:      7 * 24 * time.Hour,
			VerificationTokenTTL: 24 * time.Hour,
			ResetTokenTTL:        10 * time.Minute,
		},
	)
	postService := service.NewPostService(postRepo, userRepo, service.RealClock{})

	authHandler := handler.NewAuthHandler(authService, validate)
	postHandler := handler.NewPostHandler(postService, validate)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.Secure())
	app.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     []string{os.Getenv("FRONTEND_URL")},
		AllowCredentials: true,
	}))
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{JWT: &jwtManager}
	router := routes.NewRouter(app, authHandler, postHandler, authMiddleware)
	router.RegisterRoutes()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", addr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
