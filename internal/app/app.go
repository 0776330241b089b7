package app

import (
	"fmt"
	"net/http"

	"dates-app-go/internal/config"
	"dates-app-go/internal/db"
	relationshipdomain "dates-app-go/internal/domain/relationship"
	userdomain "dates-app-go/internal/domain/user"
	relationshiprepo "dates-app-go/internal/repository/postgres/relationship"
	userrepo "dates-app-go/internal/repository/postgres/user"
	"dates-app-go/internal/transport/httpserver"
	"dates-app-go/internal/transport/httpserver/handler"
	authmw "dates-app-go/internal/transport/httpserver/middleware"
	"dates-app-go/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.Env != "development" {
			return nil, fmt.Errorf("AUTH_JWT_SECRET is required outside development")
		}
		log.Warn("auth: AUTH_JWT_SECRET not set, using a development-only secret")
		cfg.Auth.JWTSecret = "insecure-dev-secret"
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: applying migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	userService := userdomain.NewService(userrepo.NewPostgres(dbConn), cfg.Auth.BcryptCost)
	relationshipService := relationshipdomain.NewService(relationshiprepo.NewPostgres(dbConn))

	auth := authmw.NewJWTAuth(cfg.Auth)
	handlers := handler.New(userService, relationshipService, auth, log)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, auth)

	return &App{
		cfg:        cfg,
		httpServer: httpserver.New(cfg, router),
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
