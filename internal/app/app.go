// Package app provides the application initialization and lifecycle management
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/streamsect/internal/chat"
	"github.com/tildaslashalef/streamsect/internal/config"
	"github.com/tildaslashalef/streamsect/internal/database"
	"github.com/tildaslashalef/streamsect/internal/extract"
	"github.com/tildaslashalef/streamsect/internal/loggy"
)

// App represents the application instance with its dependencies
type App struct {
	Config   *config.Config
	Chat     *chat.Service
	Extract  *extract.Extractor
	Settings *config.SettingsService
}

// New initializes a new application instance with all its dependencies
func New() (*App, error) {
	// Initialize configuration
	cfg, err := initConfig()
	if err != nil {
		return nil, err
	}

	// Initialize logger
	if err := initLogger(cfg); err != nil {
		return nil, err
	}

	// Log initialization information
	loggy.Info("Application initializing",
		"version", os.Getenv("VERSION"),
		"log_level", cfg.Logging.Level,
	)

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Get database connection
	db, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	// Initialize all services
	app, err := initServices(cfg, db)
	if err != nil {
		return nil, err
	}

	loggy.Info("Application initialized successfully")
	return app, nil
}

// initConfig loads and sets up the application configuration
func initConfig() (*config.Config, error) {
	// Load configuration with default paths, not in initialization mode
	cfg, err := config.LoadFromEnv("", "", false)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set the global configuration
	config.Set(cfg)
	return cfg, nil
}

// initLogger initializes the logging system
func initLogger(cfg *config.Config) error {
	err := loggy.Init(loggy.Config{
		Level:      config.ParseLogLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initServices initializes all application services
func initServices(cfg *config.Config, db *sql.DB) (*App, error) {
	logger := loggy.GetGlobalLogger()
	ctx := context.Background()

	// Core services initialization
	settingsService := config.NewSettingsService(db, cfg, logger)
	if err := settingsService.ApplyStoredSettings(ctx); err != nil {
		loggy.Warn("Failed to apply stored settings from database", "error", err)
		// Continue anyway, using defaults
	}

	// Initialize the one-shot extractor shared by the chat service
	extractor := extract.New(logger)

	// Initialize primary services
	chatService := chat.NewService(db, cfg, logger, extractor)

	// Return the initialized application
	return &App{
		Config:   cfg,
		Chat:     chatService,
		Extract:  extractor,
		Settings: settingsService,
	}, nil
}

// Shutdown gracefully shuts down the application
func (app *App) Shutdown() error {
	loggy.Info("Shutting down application")

	// Close database connection
	if err := database.CloseDB(); err != nil {
		loggy.Error("Error closing database connection", "error", err)
	}

	return nil
}

// FromContext retrieves the App instance from the CLI context
func FromContext(c *cli.Context) (*App, error) {
	if c.App.Metadata == nil {
		return nil, fmt.Errorf("app metadata not found in context")
	}

	app, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil, fmt.Errorf("app instance not found in context")
	}

	return app, nil
}
