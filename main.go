package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"atlassian-search-mcp/internal/application"
	"atlassian-search-mcp/internal/domain"
	"atlassian-search-mcp/internal/infrastructure"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// newLogger builds the process logger. Logs go to stderr so stdout stays
// reserved for the stdio transport.
func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}

// buildSearchClients constructs the backend clients named by the
// configuration. An unconfigured backend yields a nil interface so its
// handler advertises nothing.
func buildSearchClients(config *domain.Config) (domain.SearchClient, domain.SearchClient, error) {
	var confluenceClient domain.SearchClient
	if bc := config.Backends.Confluence; bc != nil {
		httpClient, err := domain.NewAuthenticatedClient(domain.CredentialsFromBackend(bc))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Confluence client: %w", err)
		}
		confluenceClient = infrastructure.NewConfluenceClient(bc.BaseURL, httpClient)
	}

	var jiraClient domain.SearchClient
	if bc := config.Backends.Jira; bc != nil {
		httpClient, err := domain.NewAuthenticatedClient(domain.CredentialsFromBackend(bc))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Jira client: %w", err)
		}
		jiraClient = infrastructure.NewJiraClient(bc.BaseURL, httpClient)
	}

	return confluenceClient, jiraClient, nil
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	// A local .env file may supply the backend environment variables; a
	// missing file is fine
	_ = godotenv.Load()

	// Load configuration
	config, warnings, err := domain.LoadConfig(*configPath)
	if err != nil {
		// The configured log level is unknown until the configuration loads
		newLogger("info").WithError(err).Fatal("failed to load configuration")
	}

	logger := newLogger(config.LogLevel)
	for _, warning := range warnings {
		logger.Warn(warning)
	}

	// Create API clients for the configured backends
	confluenceClient, jiraClient, err := buildSearchClients(config)
	if err != nil {
		logger.WithError(err).Fatal("failed to create backend clients")
	}

	if confluenceClient == nil && jiraClient == nil {
		logger.Warn("no backends configured; the server will advertise no tools")
	}

	// Create response mapper
	mapper := domain.NewResponseMapper()

	// Both handlers always register; registration order fixes the order
	// tools are listed in
	router := application.NewRequestRouter(
		application.NewConfluenceHandler(confluenceClient, mapper),
		application.NewJiraHandler(jiraClient, mapper),
	)

	// Create transport based on configuration
	var transport domain.Transport
	switch config.Transport.Type {
	case "stdio":
		transport = domain.NewStdioTransport()
	case "http":
		transport = domain.NewHTTPTransport(config.Transport.HTTP.Host, config.Transport.HTTP.Port, logger)
	default:
		logger.Fatalf("invalid transport type: %s", config.Transport.Type)
	}

	// Create server with all dependencies
	server := application.NewServer(transport, router, config, logger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	logger.WithFields(logrus.Fields{
		"transport":  config.Transport.Type,
		"confluence": confluenceClient != nil,
		"jira":       jiraClient != nil,
	}).Info("server running")

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("shutting down")
		cancel()
	case err := <-errChan:
		logger.WithError(err).Error("server error")
		cancel()
		if err := server.Close(); err != nil {
			logger.WithError(err).Error("error closing server")
		}
		os.Exit(1)
	}

	// Close the server
	if err := server.Close(); err != nil {
		logger.WithError(err).Error("error during server shutdown")
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
