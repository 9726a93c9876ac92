package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"taskbridge-mcp-server/internal/api"
	"taskbridge-mcp-server/internal/application"
	"taskbridge-mcp-server/internal/domain"
	"taskbridge-mcp-server/internal/infrastructure"
	"taskbridge-mcp-server/internal/telemetry"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logOutput io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskbridge-mcp-server",
		Short: "MCP server exposing Trello, Slack and GitHub tools",
		// SilenceUsage prevents printing usage on every error
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, logOutput)
		},
	}

	root.PersistentFlags().String("config", "config.yaml", "Path to configuration file")
	root.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("taskbridge-mcp-server version %s\n", version))

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over the configured transport",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, logOutput)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "api",
		Short: "Run the companion HTTP endpoint (health probe and Trello cards)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAPI(cmd, logOutput)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog as JSON",
		RunE:  runTools,
	})

	return root
}

// loadConfig reads the configuration file, overlays the environment and
// validates the result. A missing file is only an error when --config was
// given explicitly.
func loadConfig(cmd *cobra.Command) (*domain.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := cmd.Flags().Changed("config")

	var config *domain.Config
	if _, err := os.Stat(path); !explicit && errors.Is(err, os.ErrNotExist) {
		config = domain.DefaultConfig()
	} else {
		loaded, err := domain.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	config.ApplyEnv(os.LookupEnv)
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		config.Logging.Level = level
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// app holds the wired components shared by the subcommands.
type app struct {
	catalog *application.Catalog
	router  *application.RequestRouter
	trello  *infrastructure.TrelloClient
}

func buildApp(config *domain.Config, logger *application.StructuredLogger) (*app, error) {
	authManager := domain.NewAuthenticationManagerFromConfig(config.Services)
	loc := config.Location()

	trelloHTTP, err := authManager.GetAuthenticatedClient(domain.ServiceTrello)
	if err != nil {
		return nil, err
	}
	slackHTTP, err := authManager.GetAuthenticatedClient(domain.ServiceSlack)
	if err != nil {
		return nil, err
	}
	githubHTTP, err := authManager.GetAuthenticatedClient(domain.ServiceGitHub)
	if err != nil {
		return nil, err
	}

	trelloClient := infrastructure.NewTrelloClient(config.Services.Trello.BaseURL, trelloHTTP)
	slackClient := infrastructure.NewSlackClient(config.Services.Slack.BaseURL, config.Services.Slack.TeamID, slackHTTP)
	githubClient := infrastructure.NewGitHubClient(config.Services.GitHub.BaseURL, githubHTTP)

	resolver := application.NewResolver(trelloClient, config.Services)
	trelloHandler := application.NewTrelloHandler(trelloClient, resolver, authManager, loc)
	slackHandler := application.NewSlackHandler(slackClient, authManager, loc)
	githubHandler := application.NewGitHubHandler(githubClient, resolver, authManager, loc)
	integrationHandler := application.NewIntegrationHandler(
		trelloHandler, slackHandler, githubHandler,
		application.NewOrchestrator(logger),
		authManager,
	)

	catalog := application.NewCatalog(trelloHandler, slackHandler, githubHandler, integrationHandler)

	observer, err := telemetry.NewGlobalDispatchObserver()
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry observer: %w", err)
	}

	router := application.NewRequestRouter(catalog,
		application.WithLogger(logger),
		application.WithObserver(observer),
	)

	return &app{catalog: catalog, router: router, trello: trelloClient}, nil
}

func runServe(cmd *cobra.Command, logOutput io.Writer) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := application.NewStructuredLogger(logOutput, config.Logging.Level)

	a, err := buildApp(config, logger)
	if err != nil {
		return err
	}

	var transport domain.Transport
	switch config.Transport.Type {
	case "stdio":
		transport = domain.NewStdioTransport(logger.Base())
	case "http":
		transport = domain.NewHTTPTransport(config.Transport.HTTP.Host, config.Transport.HTTP.Port, logger.Base())
	default:
		return fmt.Errorf("invalid transport type: %s", config.Transport.Type)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := application.NewServer(transport, a.router, config, logger)
	if err := server.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		logger.LogInfo("received shutdown signal", nil)
	case <-server.Done():
	}

	if err := server.Close(); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	logger.LogInfo("server shutdown complete", nil)
	return nil
}

func runAPI(cmd *cobra.Command, logOutput io.Writer) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := application.NewStructuredLogger(logOutput, config.Logging.Level)

	a, err := buildApp(config, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(config.API.Host, strconv.Itoa(config.API.Port))
	return api.New(a.trello, config.Services.Trello, logger, version).ListenAndServe(ctx, addr)
}

func runTools(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a, err := buildApp(config, application.NewDiscardLogger())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{"tools": a.catalog.List()})
}
