// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/moodbox/internal/api/connect"
	"github.com/osa030/moodbox/internal/api/rest"
	"github.com/osa030/moodbox/internal/app/filter"
	"github.com/osa030/moodbox/internal/app/language"
	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/infra/config"
	"github.com/osa030/moodbox/internal/infra/logger"
)

var (
	app        = kingpin.New("moodbox-server", "moodbox recommendation server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")

	// list-languages command
	listLanguagesCmd = app.Command("list-languages", "List language classes and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-filters command
	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output:     cfg.Log.Output,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	zlog.Info().Msgf("Loaded config from %s", *configPath)

	if command == listLanguagesCmd.FullCommand() {
		if err := printLanguages(cfg); err != nil {
			zlog.Fatal().Msgf("Failed to build language registry: %v", err)
		}
		return
	}

	// Run server (defer ensures cleanup is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	deps, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Create RPC services
	recommendService := apiconnect.NewRecommendService(deps.service)
	adminService := apiconnect.NewAdminService(deps.caches...)

	router := rest.NewRouter(rest.Config{
		CORSOrigins:        cfg.Server.CORSOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}, deps.service)

	recommendPath, recommendHandler := apiconnect.NewRecommendServiceHandler(recommendService)

	// Create admin auth interceptor
	adminAuthInterceptor := apiconnect.NewAdminAuthInterceptor(cfg.Admin.Token)
	adminPath, adminHandler := apiconnect.NewAdminServiceHandler(
		adminService,
		connect.WithInterceptors(adminAuthInterceptor),
	)

	router.Mount(recommendPath, recommendHandler)
	router.Mount(adminPath, adminHandler)

	// Create server with h2c (HTTP/2 cleartext) support
	serverAddr := cfg.Server.Addr
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Available Filters:")
	for _, name := range filter.Names() {
		f := filter.GetRegistered()[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}

// printLanguages prints the language classes and moods.
func printLanguages(cfg *config.Config) error {
	registry, err := language.NewDefaultRegistry(languageSpecs(cfg))
	if err != nil {
		return err
	}

	codes := registry.Codes()
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	fmt.Println("Language Classes:")
	fmt.Printf("  %-6s - unconstrained\n", language.Any)
	for _, code := range codes {
		c, _ := registry.Lookup(code)
		fmt.Printf("  %-6s - hints: %s\n", code, strings.Join(c.Hints(), ", "))
	}

	fmt.Println("\nMoods:")
	for _, m := range mood.All() {
		fmt.Printf("  %-10s - genres: %s\n", m, strings.Join(mood.Genres(m), ", "))
	}
	return nil
}
