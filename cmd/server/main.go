// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
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

	apiconnect "github.com/osa030/tunetied/internal/api/connect"
	"github.com/osa030/tunetied/internal/app/catalog"
	"github.com/osa030/tunetied/internal/app/filter"
	"github.com/osa030/tunetied/internal/app/genre"
	"github.com/osa030/tunetied/internal/app/recommend"
	"github.com/osa030/tunetied/internal/app/traversal"
	"github.com/osa030/tunetied/internal/infra/config"
	"github.com/osa030/tunetied/internal/infra/logger"
	"github.com/osa030/tunetied/internal/infra/spotify"
)

var (
	app        = kingpin.New("tunetied-server", "tunetied genre graph recommendation server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: config log.output)").String()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
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

	// Bootstrap logger until config is loaded
	if err := logger.Init(logger.Config{Output: "stdout", Level: "info"}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Command-line flags override config
	loggerConfig := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		zlog.Fatal().Msgf("Failed to initialize logger: %v", err)
	}

	// Run server (defer ensures shutdown hook is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %+v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	filterChain, err := filter.NewChainFromConfig(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}

	genreChain, err := genre.NewChainFromConfig(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid genre provider config")
	}

	// Create Spotify client
	spotifyClient, err := spotify.New(ctx, spotify.Config{
		ClientID:          cfg.Spotify.ClientID,
		ClientSecret:      cfg.Spotify.ClientSecret,
		RefreshToken:      cfg.Spotify.RefreshToken,
		Market:            cfg.Spotify.Market,
		RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
		MaxRetries:        cfg.Spotify.MaxRetries,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create Spotify client")
	}

	cache := catalog.New(spotifyClient, cfg.CacheTTL(), catalog.WithEnricher(genreChain))

	// Preload configured playlists
	if err := warmPlaylists(ctx, cfg, spotifyClient, cache); err != nil {
		return errors.Wrap(err, "playlist warm-up failed")
	}

	service := recommend.NewService(cache, filterChain, recommend.Config{
		DefaultAlgorithm: traversal.Algorithm(cfg.Recommend.DefaultAlgorithm),
		MaxLimit:         cfg.Recommend.MaxLimit,
		TopGenres:        cfg.Recommend.TopGenres,
	})

	// Create HTTP mux
	mux := http.NewServeMux()

	path, handler := apiconnect.NewHandler(
		apiconnect.NewRecommendService(service),
		connect.WithInterceptors(
			apiconnect.NewAuthInterceptor(cfg.Server.APIToken),
			apiconnect.NewTimeoutInterceptor(cfg.RequestTimeout()),
		),
	)
	mux.Handle(path, handler)
	if cfg.Server.APIToken == "" {
		zlog.Warn().Msg("server.api_token is empty, API authentication disabled")
	}

	// Determine server address
	serverAddr := cfg.Server.Addr
	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", serverAddr)
		// Signal that we're about to start listening
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for server to start listening
	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	// Execute startup hook if configured (after server is running)
	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	// Execute shutdown hook if configured
	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Available Filters:")
	registry := filter.GetRegistered()
	for _, name := range filter.RegisteredNames() {
		f := registry[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}

// warmPlaylists checks that configured playlists exist and loads them into the cache.
// Transient Spotify errors are retried inside the client.
func warmPlaylists(ctx context.Context, cfg *config.Config, spotifyClient *spotify.Client, cache *catalog.Cache) error {
	if len(cfg.Catalog.WarmPlaylists) == 0 {
		zlog.Info().Msg("No playlists to warm, tracks will load on first request")
		return nil
	}

	var errs []string
	ids := make([]string, 0, len(cfg.Catalog.WarmPlaylists))
	for _, ref := range cfg.Catalog.WarmPlaylists {
		summary, err := spotifyClient.GetPlaylist(ctx, ref)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", ref, err))
			continue
		}
		zlog.Info().Msgf("Warming playlist: id=%s name=%q tracks=%d", summary.ID, summary.Name, summary.TrackCount)
		ids = append(ids, summary.ID)
	}

	if err := cache.Warm(logger.ForRequest(ctx, "warm-up"), ids); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.Newf("playlist warm-up failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
