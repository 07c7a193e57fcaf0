package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
	"github.com/elite-status-check/backend/internal/api"
	"github.com/elite-status-check/backend/internal/cargo"
	"github.com/elite-status-check/backend/internal/config"
	"github.com/elite-status-check/backend/internal/inara"
	"github.com/elite-status-check/backend/internal/journal"
	"github.com/elite-status-check/backend/internal/status"
	"github.com/elite-status-check/backend/internal/watch"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "elite-status-check",
		Repository: "backend",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("Download it from https://github.com/elite-status-check/backend/releases")
	} else {
		fmt.Printf("You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: server [options]\n\n")
		fmt.Fprintf(os.Stderr, "Elite Status Check exposes the game's Status.json flags, cargo manifest\n")
		fmt.Fprintf(os.Stderr, "and journal history as a local REST and WebSocket API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	configFlag := pflag.StringP("config", "c", "", "Path to config.yaml (default: next to the executable)")
	portFlag := pflag.IntP("port", "p", 0, "Override the configured listen port")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for a newer release")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("elite-status-check %s (built %s)\n", Version, BuildTime)
		return
	}

	if *updateFlag {
		checkUpdate(Version)
		return
	}

	// Resolve the config file next to the executable unless overridden
	configPath := *configFlag
	if configPath == "" {
		exePath, err := os.Executable()
		if err != nil {
			fmt.Printf("Failed to get executable path: %v\n", err)
			os.Exit(1)
		}
		configPath = filepath.Join(filepath.Dir(exePath), "config.yaml")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *portFlag > 0 {
		cfg.Server.Port = *portFlag
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Status cache fed by the file watcher
	cache := status.NewCache()
	adapter := watch.NewAdapter(cfg.StatusFilePath(), cache, cfg.Status.ReadRetries, cfg.ReadRetryDelay())

	watcher, err := watch.NewWatcher(cfg.StatusFilePath(), adapter, cfg.StatusPollInterval())
	if err != nil {
		if !errors.Is(err, watch.ErrPathUnavailable) {
			fmt.Printf("Failed to initialize status watcher: %v\n", err)
			os.Exit(1)
		}
		// The game directory is missing; status endpoints stay in the
		// not-yet-available state but the server still runs.
		fmt.Printf("Warning: %v\n", err)
		fmt.Println("Serving without live status; set ELITE_STATUS_PATH and restart")
	}

	// Cargo is read on demand, no watcher needed
	cargoReader := cargo.NewReader(cfg.CargoFilePath())

	// Journal store and tailer
	var store *journal.Store
	var tailer *journal.Tailer
	if cfg.Journal.Enabled {
		store, err = journal.NewStore(cfg.Journal.DBPath)
		if err != nil {
			fmt.Printf("Warning: failed to open journal store: %v\n", err)
			fmt.Println("Journal endpoints will report unavailable")
			store = nil
		} else {
			tailer = journal.NewTailer(cfg.Journal.Dir, cfg.Journal.Pattern, cfg.JournalPollInterval(), store)
		}
	}

	// Inara client selection
	var inaraSvc inara.Service
	switch {
	case !cfg.Inara.Enabled:
		fmt.Println("[Main] Inara integration disabled")
	case cfg.Inara.UseMock || cfg.Inara.APIKey == "":
		if !cfg.Inara.UseMock {
			fmt.Println("[Main] Inara API key not set, using mock data")
		}
		inaraSvc = inara.NewMockClient(cfg.Inara.CommanderName)
	default:
		inaraSvc = inara.NewClient(inara.Options{
			APIURL:        cfg.Inara.APIURL,
			APIKey:        cfg.Inara.APIKey,
			AppName:       cfg.Inara.AppName,
			AppVersion:    cfg.Inara.AppVersion,
			CommanderName: cfg.Inara.CommanderName,
			Timeout:       cfg.InaraTimeout(),
			MaxRetries:    cfg.Inara.MaxRetries,
			RetryDelay:    cfg.InaraRetryDelay(),
			BackoffFactor: cfg.Inara.BackoffFactor,
			RateLimit:     cfg.Inara.RateLimitRequests,
			RateWindow:    cfg.InaraRateLimitWindow(),
			CacheTTL:      cfg.InaraCacheTTL(),
		})
	}

	deps := &api.Dependencies{
		Status:   cache,
		Cargo:    cargoReader,
		Inara:    inaraSvc,
		APIToken: cfg.Server.APIToken,
		Version:  Version,
	}
	// Assign only live values; a typed nil would defeat the handlers'
	// nil checks.
	if store != nil {
		deps.Journal = store
		deps.Tracker = tailer
	}

	handlers := api.NewHandlers(deps)

	// Push every accepted snapshot to stream subscribers
	cache.SetOnUpdate(handlers.Stream.BroadcastSnapshot)

	// Start background workers
	if watcher != nil {
		go watcher.Run(ctx)
	}
	if tailer != nil {
		go tailer.Run(ctx)
	}

	e := echo.New()

	api.SetupMiddleware(e)

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || strings.HasSuffix(path, "/stream")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			// The WebSocket stream outlives any request timeout
			return strings.HasSuffix(c.Request().URL.Path, "/stream")
		},
		ErrorMessage: "Request timeout",
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Request().URL.Path, "/stream")
		},
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-API-Key"},
		}))
	}

	api.RegisterRoutes(e, handlers)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutdown signal received, stopping...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error stopping HTTP server: %v\n", err)
		}
	}()

	inaraMode := "disabled"
	if inaraSvc != nil {
		inaraMode = inaraSvc.Mode()
	}
	journalDir := "disabled"
	if store != nil {
		journalDir = cfg.Journal.Dir
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Elite Status Check Server                       ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Inara:      %-45s║\n", inaraMode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:     %-45s║\n", configPath)
	fmt.Printf("║  Listen:     http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Status:     %-45s║\n", cfg.StatusFilePath())
	fmt.Printf("║  Journal:    %-45s║\n", journalDir)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if cfg.Server.APIToken != "" {
		fmt.Println("API token auth enabled (send the X-API-Key header)")
	}
	fmt.Printf("Open http://localhost:%d/health to verify the server is up\n\n", cfg.Server.Port)

	if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Closing status stream...")
	handlers.Stream.Close()

	if store != nil {
		fmt.Println("Closing journal store...")
		if err := store.Close(); err != nil {
			fmt.Printf("Error closing journal store: %v\n", err)
		}
	}

	fmt.Println("Shutdown complete")
}
