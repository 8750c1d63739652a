package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/Githaiga22/movie-hub/internal/catalog"
	"github.com/Githaiga22/movie-hub/internal/config"
	"github.com/Githaiga22/movie-hub/internal/domain"
	"github.com/Githaiga22/movie-hub/internal/launcher"
	"github.com/Githaiga22/movie-hub/internal/log"
	"github.com/Githaiga22/movie-hub/internal/store"
	"github.com/Githaiga22/movie-hub/internal/tmdb"
	"github.com/Githaiga22/movie-hub/internal/tui"
	"github.com/Githaiga22/movie-hub/internal/tui/styles"
	"github.com/Githaiga22/movie-hub/internal/watchlist"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

const usage = `Usage: moviehub [flags] [command]

Commands:
  (none)          browse movies
  setup           store TMDB and OMDB API keys
  export [file]   write the watchlist as YAML (stdout when no file is given)
  import <file>   merge a YAML watchlist export

Flags:
`

func main() {
	var (
		showVersion bool
		configDir   string
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configDir, "config", "", "configuration directory")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("moviehub %s\n", Version)
		return
	}

	if err := run(config.NewLoader(configDir), flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(loader *config.Loader, args []string) error {
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.Setup(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	defer logger.Close()

	logger.Info("starting moviehub", "version", Version, "config", loader.Path())

	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "":
		if !cfg.IsConfigured() {
			return runSetupFlow(loader, cfg, logger)
		}
		return runTUI(loader, cfg, logger)
	case "setup":
		return runSetupFlow(loader, cfg, logger)
	case "export":
		return runExport(cfg, logger, args)
	case "import":
		return runImport(cfg, logger, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// openWatchlist opens the configured storage backend and the watchlist on
// top of it. close releases both in reverse order.
func openWatchlist(cfg *config.Config, logger *log.Logger) (domain.KeyValueStore, *watchlist.Store, func(), error) {
	kv, err := store.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	wl, err := watchlist.Open(kv, logger.Logger)
	if err != nil {
		kv.Close()
		return nil, nil, nil, fmt.Errorf("failed to open watchlist: %w", err)
	}
	for _, e := range wl.LoadErrors() {
		logger.Warn("watchlist recovered from corrupt data", "error", e)
	}

	closeAll := func() {
		if err := wl.Close(); err != nil {
			logger.Error("failed to close watchlist", "error", err)
		}
		if err := kv.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}
	return kv, wl, closeAll, nil
}

func newClient(cfg *config.Config, logger *log.Logger) *tmdb.Client {
	return tmdb.NewClient(tmdb.Options{
		BaseURL:     cfg.TMDB.BaseURL,
		APIKey:      cfg.TMDB.APIKey,
		AccessToken: cfg.TMDB.AccessToken,
		Language:    cfg.TMDB.Language,
		Timeout:     cfg.TMDB.Timeout,
		OMDBBaseURL: cfg.OMDB.BaseURL,
		OMDBAPIKey:  cfg.OMDB.APIKey,
	}, logger.Logger)
}

func runTUI(loader *config.Loader, cfg *config.Config, logger *log.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", loader.Path(), err)
	}

	kv, wl, closeAll, err := openWatchlist(cfg, logger)
	if err != nil {
		return err
	}
	defer closeAll()

	svc := catalog.NewService(newClient(cfg, logger), kv, logger.Logger)

	// Only the log level is applied live; other settings need a restart
	if loader.Watch(func(next *config.Config, err error) {
		if err != nil {
			logger.Warn("ignoring config change", "error", err)
			return
		}
		logger.SetLevel(next.Logging.Level)
	}) {
		logger.Debug("watching config file", "path", loader.Path())
	}

	model := tui.NewModel(svc, wl, tui.Options{
		StartKey:     cfg.StartKey(),
		Threshold:    cfg.UI.PrefetchThreshold,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Opener:       launcher.NewLauncher(cfg.Browser.Command, cfg.Browser.Args, logger.Logger),
		Logger:       logger.Logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow prompts for API keys, checks them and saves the config
func runSetupFlow(loader *config.Loader, cfg *config.Config, logger *log.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to moviehub!")
	fmt.Println()
	fmt.Println("A TMDB API key is free at https://www.themoviedb.org/settings/api")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for {
		key, err := promptSecret(reader, "TMDB API key (v3) or read access token: ")
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if key == "" {
			fmt.Println("The key cannot be empty. Please try again.")
			continue
		}

		// v4 read access tokens are JWTs and go in the Authorization header
		if strings.Count(key, ".") == 2 {
			cfg.TMDB.AccessToken, cfg.TMDB.APIKey = key, ""
		} else {
			cfg.TMDB.APIKey, cfg.TMDB.AccessToken = key, ""
		}

		if err := checkWithSpinner(newClient(cfg, logger)); err != nil {
			fmt.Printf("✗ %v\n", err)
			if errors.Is(err, domain.ErrAuthFailed) {
				fmt.Println("The key was rejected. Please try again.")
				fmt.Println()
				continue
			}
			return err
		}
		break
	}

	omdbKey, err := promptSecret(reader, "OMDB API key for IMDb/Rotten Tomatoes ratings (optional, enter to skip): ")
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	cfg.OMDB.APIKey = omdbKey

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	logger.Info("configuration saved", "path", loader.Path())

	fmt.Println()
	fmt.Printf("✓ Configuration saved to %s\n", loader.Path())
	fmt.Println()
	fmt.Println("Run moviehub again to start browsing.")

	return nil
}

// promptSecret reads a line without echo when stdin is a terminal
func promptSecret(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// checkWithSpinner pings TMDB with a visual spinner
func checkWithSpinner(client *tmdb.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- client.Ping(ctx)
	}()

	frame := 0
	fmt.Printf("\r%s Checking key with TMDB...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Println("✓ TMDB key accepted")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking key with TMDB...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return errors.New("check timed out")
		}
	}
}

func runExport(cfg *config.Config, logger *log.Logger, args []string) error {
	_, wl, closeAll, err := openWatchlist(cfg, logger)
	if err != nil {
		return err
	}
	defer closeAll()

	if len(args) == 0 || args[0] == "-" {
		return wl.Export(os.Stdout)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := wl.Export(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Exported %d movies to %s\n", wl.Snapshot().Len(), args[0])
	return nil
}

func runImport(cfg *config.Config, logger *log.Logger, args []string) error {
	if len(args) == 0 {
		return errors.New("import needs a file: moviehub import <file>")
	}

	_, wl, closeAll, err := openWatchlist(cfg, logger)
	if err != nil {
		return err
	}
	defer closeAll()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	res, err := wl.Import(f)
	if err != nil {
		return err
	}
	logger.Info("watchlist imported", "file", args[0], "added", res.Added, "skipped", res.Skipped, "watched", res.Watched)

	fmt.Printf("✓ Imported %d movies (%d already saved, %d marked watched)\n", res.Added, res.Skipped, res.Watched)
	return nil
}
