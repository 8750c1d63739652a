// Package launcher opens movie pages in an external browser.
package launcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

const (
	tmdbMovieURL = "https://www.themoviedb.org/movie/%d"
	imdbTitleURL = "https://www.imdb.com/title/%s/"
)

// ErrNoURL is returned when there is nothing to open
var ErrNoURL = errors.New("no URL to open")

// Launcher starts an external program for a URL
type Launcher struct {
	command string   // configured browser command, empty for system default
	args    []string // extra arguments placed before the URL
	goos    string
	logger  *slog.Logger

	// start runs the prepared command without waiting for it
	start func(*exec.Cmd) error
}

// NewLauncher creates a Launcher. An empty command uses the platform's
// default URL handler.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: strings.TrimSpace(command),
		args:    args,
		goos:    runtime.GOOS,
		logger:  logger,
		start:   (*exec.Cmd).Start,
	}
}

// MovieURL returns the TMDB page for a movie
func MovieURL(movieID int) string {
	return fmt.Sprintf(tmdbMovieURL, movieID)
}

// IMDbURL returns the IMDb page for an IMDb id, or "" when there is none
func IMDbURL(imdbID string) string {
	if imdbID == "" {
		return ""
	}
	return fmt.Sprintf(imdbTitleURL, imdbID)
}

// Launch opens url with the configured command or the system default
func (l *Launcher) Launch(url string) error {
	if url == "" {
		return ErrNoURL
	}

	cmd := l.buildCommand(url)
	l.logger.Info("opening url", "url", url, "command", cmd.Path, "args", cmd.Args[1:])

	if err := l.start(cmd); err != nil {
		l.logger.Error("failed to open url", "url", url, "error", err)
		return fmt.Errorf("opening %s: %w", url, err)
	}
	return nil
}

// buildCommand prepares the process for url. On macOS a command of the form
// "open-a:App" is run through `open -a App`.
func (l *Launcher) buildCommand(url string) *exec.Cmd {
	if l.command == "" {
		switch l.goos {
		case "darwin":
			return exec.Command("open", url)
		case "windows":
			return exec.Command("cmd", "/c", "start", "", url)
		default:
			// Linux and other Unix-like systems
			return exec.Command("xdg-open", url)
		}
	}

	if app, ok := strings.CutPrefix(l.command, "open-a:"); ok && l.goos == "darwin" {
		args := []string{"-a", app, url}
		if len(l.args) > 0 {
			args = append(args, "--args")
			args = append(args, l.args...)
		}
		return exec.Command("open", args...)
	}

	args := make([]string, 0, len(l.args)+1)
	args = append(args, l.args...)
	args = append(args, url)
	return exec.Command(l.command, args...)
}
