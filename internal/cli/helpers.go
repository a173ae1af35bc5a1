package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/imkarma/trophy/internal/auth"
	"github.com/imkarma/trophy/internal/config"
	"github.com/imkarma/trophy/internal/recurrence"
	"github.com/imkarma/trophy/internal/store"
	"github.com/imkarma/trophy/internal/tracker"
)

const trophyDirName = ".trophy"

var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// trophyPath returns the path to a file inside .trophy/.
func trophyPath(parts ...string) string {
	elems := append([]string{trophyDirName}, parts...)
	return filepath.Join(elems...)
}

// app bundles everything a command needs. Close releases the store.
type app struct {
	cfg     *config.Config
	store   *store.Store
	tracker *tracker.Service
	auth    *auth.Service
	user    string
}

func (a *app) Close() error {
	return a.store.Close()
}

// mustConfig loads .trophy/config.yaml, returning an error if trophy is not
// initialized.
func mustConfig() (*config.Config, error) {
	cfgPath := trophyPath("config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("trophy not initialized. Run: trophy init")
	}
	return config.Load(cfgPath)
}

// mustApp opens the configured store and wires the services, acting as the
// configured local user.
func mustApp() (*app, error) {
	cfg, err := mustConfig()
	if err != nil {
		return nil, err
	}
	return openApp(cfg)
}

func openApp(cfg *config.Config) (*app, error) {
	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.Database.Path, cfg.Database.BusyTimeoutMS)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureUser(context.Background(), cfg.LocalUser); err != nil {
		s.Close()
		return nil, err
	}
	return &app{
		cfg:     cfg,
		store:   s,
		tracker: tracker.New(s, loc),
		auth:    auth.NewService(s, cfg.Server.SessionTTL()),
		user:    cfg.LocalUser,
	}, nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", what, s)
	}
	return id, nil
}

// friendly rewrites refusals into the messages users see.
func friendly(err error) error {
	switch {
	case errors.Is(err, recurrence.ErrDuplicatePeriodCompletion):
		return fmt.Errorf("you've already completed this for now")
	case errors.Is(err, recurrence.ErrQuotaExceeded):
		return fmt.Errorf("task already complete")
	case errors.Is(err, tracker.ErrNotReady):
		return fmt.Errorf("not ready yet: %w", err)
	}
	return err
}

// progressBar renders done/total as a fixed-width text bar.
func progressBar(done, total, width int) string {
	if total <= 0 {
		return gray(strings.Repeat("░", width))
	}
	filled := done * width / total
	filled = min(max(filled, 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if done >= total {
		return green(bar)
	}
	return cyan(bar)
}

// ruleLabel describes a task's repetition in a few words.
func ruleLabel(t store.Task) string {
	switch t.RepeatType {
	case recurrence.KindDaily:
		return fmt.Sprintf("daily %s→%s", t.StartDate, t.EndDate)
	case recurrence.KindWeekly:
		return fmt.Sprintf("%dx weekly %s→%s", max(1, t.TargetCount), t.StartDate, t.EndDate)
	case recurrence.KindAmount:
		return fmt.Sprintf("%d times", t.TotalRequired)
	}
	return "once"
}
