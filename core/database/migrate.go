package database

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/royaldns/core/logger"
)

// RunMigrations applies every pending up migration found in cfg.Migrations.
func RunMigrations(cfg Config) error {
	dir, err := resolveMigrationsDir(cfg.Migrations)
	if err != nil {
		return err
	}
	files := listMigrationFiles(dir)
	if preview, more := logger.SummarizeStrings(files, 6); preview != "" {
		logger.MIG.Debug("migrations resolved",
			slog.String("event", "resolve"),
			slog.String("path", dir),
			slog.Int("files_total", len(files)),
			slog.String("files_preview", preview),
			slog.Bool("files_truncated", more),
		)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(dir), cfg.URL())
	if err != nil {
		return fmt.Errorf("migrations init: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.MIG.Warn("migrate close", slog.String("err", errors.Join(srcErr, dbErr).Error()))
		}
	}()

	from := currentVersion(m)
	start := time.Now()
	upErr := m.Up()
	took := logger.RoundMS(time.Since(start))
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.MIG.Error("migration failed",
			slog.String("event", "apply"),
			slog.Uint64("from_ver", from),
			slog.Duration("duration", took),
			slog.String("err", upErr.Error()),
		)
		return fmt.Errorf("migrations up: %w", upErr)
	}

	to := currentVersion(m)
	applied := appliedBetween(files, from, to)
	logger.MIG.Info("migrations summary",
		slog.String("event", "summary"),
		slog.Uint64("from_ver", from),
		slog.Uint64("to_ver", to),
		slog.Int("files", len(applied)),
		slog.Duration("duration", took),
	)
	return nil
}

func currentVersion(m *migrate.Migrate) uint64 {
	v, _, err := m.Version()
	if err != nil {
		return 0
	}
	return uint64(v)
}

// listMigrationFiles returns the sorted *.up.sql names in dir.
func listMigrationFiles(dir string) []string {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	names := make([]string, 0, len(matches))
	for _, p := range matches {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil
	}
	return names
}

func fileVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

// appliedBetween lists files with a version in (from, to].
func appliedBetween(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := fileVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}

func resolveMigrationsDir(dir string) (string, error) {
	if dir == "" {
		dir = DefaultMigrationsDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("migrations dir: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("migrations dir: %w", err)
	}
	return abs, nil
}
