package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

// migrator is the subset of *migrate.Migrate the commands use.
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Force(version int) error
	Version() (uint, bool, error)
}

type command func(m migrator, args []string, out io.Writer) error

var commands = map[string]command{
	"up":      cmdUp,
	"down":    cmdDown,
	"version": cmdVersion,
	"force":   cmdForce,
	"goto":    cmdGoto,
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}
	name := strings.ToLower(strings.TrimSpace(os.Args[1]))
	cmd, ok := commands[name]
	if !ok {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	if err := godotenv.Load(envFile()); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load env file: %v", err)
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		log.Fatal("DB_URL is required")
	}

	migrationsDir, err := resolveMigrationsDir()
	if err != nil {
		log.Fatalf("resolve migrations dir: %v", err)
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer closeMigrator(m)

	if err := cmd(m, os.Args[2:], os.Stdout); err != nil {
		log.Printf("%s failed: %v", name, err)
		closeMigrator(m)
		os.Exit(1)
	}
}

func envFile() string {
	if v := strings.TrimSpace(os.Getenv("APP_ENV_FILE")); v != "" {
		return v
	}
	return ".env"
}

func cmdUp(m migrator, _ []string, out io.Writer) error {
	if err := ignoreNoChange(m.Up()); err != nil {
		return err
	}
	fmt.Fprintln(out, "migrations applied")
	return nil
}

func cmdDown(m migrator, args []string, out io.Writer) error {
	steps, err := parseSteps(args)
	if err != nil {
		return err
	}
	if err := ignoreNoChange(m.Steps(-steps)); err != nil {
		return err
	}
	fmt.Fprintf(out, "rolled back %d migration(s)\n", steps)
	return nil
}

func cmdVersion(m migrator, _ []string, out io.Writer) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(out, "version: none")
		fmt.Fprintln(out, "dirty: false")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	fmt.Fprintf(out, "version: %d\ndirty: %t\n", version, dirty)
	return nil
}

func cmdForce(m migrator, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("force requires a version argument")
	}
	version, err := parseVersion(args[0])
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	fmt.Fprintf(out, "forced version to %d\n", version)
	return nil
}

func cmdGoto(m migrator, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("goto requires a target version argument")
	}
	target, err := parseTarget(args[0])
	if err != nil {
		return err
	}
	if err := ignoreNoChange(m.Migrate(target)); err != nil {
		return err
	}
	fmt.Fprintf(out, "migrated to version %d\n", target)
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < -1 {
		return 0, fmt.Errorf("version must be >= -1")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Printf("close migration source: %v", srcErr)
	}
	if dbErr != nil {
		log.Printf("close migration db: %v", dbErr)
	}
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		"./db/migrations",
		"/app/db/migrations",
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migration directory not found (checked MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}

func printUsage(w io.Writer) {
	bin := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "usage: %s <up|down|version|force|goto> [args]\n", bin)
	fmt.Fprintln(w, "examples:")
	fmt.Fprintf(w, "  %s up\n", bin)
	fmt.Fprintf(w, "  %s down 1\n", bin)
	fmt.Fprintf(w, "  %s version\n", bin)
	fmt.Fprintf(w, "  %s force 3\n", bin)
	fmt.Fprintf(w, "  %s goto 2\n", bin)
}
