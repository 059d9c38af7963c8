package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/evanschultz/achiever/internal/adapters/storage/jsonfile"
	"github.com/evanschultz/achiever/internal/adapters/storage/sqlite"
	"github.com/evanschultz/achiever/internal/app"
	"github.com/evanschultz/achiever/internal/config"
	"github.com/evanschultz/achiever/internal/platform"
	"github.com/evanschultz/achiever/internal/render"
)

// version is replaced at build time.
var version = "dev"

// idFactory and clock are swapped out by tests.
var (
	idFactory = uuid.NewString
	clock     = time.Now
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes args against it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCmd(newCLI(stderr))
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// cli carries global flag values and the hooks commands share.
type cli struct {
	stderr io.Writer

	configPath string
	dbPath     string
	appName    string
	devMode    bool

	newID func() string
	now   func() time.Time
}

func newCLI(stderr io.Writer) *cli {
	return &cli{
		stderr: stderr,
		newID:  idFactory,
		now:    clock,
	}
}

func newRootCmd(c *cli) *cobra.Command {
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("ACHIEVER_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	appName := "achiever"
	if envApp := strings.TrimSpace(os.Getenv("ACHIEVER_APP_NAME")); envApp != "" {
		appName = envApp
	}

	cmd := &cobra.Command{
		Use:          "achiever",
		Short:        "Track targets, actions, steps, tasks and obstacles",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Create an account and a first target
  achiever user register --email me@example.com --password secret
  achiever target add --title "Run a marathon" --category health --subcategory exercise

  # Break it down
  achiever action add <target> --title "Train" --urgency high
  achiever step add <target> <action> --description "Base miles"
  achiever task add <target> <action> <step> --description "Long run" --deadline 2026-05-01

  # See where you stand
  achiever stats
`),
	}
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config TOML")
	cmd.PersistentFlags().StringVar(&c.dbPath, "db", "", "path to the storage backend (sqlite file or documents dir)")
	cmd.PersistentFlags().StringVar(&c.appName, "app", appName, "application name for config/data path resolution")
	cmd.PersistentFlags().BoolVar(&c.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	cmd.AddCommand(newPathsCmd(c))
	cmd.AddCommand(newUserCmd(c))
	cmd.AddCommand(newTargetCmd(c))
	cmd.AddCommand(newActionCmd(c))
	cmd.AddCommand(newStepCmd(c))
	cmd.AddCommand(newTaskCmd(c))
	cmd.AddCommand(newObstacleCmd(c))
	cmd.AddCommand(newStatsCmd(c))
	cmd.AddCommand(newExportCmd(c))
	cmd.AddCommand(newImportCmd(c))
	return cmd
}

// documentBackend is a persister whose lifetime the CLI owns.
type documentBackend interface {
	app.Persister
	Close() error
}

// documentTimestamps is implemented by backends that track when a document was last written.
type documentTimestamps interface {
	DocumentUpdatedAt(ctx context.Context, key string) (time.Time, error)
}

// environment is the resolved configuration for one invocation.
type environment struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
}

// resolve applies flag, env and config-file precedence.
func (c *cli) resolve() (environment, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.appName,
		DevMode: c.devMode,
	})
	if err != nil {
		return environment{}, err
	}

	configPath := strings.TrimSpace(c.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("ACHIEVER_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(c.dbPath)
	if dbPath == "" {
		dbPath = strings.TrimSpace(os.Getenv("ACHIEVER_DB_PATH"))
	}

	cfg, err := config.Load(configPath, config.Default(paths.DBPath))
	if err != nil {
		return environment{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	switch {
	case dbPath != "":
		cfg.Storage.Path = dbPath
	case cfg.Storage.Backend == config.BackendJSONFile && cfg.Storage.Path == paths.DBPath:
		cfg.Storage.Path = paths.DocumentsDir
	}
	return environment{paths: paths, configPath: configPath, cfg: cfg}, nil
}

// openBackend opens the configured storage backend.
func openBackend(cfg config.StorageConfig) (documentBackend, error) {
	switch cfg.Backend {
	case config.BackendJSONFile:
		return jsonfile.Open(cfg.Path)
	case config.BackendSQLite:
		return sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// session is an open store plus everything needed to render and close it.
type session struct {
	env      environment
	logger   *runtimeLogger
	backend  documentBackend
	store    *app.Store
	renderer *render.Renderer
}

// openSession resolves config, opens logging and storage, and hydrates the store.
func (c *cli) openSession(ctx context.Context) (*session, error) {
	env, err := c.resolve()
	if err != nil {
		return nil, err
	}
	logger, err := newRuntimeLogger(c.stderr, c.appName, c.devMode, env.cfg.Logging, env.paths.LogDir, c.now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Debug("configuration loaded", "config_path", env.configPath, "backend", env.cfg.Storage.Backend, "storage_path", env.cfg.Storage.Path, "log_level", env.cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}

	logger.Debug("opening storage backend", "backend", env.cfg.Storage.Backend, "path", env.cfg.Storage.Path)
	backend, err := openBackend(env.cfg.Storage)
	if err != nil {
		logger.Error("storage open failed", "backend", env.cfg.Storage.Backend, "path", env.cfg.Storage.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open %s storage: %w", env.cfg.Storage.Backend, err)
	}

	store, err := app.Open(ctx, backend,
		app.WithLogger(logger.Console()),
		app.WithNamespace(env.cfg.Storage.Namespace),
		app.WithClock(c.now),
	)
	if err != nil {
		_ = backend.Close()
		_ = logger.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &session{
		env:      env,
		logger:   logger,
		backend:  backend,
		store:    store,
		renderer: render.New(env.cfg.Categories, render.WithClock(c.now)),
	}, nil
}

// close flushes the store, then closes storage and the log file.
func (s *session) close() error {
	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("save state: %w", err))
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Warn("storage close failed", "path", s.env.cfg.Storage.Path, "err", err)
	}
	if err := s.logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close runtime log sink: %w", err))
	}
	return errors.Join(errs...)
}

// withSession runs fn against an open session and always closes it.
func (c *cli) withSession(cmd *cobra.Command, name string, fn func(*session) error) (err error) {
	s, err := c.openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	s.logger.Debug("command flow start", "command", name)
	if err := fn(s); err != nil {
		s.logger.Debug("command flow failed", "command", name, "err", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	s.logger.Debug("command flow complete", "command", name)
	return nil
}

func newPathsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show resolved config and storage locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.resolve()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", c.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", c.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", env.configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", env.paths.DataDir)
			_, _ = fmt.Fprintf(out, "backend: %s\n", env.cfg.Storage.Backend)
			_, _ = fmt.Fprintf(out, "storage: %s\n", env.cfg.Storage.Path)
			_, _ = fmt.Fprintf(out, "namespace: %s\n", env.cfg.Storage.Namespace)
			_, _ = fmt.Fprintf(out, "last_saved: %s\n", lastSaved(cmd.Context(), env.cfg.Storage))
			return nil
		},
	}
}

// lastSaved reports when the state document was last written, without creating storage.
func lastSaved(ctx context.Context, cfg config.StorageConfig) string {
	if _, err := os.Stat(cfg.Path); err != nil {
		return "never"
	}
	backend, err := openBackend(cfg)
	if err != nil {
		return "unknown"
	}
	defer backend.Close()
	stamps, ok := backend.(documentTimestamps)
	if !ok {
		return "unknown"
	}
	at, err := stamps.DocumentUpdatedAt(ctx, cfg.Namespace)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			return "never"
		}
		return "unknown"
	}
	return at.UTC().Format(time.RFC3339)
}

// parseBoolEnv parses a boolean environment variable, reporting whether it was set.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
