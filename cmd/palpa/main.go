package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/message"

	"github.com/zombor/palpa-deposit/internal/deposit"
	"github.com/zombor/palpa-deposit/internal/locale"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// Values from .env never override the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

var errNoSubcommand = errors.New("missing subcommand")

// app holds the parsed flags shared by the subcommands
type app struct {
	stdout io.Writer
	stderr io.Writer

	origin   *string
	timeout  *time.Duration
	logLevel *string
	noColor  *bool

	locale *string

	port     *int
	authUser *string
	authPass *string
}

// run parses args and executes the selected subcommand. Errors are reported
// on stderr before being returned.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.command()

	err := root.ParseAndRun(ctx, args, ff.WithEnvVarPrefix("PALPA"))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ff.ErrHelp), errors.Is(err, errNoSubcommand):
		selected := root.GetSelected()
		if selected == nil {
			selected = root
		}
		fmt.Fprintf(stderr, "%s\n", ffhelp.Command(selected))
		if errors.Is(err, ff.ErrHelp) {
			return nil
		}
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return err
}

func (a *app) command() *ff.Command {
	rootFlags := ff.NewFlagSet("palpa")
	a.origin = rootFlags.StringLong("origin", deposit.DefaultOrigin, "deposit service origin")
	a.timeout = rootFlags.DurationLong("timeout", 30*time.Second, "timeout of each request to the service")
	a.logLevel = rootFlags.StringLong("log-level", "info", "log level: debug, info, warn or error")
	a.noColor = rootFlags.BoolLong("no-color", "disable colored log output")

	lookupFlags := ff.NewFlagSet("lookup").SetParent(rootFlags)
	a.locale = lookupFlags.StringLong("locale", "EN", "response language: 0, 1, 2 or FI, SV, EN")

	serveFlags := ff.NewFlagSet("serve").SetParent(rootFlags)
	a.port = serveFlags.IntLong("port", 8080, "HTTP server port")
	a.authUser = serveFlags.StringLong("auth-user", "", "Basic auth username (optional)")
	a.authPass = serveFlags.StringLong("auth-pass", "", "Basic auth password (optional)")

	lookup := &ff.Command{
		Name:      "lookup",
		Usage:     "palpa lookup [FLAGS] EAN...",
		ShortHelp: "print the deposit information of one or more EAN codes",
		Flags:     lookupFlags,
		Exec:      a.lookup,
	}
	serve := &ff.Command{
		Name:      "serve",
		Usage:     "palpa serve [FLAGS]",
		ShortHelp: "serve deposit lookups over HTTP",
		Flags:     serveFlags,
		Exec:      a.serve,
	}

	return &ff.Command{
		Name:        "palpa",
		Usage:       "palpa [FLAGS] <SUBCOMMAND> ...",
		ShortHelp:   "beverage container deposits from the PALPA service",
		Flags:       rootFlags,
		Subcommands: []*ff.Command{lookup, serve},
		Exec: func(ctx context.Context, args []string) error {
			return errNoSubcommand
		},
	}
}

// logger builds the tint console logger and installs it as the default
func (a *app) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(*a.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", *a.logLevel)
	}

	logger := slog.New(tint.NewHandler(a.stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    *a.noColor,
	}))
	slog.SetDefault(logger)
	return logger, nil
}

func (a *app) client(metrics *deposit.Metrics) (*deposit.Client, error) {
	logger, err := a.logger()
	if err != nil {
		return nil, err
	}

	opts := []deposit.Option{
		deposit.WithOrigin(*a.origin),
		deposit.WithTimeout(*a.timeout),
		deposit.WithLogger(logger),
	}
	if metrics != nil {
		opts = append(opts, deposit.WithMetrics(metrics))
	}
	return deposit.NewClient(opts...)
}

// localeArgument passes ordinals on as ints so both forms resolve
func localeArgument(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func (a *app) lookup(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("at least one EAN is required")
	}

	l, err := locale.Resolve(localeArgument(*a.locale))
	if err != nil {
		return err
	}

	client, err := a.client(nil)
	if err != nil {
		return err
	}

	var (
		total  float64
		failed int
	)
	for i, arg := range args {
		if i > 0 {
			fmt.Fprintln(a.stdout)
		}

		n, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			fmt.Fprintf(a.stderr, "%s: %s\n", arg, locale.Messages.EANTypeError(l))
			failed++
			continue
		}

		rec, err := client.Fetch(ctx, deposit.EAN(n), l)
		if err != nil {
			fmt.Fprintf(a.stderr, "%s: %v\n", arg, err)
			failed++
			continue
		}

		fmt.Fprintln(a.stdout, rec)
		total += rec.Deposit
	}

	if len(args) > 1 {
		p := message.NewPrinter(l.Tag())
		fmt.Fprintf(a.stdout, "\n%s: %s€\n", locale.Messages.TotalValue(l), p.Sprintf("%.2f", total))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lookups failed", failed, len(args))
	}
	return nil
}

func (a *app) serve(ctx context.Context, args []string) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := deposit.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	client, err := a.client(metrics)
	if err != nil {
		return err
	}

	basicAuth := deposit.BasicAuth{
		Username: *a.authUser,
		Password: *a.authPass,
	}
	server := deposit.NewServer(client, basicAuth, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *a.port)
	errc := make(chan error, 1)
	go func() {
		errc <- server.Start(addr)
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "origin", *a.origin)
	if *a.authUser != "" || *a.authPass != "" {
		slog.Info("Basic auth enabled", "user", *a.authUser)
	}

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("Shutting down...")
		return nil
	}
}
