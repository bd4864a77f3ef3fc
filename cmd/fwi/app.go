package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/HatiCode/fwirelay/cmd/fwi/config"
	"github.com/HatiCode/fwirelay/pkg/client"
	"github.com/HatiCode/fwirelay/pkg/dashboard"
	"github.com/HatiCode/fwirelay/pkg/fwi"
	"github.com/HatiCode/fwirelay/pkg/history"
	"github.com/HatiCode/fwirelay/pkg/logger"
)

// errReported marks an error already printed for the user.
var errReported = errors.New("reported")

type app struct {
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	summary string
	run     func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"predict": {summary: "Submit one set of readings", run: (*app).predict},
	"batch":   {summary: "Submit every reading in a JSON or YAML file", run: (*app).batch},
	"history": {summary: "Show recorded predictions and summary", run: (*app).history},
	"chart":   {summary: "Chart recorded predictions (text, svg or png)", run: (*app).chart},
}

func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		a.usage()
		if len(args) == 0 {
			return 2
		}
		return 0
	}
	if args[0] == "version" {
		fmt.Fprintln(a.stdout, version)
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.stderr, "Error: unknown command %q\n\n", args[0])
		a.usage()
		return 2
	}

	err := cmd.run(a, ctx, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintln(a.stderr, "Error:", err)
		return 1
	}
}

func (a *app) usage() {
	fmt.Fprintln(a.stderr, "Usage: fwi <command> [flags]")
	fmt.Fprintln(a.stderr)
	fmt.Fprintln(a.stderr, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.stderr, "  %-8s %s\n", name, commands[name].summary)
	}
}

// env is what a subcommand needs once its flags are parsed.
type env struct {
	cfg     *config.Config
	log     *slog.Logger
	history *history.History
	close   func() error
}

func (a *app) newFlagSet(name string) (*flag.FlagSet, *config.Config) {
	fs := flag.NewFlagSet("fwi "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs, config.Register(fs)
}

func (a *app) setup(fs *flag.FlagSet, cfg *config.Config, args []string) (*env, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewWithWriter(a.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("history opened", "store", cfg.Store)

	return &env{cfg: cfg, log: log, history: history.New(store), close: closeStore}, nil
}

func openStore(cfg *config.Config) (history.Store, func() error, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return history.NewMemoryStore(), func() error { return nil }, nil
	case config.StoreSQLite:
		s, err := history.NewSQLiteStore(cfg.HistoryDB)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite history: %w", err)
		}
		return s, s.Close, nil
	case config.StoreRedis:
		s, err := history.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKey, cfg.RedisTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis history: %w", err)
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("invalid store %q", cfg.Store)
}

func (e *env) session() (*client.Session, error) {
	c, err := client.New(e.cfg.RelayURL,
		client.WithHTTPClient(&http.Client{Timeout: e.cfg.Timeout}),
		client.WithLogger(e.log),
	)
	if err != nil {
		return nil, err
	}
	return client.NewSession(c, e.history), nil
}

// report prints a submission failure the way the user should see it.
func (a *app) report(err error) error {
	var verr *fwi.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(a.stderr, "Invalid input:")
		for _, f := range verr.Fields {
			fmt.Fprintf(a.stderr, "  - %s\n", f.Error())
		}
		return errReported
	}
	fmt.Fprintln(a.stderr, "Error:", client.Message(err))
	return errReported
}

func (a *app) predict(ctx context.Context, args []string) error {
	fs, cfg := a.newFlagSet("predict")
	values := map[string]*string{}
	for _, field := range fwi.NumericFields {
		r := fwi.Ranges[field]
		values[field] = fs.String(strings.ToLower(field), "", fmt.Sprintf("%s (%s)", field, r))
	}
	values[fwi.FieldRegion] = fs.String("region", "", "Region: bejaia or sidi-bel-abbes")

	e, err := a.setup(fs, cfg, args)
	if err != nil {
		return err
	}
	defer e.close()

	form := make(map[string]string, len(values))
	for field, v := range values {
		form[field] = *v
	}

	sess, err := e.session()
	if err != nil {
		return err
	}
	rec, err := sess.SubmitForm(ctx, form)
	if err != nil {
		return a.report(err)
	}
	return dashboard.WriteRecord(a.stdout, rec)
}

func (a *app) batch(ctx context.Context, args []string) error {
	fs, cfg := a.newFlagSet("batch")
	file := fs.String("f", "", "Readings file (json or yaml); - reads stdin")
	format := fs.String("format", "", "File format: json or yaml (default: from extension)")

	e, err := a.setup(fs, cfg, args)
	if err != nil {
		return err
	}
	defer e.close()

	if *file == "" {
		return errors.New("-f is required")
	}
	if *format == "" {
		*format = fwi.BatchFormat(*file)
	}

	var r io.Reader = os.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()
		r = f
	}

	inputs, err := fwi.DecodeBatch(r, *format)
	if err != nil {
		return err
	}

	sess, err := e.session()
	if err != nil {
		return err
	}
	outcomes, err := sess.SubmitAll(ctx, inputs)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(a.stdout, "#%d  error: %s\n", o.Index+1, failureText(o.Err))
			continue
		}
		fmt.Fprintf(a.stdout, "#%d  FWI %.2f  %s\n", o.Index+1, o.Record.Result, o.Record.Band())
	}
	fmt.Fprintf(a.stdout, "%d submitted, %d failed\n", len(outcomes)-failed, failed)

	if failed > 0 {
		return errReported
	}
	return nil
}

func failureText(err error) string {
	var verr *fwi.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return client.Message(err)
}

func (a *app) history(ctx context.Context, args []string) error {
	fs, cfg := a.newFlagSet("history")

	e, err := a.setup(fs, cfg, args)
	if err != nil {
		return err
	}
	defer e.close()

	records, err := e.history.Records(ctx)
	if err != nil {
		return err
	}
	if err := dashboard.WriteTable(a.stdout, records); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	fmt.Fprintln(a.stdout)
	return dashboard.WriteSummary(a.stdout, history.Summarize(records))
}

func (a *app) chart(ctx context.Context, args []string) error {
	fs, cfg := a.newFlagSet("chart")
	format := fs.String("format", "text", "Chart format: text, svg or png")
	out := fs.String("o", "", "Output file (default: stdout)")
	width := fs.Int("width", 0, "Chart width (characters for text, pixels for images)")
	height := fs.Int("height", 0, "Image height in pixels")

	e, err := a.setup(fs, cfg, args)
	if err != nil {
		return err
	}
	defer e.close()

	var renderer dashboard.ChartRenderer
	if *format == "text" {
		renderer = dashboard.TextChart{Width: *width}
	} else {
		f, err := dashboard.ParseImageFormat(*format)
		if err != nil {
			return err
		}
		renderer = dashboard.ImageChart{Format: f, Width: *width, Height: *height, Title: "FWI history"}
	}

	series, err := e.history.Series(ctx)
	if err != nil {
		return err
	}

	w := a.stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create chart file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := renderer.Render(w, series); err != nil {
		return err
	}
	if *out != "" {
		e.log.Info("chart written", "path", *out, "points", len(series.Points))
	}
	return nil
}
