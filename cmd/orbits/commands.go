package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/orbits/internal/api"
	"github.com/banshee-data/orbits/internal/config"
	"github.com/banshee-data/orbits/internal/db"
	"github.com/banshee-data/orbits/internal/loader"
	"github.com/banshee-data/orbits/internal/monitoring"
	"github.com/banshee-data/orbits/internal/relative"
	"github.com/banshee-data/orbits/internal/render"
	"github.com/banshee-data/orbits/internal/security"
	"github.com/banshee-data/orbits/internal/sim"
	"github.com/banshee-data/orbits/internal/trajectory"
)

// sourceFlags select where trajectories are read from.
type sourceFlags struct {
	configPath string
	dataDir    string
	dbPath     string
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.configPath, "config", "", "Configuration file (.json, .yaml)")
	fs.StringVar(&s.dataDir, "data", "", "Directory of <body>.csv trajectories")
	fs.StringVar(&s.dbPath, "db", "", "SQLite trajectory store")
}

// open returns the configured loader and a func that releases it. With
// neither --data nor --db, the configured data directory is used.
func (s *sourceFlags) open(cfg *config.Config) (loader.Loader, func() error, error) {
	switch {
	case s.dataDir != "" && s.dbPath != "":
		return nil, nil, errors.New("--data and --db are mutually exclusive")
	case s.dbPath != "":
		d, err := db.NewDB(s.dbPath)
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil
	case s.dataDir != "":
		return loader.NewCSVLoader(s.dataDir), noClose, nil
	default:
		return loader.NewCSVLoader(cfg.GetDataDir()), noClose, nil
	}
}

func noClose() error { return nil }

// loadConfig reads path, or the defaults file when path is empty and the
// file exists. Without either, built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err != nil {
			return config.EmptyConfig(), nil
		}
		path = config.DefaultConfigPath
	}
	return config.LoadConfig(path)
}

func closeWith(err *error, close func() error) {
	if cerr := close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func runSimulate(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	configPath := fs.String("config", "", "Configuration file (.json, .yaml)")
	outDir := fs.String("out", "", "Directory for <body>.csv output (defaults to the configured data_dir)")
	dbPath := fs.String("db", "", "Also store the run in this SQLite database")
	noCSV := fs.Bool("no-csv", false, "Skip writing CSV files")
	steps := fs.Int("steps", 0, "Override the configured number of steps")
	timestep := fs.Duration("timestep", 0, "Override the configured timestep")
	note := fs.String("note", "", "Free-text note stored with the run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	runCfg := sim.FromConfig(cfg)
	if *steps > 0 {
		runCfg.Steps = *steps
	}
	if *timestep > 0 {
		runCfg.Timestep = *timestep
	}
	if *noCSV && *dbPath == "" {
		return errors.New("--no-csv needs --db, otherwise nothing is written")
	}

	trajs, err := sim.Run(ctx, runCfg)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	if !*noCSV {
		dir := *outDir
		if dir == "" {
			dir = cfg.GetDataDir()
		}
		paths, err := loader.WriteDir(dir, trajs)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(stdout, "wrote %s\n", p)
		}
	}

	if *dbPath != "" {
		return storeRun(ctx, *dbPath, runCfg, *note, trajs, stdout)
	}
	return nil
}

// storeRun records one run and its trajectories in the database at path.
func storeRun(ctx context.Context, path string, runCfg sim.Config, note string, trajs []trajectory.Trajectory, stdout io.Writer) (err error) {
	d, err := db.NewDB(path)
	if err != nil {
		return err
	}
	defer closeWith(&err, d.Close)

	runID, err := d.RecordRun(ctx, runCfg.Timestep, runCfg.Steps, note)
	if err != nil {
		return err
	}
	for _, t := range trajs {
		if err := d.SaveTrajectory(ctx, runID, t); err != nil {
			return err
		}
	}
	fmt.Fprintf(stdout, "stored run %s (%d bodies) in %s\n", runID, len(trajs), d.Path())
	return nil
}

func runImport(ctx context.Context, args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	configPath := fs.String("config", "", "Configuration file (.json, .yaml)")
	dataDir := fs.String("data", "", "Directory of <body>.csv files (defaults to the configured data_dir)")
	dbPath := fs.String("db", "", "SQLite database to import into (defaults to the configured db_path)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dataDir == "" {
		*dataDir = cfg.GetDataDir()
	}
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}

	src := loader.NewCSVLoader(*dataDir)
	ids, err := src.List(ctx)
	if err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		ids = fs.Args()
	}
	if len(ids) == 0 {
		return fmt.Errorf("no trajectories found in %s", *dataDir)
	}
	trajs, err := loader.LoadAll(ctx, src, ids...)
	if err != nil {
		return err
	}

	d, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer closeWith(&err, d.Close)

	for _, t := range trajs {
		if err := d.SaveTrajectory(ctx, "", t); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "imported %s\n", t)
	}
	return nil
}

// plotFlags are shared by plot and relative.
type plotFlags struct {
	sourceFlags
	format string
	out    string
}

func (p *plotFlags) register(fs *flag.FlagSet) {
	p.sourceFlags.register(fs)
	fs.StringVar(&p.format, "format", render.FormatPNG, "Output format: png or html")
	fs.StringVar(&p.out, "out", "", "Output file (defaults to a name derived from the bodies)")
}

// outputPath returns --out, or a filename built from parts plus ext.
func (p *plotFlags) outputPath(ext string, parts ...string) string {
	if p.out != "" {
		return p.out
	}
	return security.SafeFilename(parts...) + ext
}

func runPlot(ctx context.Context, args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	var pf plotFlags
	pf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: orbits plot [options] <body>")
	}

	cfg, err := loadConfig(pf.configPath)
	if err != nil {
		return err
	}
	r, ext, err := render.ForFormat(pf.format, cfg)
	if err != nil {
		return err
	}
	l, release, err := pf.open(cfg)
	if err != nil {
		return err
	}
	defer closeWith(&err, release)

	t, err := l.Load(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	t = relative.Identity(t)

	path := pf.outputPath(ext, t.Body)
	if err := render.RenderFile(r, path, t.String(), []render.Series{render.FromTrajectory(t)}); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return nil
}

func runRelative(ctx context.Context, args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("relative", flag.ContinueOnError)
	var pf plotFlags
	pf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: orbits relative [options] <reference> <other>")
	}

	cfg, err := loadConfig(pf.configPath)
	if err != nil {
		return err
	}
	r, ext, err := render.ForFormat(pf.format, cfg)
	if err != nil {
		return err
	}
	l, release, err := pf.open(cfg)
	if err != nil {
		return err
	}
	defer closeWith(&err, release)

	trajs, err := loader.LoadAll(ctx, l, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	pair, err := relative.ComputeRelative(trajs[0], trajs[1])
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s relative to %s", pair.Other.Body, pair.Reference.Body)
	path := pf.outputPath(ext, pair.Other.Body, "from", pair.Reference.Body)
	if err := render.RenderFile(r, path, title, render.FromPair(pair)); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return nil
}

func runServe(ctx context.Context, args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var src sourceFlags
	src.register(fs)
	listen := fs.String("listen", ":8080", "Listen address")
	assetsHost := fs.String("assets-host", "", "Serve chart javascript from this URL instead of the echarts CDN")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *listen == "" {
		return errors.New("listen address is required")
	}

	cfg, err := loadConfig(src.configPath)
	if err != nil {
		return err
	}
	l, release, err := src.open(cfg)
	if err != nil {
		return err
	}
	defer closeWith(&err, release)

	var admin func(*http.ServeMux) error
	if d, ok := l.(*db.DB); ok {
		admin = d.AttachAdminRoutes
	}

	srv := api.NewServer(l, cfg)
	if *assetsHost != "" {
		srv.SetChartAssetsHost(*assetsHost)
	}
	monitoring.Logf("serving trajectories on %s", *listen)
	return srv.Start(ctx, *listen, admin)
}

func runDelete(ctx context.Context, args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	configPath := fs.String("config", "", "Configuration file (.json, .yaml)")
	dbPath := fs.String("db", "", "SQLite database (defaults to the configured db_path)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: orbits delete [options] <body> [body...]")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}
	d, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer closeWith(&err, d.Close)

	for _, body := range fs.Args() {
		if err := d.DeleteTrajectory(ctx, body); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %s\n", body)
	}
	return nil
}

func runMigrate(ctx context.Context, args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	configPath := fs.String("config", "", "Configuration file (.json, .yaml)")
	dbPath := fs.String("db", "", "SQLite database (defaults to the configured db_path)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: orbits migrate [options] up|down|status|force <version>")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}

	d, err := db.OpenDB(*dbPath)
	if err != nil {
		return err
	}
	defer closeWith(&err, d.Close)

	migrations := db.MigrationsFS()
	switch action := fs.Arg(0); action {
	case "up":
		err = d.MigrateUp(migrations)
	case "down":
		err = d.MigrateDown(migrations)
	case "force":
		if fs.NArg() != 2 {
			return errors.New("usage: orbits migrate force <version>")
		}
		v, perr := strconv.Atoi(fs.Arg(1))
		if perr != nil {
			return fmt.Errorf("invalid version %q: %w", fs.Arg(1), perr)
		}
		err = d.MigrateForce(migrations, v)
	case "status":
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}
	if err != nil {
		return err
	}

	v, dirty, err := d.MigrateVersion(migrations)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: schema version %d", filepath.Base(d.Path()), v)
	if dirty {
		fmt.Fprint(stdout, " (dirty)")
	}
	fmt.Fprintln(stdout)
	return nil
}

func runRuns(ctx context.Context, args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	configPath := fs.String("config", "", "Configuration file (.json, .yaml)")
	dbPath := fs.String("db", "", "SQLite database (defaults to the configured db_path)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}
	d, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer closeWith(&err, d.Close)

	runs, err := d.Runs(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tTIMESTEP\tSTEPS\tNOTE")
	for _, r := range runs {
		step := time.Duration(r.TimestepSeconds * float64(time.Second))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.RunID, r.CreatedAt, step, r.Steps, r.Note)
	}
	return tw.Flush()
}
