// Command roboscout aggregates RobotEvents season results for a list of
// teams and writes ranked text and CSV reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/roboscout/internal/adapters/http/api"
	"github.com/okian/roboscout/internal/adapters/robotevents"
	service "github.com/okian/roboscout/internal/app"
	"github.com/okian/roboscout/internal/config"
	"github.com/okian/roboscout/internal/domain/scoring"
	"github.com/okian/roboscout/internal/prompt"
	"github.com/okian/roboscout/internal/report"
	"github.com/okian/roboscout/pkg/logger"
)

// ErrMissingInput is returned when prompting is disabled and a required
// value was not supplied.
var ErrMissingInput = errors.New("missing input")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// cli holds flag values and the process streams.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	configPath  string
	logLevel    string
	token       string
	baseURL     string
	season      int
	teams       []string
	sortKey     string
	outputDir   string
	workers     int
	roundPolicy string
	metricsAddr string
	rankings    bool
	noDivisions bool
	noPrompt    bool
	runID       string

	// explore
	exploreID      string
	exploreFilters map[string]string
	exploreSave    bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut, now: time.Now}

	rootCmd := &cobra.Command{
		Use:           "roboscout",
		Short:         "Aggregate RobotEvents season results per team",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          c.runReport,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (YAML, or TOML by extension); defaults to $ROBOSCOUT_CONFIG")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&c.token, "token", "", "RobotEvents API key")
	pf.StringVar(&c.baseURL, "base-url", "", "API base URL")

	c.addReportFlags(rootCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate teams and write text and CSV reports",
		Args:  cobra.NoArgs,
		RunE:  c.runReport,
	}
	c.addReportFlags(reportCmd)

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(c.newExploreCmd())
	return rootCmd
}

func (c *cli) addReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&c.season, "season", 0, "season id, e.g. 191 for 2024-2025")
	f.StringSliceVar(&c.teams, "teams", nil, "comma-separated team codes")
	f.StringVar(&c.sortKey, "sort", "", "sort key: skill_avg, qual_avg, best_qual, qual_then_skill")
	f.StringVar(&c.outputDir, "output-dir", "", "directory receiving the report files")
	f.IntVar(&c.workers, "workers", 0, "teams aggregated at once")
	f.StringVar(&c.roundPolicy, "round-policy", "", "round policy: single or double")
	f.StringVar(&c.metricsAddr, "metrics-addr", "", "serve /metrics and /stats on this address during the run")
	f.BoolVar(&c.rankings, "rankings", false, "fetch per-event rankings")
	f.BoolVar(&c.noDivisions, "no-divisions", false, "do not list matches per division")
	f.BoolVar(&c.noPrompt, "no-prompt", false, "never prompt; fail when a required value is missing")
	f.StringVar(&c.runID, "run-id", "", "identifier attached to every log record; generated when empty")
}

// setup initializes logging and loads configuration with flag overrides.
func (c *cli) setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	if err := logger.InitWithWriter(c.errOut); err != nil {
		return nil, nil, fmt.Errorf("initialize logging: %w", err)
	}
	ctx := cmd.Context()

	path := c.configPath
	if path == "" {
		path = os.Getenv("ROBOSCOUT_CONFIG")
	}
	cfg, err := config.LoadFrom(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	c.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, log, nil
}

func (c *cli) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if changed("token") {
		cfg.APIToken = c.token
	}
	if changed("base-url") {
		cfg.BaseURL = c.baseURL
	}
	if changed("season") {
		cfg.Season = c.season
	}
	if changed("sort") {
		cfg.SortKey = c.sortKey
	}
	if changed("output-dir") {
		cfg.OutputDir = c.outputDir
	}
	if changed("workers") {
		cfg.WorkerCount = c.workers
	}
	if changed("round-policy") {
		cfg.RoundPolicy = c.roundPolicy
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = c.metricsAddr
	}
	if changed("rankings") {
		cfg.FetchRankings = c.rankings
	}
	if changed("no-divisions") {
		cfg.DivisionFallback = !c.noDivisions
	}
}

// gather fills the run inputs that neither flags nor configuration supplied.
func (c *cli) gather(cmd *cobra.Command, cfg *config.Config) ([]string, report.SortKey, error) {
	p := c.prompter()
	sortGiven := cmd.Flags().Changed("sort")

	if c.noPrompt {
		if cfg.Season <= 0 {
			return nil, "", fmt.Errorf("%w: --season", ErrMissingInput)
		}
		if len(service.NormalizeCodes(c.teams)) == 0 {
			return nil, "", fmt.Errorf("%w: --teams", ErrMissingInput)
		}
		sortGiven = true
	}

	if cfg.APIToken == "" && !c.noPrompt {
		token, err := p.Token()
		if err != nil {
			return nil, "", err
		}
		cfg.APIToken = token
	}
	if cfg.Season <= 0 {
		season, err := p.Season()
		if err != nil {
			return nil, "", err
		}
		cfg.Season = season
	}
	codes := service.NormalizeCodes(c.teams)
	if len(codes) == 0 {
		asked, err := p.Codes()
		if err != nil {
			return nil, "", err
		}
		codes = service.NormalizeCodes(asked)
	}

	if sortGiven {
		key, err := report.ParseSortKey(cfg.SortKey)
		return codes, key, err
	}
	key, err := p.SortKey()
	if err != nil {
		return nil, "", err
	}
	return codes, key, nil
}

// prompter reads the API key without echo when stdin is a terminal.
func (c *cli) prompter() *prompt.Prompter {
	p := prompt.New(c.in, c.out)
	if f, ok := c.in.(*os.File); ok {
		p.WithSecretInput(prompt.HiddenInput(f))
	}
	return p
}

func (c *cli) runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, log, err := c.setup(cmd)
	if err != nil {
		return err
	}
	codes, key, err := c.gather(cmd, cfg)
	if err != nil {
		return err
	}
	policy, err := scoring.ParseRoundPolicy(cfg.RoundPolicy)
	if err != nil {
		return err
	}

	client := robotevents.New(append(robotevents.OptionsFromConfig(cfg),
		robotevents.WithLogger(log.Named("robotevents")))...)
	svc := service.New(client,
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithRoundPolicy(policy),
		service.WithDivisionFallback(cfg.DivisionFallback),
		service.WithRankings(cfg.FetchRankings, cfg.RankingsFallback),
		service.WithRunID(c.runID),
	)
	log.Info(ctx, "report started",
		logger.String("run_id", svc.RunID()),
		logger.String("base_url", client.BaseURL()),
		logger.Int("teams", len(codes)),
	)

	if cfg.MetricsAddr != "" {
		addr, stopStatus, err := api.NewServer(svc, log).Start(ctx, cfg.MetricsAddr)
		if err != nil {
			log.Warn(ctx, "status server disabled", logger.Error(err))
		} else {
			defer stopStatus()
			log.Info(ctx, "status server started", logger.String("addr", addr))
		}
	}

	aggs := svc.Run(ctx, codes, cfg.Season)
	if err := ctx.Err(); err != nil {
		log.Warn(ctx, "run interrupted; writing partial report", logger.Int("teams", len(aggs)))
	}
	if len(aggs) == 0 {
		_, _ = fmt.Fprintln(c.out, "No team data was retrieved.")
		return nil
	}

	files, err := report.Write(cfg.OutputDir, cfg.OutputPrefix, aggs, key, c.now())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "\nTeams sorted by %s:\n", key.Label())
	if err := report.Table(c.out, report.Sort(aggs, key)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "\nResults saved to %s and %s\n", files.Text, files.CSV)
	_, _ = fmt.Fprintf(c.out, "Run ID: %s\n", svc.RunID())
	log.Info(ctx, "report written",
		logger.String("text", files.Text),
		logger.String("csv", files.CSV),
		logger.Int("teams", len(aggs)),
	)
	return nil
}
