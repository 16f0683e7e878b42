package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/vegasq/askdata/agent"
	"github.com/vegasq/askdata/config"
	"github.com/vegasq/askdata/engine"
	"github.com/vegasq/askdata/output"
	"github.com/vegasq/askdata/reader"
)

const (
	envDataPath = "ASKDATA_DATA_PATH"
	envConfig   = "ASKDATA_CONFIG"
)

// errUnanswered is returned after a one-shot question whose diagnostic was
// already printed.
var errUnanswered = errors.New("question not answered")

// options holds the flag values shared by every command.
type options struct {
	dataPath    string
	fromURL     string
	downloadDir string
	sep         string
	sheet       string
	dateCol     string
	configPath  string
	seed        uint64
	query       string
	output      string
	logLevel    string
	noColor     bool

	cfg    *config.Config
	logger log.Logger
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errUnanswered) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "askdata",
		Short: "Ask questions about a tabular data file",
		Long: "askdata loads a CSV, Excel or Parquet file and answers bounded questions about it\n" +
			"(aggregates, distributions, trends, top rows, correlations and anomalies)\n" +
			"with the plan and method behind every answer.",
		Example: `  askdata --data-path nominations.parquet
  askdata --data-path nominations.csv -q "sum scheduled_quantity by state_abb"
  askdata --from-url https://example.com/nominations.csv -o json -q "describe"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := opts.session(cmd)
			if err != nil {
				return err
			}
			if opts.query != "" {
				return opts.answer(cmd.OutOrStdout(), cmd.ErrOrStderr(), sess, opts.query)
			}
			return opts.repl(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), sess)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataPath, "data-path", "", "CSV, TXT, XLSX/XLSM or Parquet file, or a Parquet glob (env "+envDataPath+")")
	flags.StringVar(&opts.fromURL, "from-url", "", "download the data file from an HTTP(S) or Google Drive URL")
	flags.StringVar(&opts.downloadDir, "download-dir", "", "directory for --from-url downloads (default: a new temporary directory)")
	flags.StringVar(&opts.sep, "sep", "", `CSV delimiter; sniffed among , ; \t | when empty`)
	flags.StringVar(&opts.sheet, "sheet", "", "XLSX worksheet (default: the first sheet)")
	flags.StringVar(&opts.dateCol, "date-col", "", "column trend questions group by year")
	flags.StringVar(&opts.configPath, "config", "", "YAML config file (env "+envConfig+")")
	flags.Uint64Var(&opts.seed, "seed", 0, "isolation forest seed")
	flags.StringVarP(&opts.output, "output", "o", "table", "output format ("+strings.Join(output.Formats, ", ")+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error, none)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	rootCmd.Flags().StringVarP(&opts.query, "query", "q", "", "answer one question and exit")

	rootCmd.AddCommand(newSchemaCmd(opts))
	return rootCmd
}

// resolve applies precedence flag > env > config file > default.
func (o *options) resolve(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if !flags.Changed("data-path") {
		o.dataPath = os.Getenv(envDataPath)
	}
	if !flags.Changed("config") {
		o.configPath = os.Getenv(envConfig)
	}

	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if flags.Changed("sep") {
		sep, err := parseDelimiter(o.sep)
		if err != nil {
			return err
		}
		cfg.Reader.Delimiter = sep
	}
	if flags.Changed("sheet") {
		cfg.Reader.Sheet = o.sheet
	}
	if flags.Changed("date-col") {
		cfg.DateColumn = o.dateCol
	}
	if flags.Changed("seed") {
		cfg.Anomaly.IsolationForest.Seed = o.seed
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := output.New(o.output, io.Discard); err != nil {
		return err
	}
	if o.noColor {
		color.NoColor = true
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(cmd.ErrOrStderr()))
	logger = level.NewFilter(logger, cfg.LevelFilter())
	o.logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	o.cfg = cfg
	return nil
}

// parseDelimiter accepts a single character or the names tab and \t.
func parseDelimiter(s string) (string, error) {
	switch strings.ToLower(s) {
	case `\t`, "tab":
		return "\t", nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return "", fmt.Errorf("--sep must be a single character, got %q", s)
	}
	return s, nil
}

// load reads the data file, downloading it first for --from-url.
func (o *options) load(cmd *cobra.Command) (*reader.Data, error) {
	path := o.dataPath
	if o.fromURL != "" {
		dir := o.downloadDir
		if dir == "" {
			tmp, err := os.MkdirTemp("", "askdata-")
			if err != nil {
				return nil, fmt.Errorf("failed to create download directory: %w", err)
			}
			dir = tmp
		}
		downloaded, err := reader.Download(cmd.Context(), o.fromURL, dir, reader.WithDownloadLogger(o.logger))
		if err != nil {
			return nil, err
		}
		path = downloaded
	}
	if path == "" {
		return nil, fmt.Errorf("no data file: pass --data-path or --from-url, or set %s", envDataPath)
	}

	var delim rune
	if d := o.cfg.Reader.Delimiter; d != "" {
		delim, _ = utf8.DecodeRuneInString(d)
	}
	return reader.Load(path, reader.Options{
		Delimiter:  delim,
		Sheet:      o.cfg.Reader.Sheet,
		DateColumn: o.cfg.DateColumn,
		Logger:     o.logger,
	})
}

func (o *options) session(cmd *cobra.Command) (*agent.Session, error) {
	data, err := o.load(cmd)
	if err != nil {
		return nil, err
	}
	if o.output == "table" {
		banner := color.New(color.FgCyan)
		if o.noColor {
			banner.DisableColor()
		}
		banner.Fprintf(cmd.ErrOrStderr(), "Loaded %s rows x %d columns from %s\n",
			humanize.Comma(int64(data.Table.Len())), data.Table.Width(), data.Path)
	}

	return agent.NewSession(data.Table, data.Schema,
		agent.WithLogger(o.logger),
		agent.WithEngine(engine.New(o.cfg.EngineOptions(o.logger)...)),
		agent.WithQueryOptions(o.cfg.QueryOptions()...),
	)
}

// answer asks one question and writes the answer in the chosen format.
// Diagnostics go to errOut except in json mode, where they are part of
// the answer object.
func (o *options) answer(out, errOut io.Writer, sess *agent.Session, question string) error {
	ans := sess.Ask(question)

	var err error
	switch o.output {
	case "json":
		err = output.WriteAnswerJSON(out, ans)
	case "csv":
		if ans.Err != nil {
			err = output.NewAnswerFormatter(errOut).Write(ans)
		} else {
			err = output.NewCSVFormatter(out).Format(ans.Result.Table)
		}
	default:
		f := output.NewAnswerFormatter(out,
			output.WithPreviewRows(output.DefaultPreviewRows),
			output.WithColor(!o.noColor && !color.NoColor))
		err = f.Write(ans)
	}
	if err != nil {
		return fmt.Errorf("failed to write answer: %w", err)
	}
	if ans.Err != nil {
		return errUnanswered
	}
	return nil
}
