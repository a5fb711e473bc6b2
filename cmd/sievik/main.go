// sievik runs SQL-style queries over large CSV files.
//
// Two modes share one binary: SQL mode takes a SELECT statement (joined
// from the arguments or piped via stdin), simple mode takes a file path
// plus flags. Exit code 0 on success, 1 on parse or execution error.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/spf13/cobra"

	"github.com/melihbirim/sievik/internal/engine"
	"github.com/melihbirim/sievik/internal/logger"
	"github.com/melihbirim/sievik/internal/options"
	"github.com/melihbirim/sievik/internal/sqlparser"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagSelect     string
	flagWhere      string
	flagOrderBy    string
	flagDesc       bool
	flagLimit      int
	flagConfig     string
	flagVerbose    bool
	flagCPUProfile string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sievik [\"SELECT ...\" | file.csv]",
		Short: "SQL queries over large CSV files",
		Long: `sievik executes projection/filter/sort/limit queries against CSV files,
memory-mapping large inputs and scanning them across all cores.

SQL mode:     sievik "SELECT name,amount FROM orders.csv WHERE amount > 10 ORDER BY amount DESC LIMIT 5"
Simple mode:  sievik orders.csv --select name,amount --where "amount > 10" --order-by amount --desc --limit 5

A file of '-' (or 'stdin') reads the data from standard input. With no
arguments the query text itself is read from standard input.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE:          run,
	}

	cmd.Flags().StringVar(&flagSelect, "select", "", "simple mode: comma-separated columns to project (default all)")
	cmd.Flags().StringVar(&flagWhere, "where", "", "simple mode: filter expression, e.g. \"amount > 10\"")
	cmd.Flags().StringVar(&flagOrderBy, "order-by", "", "simple mode: sort column")
	cmd.Flags().BoolVar(&flagDesc, "desc", false, "simple mode: sort descending")
	cmd.Flags().IntVar(&flagLimit, "limit", 0, "simple mode: maximum rows to emit (0 = unbounded)")
	cmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML tuning config")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "log execution strategy decisions")
	cmd.Flags().StringVar(&flagCPUProfile, "cpuprofile", "", "write a CPU profile to this file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	query, err := buildQuery(args, os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		return err
	}

	opts := options.Default()
	if flagConfig != "" {
		opts, err = options.FromFile(flagConfig)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
	}

	log := logger.Nop()
	if flagVerbose {
		log = logger.NewVerbose("sievik")
		defer func() { _ = log.Sync() }()
	}

	if flagCPUProfile != "" {
		f, err := os.Create(flagCPUProfile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create profile:", err)
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintln(os.Stderr, "start profile:", err)
			return err
		}
		defer pprof.StopCPUProfile()
	}

	writer := bufio.NewWriter(os.Stdout)
	defer func() {
		if err := writer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "flush output: %v\n", err)
		}
	}()

	if err := engine.New(opts, log).Execute(query, writer); err != nil {
		fmt.Fprintln(os.Stderr, "execution error:", err)
		return err
	}
	return nil
}

// buildQuery picks the mode from the first argument: a SELECT starts SQL
// mode, anything else is a simple-mode file path. With no arguments the
// SQL text is read from stdin, matching piped usage.
func buildQuery(args []string, stdin io.Reader) (sqlparser.Query, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return sqlparser.Query{}, fmt.Errorf("read query from stdin: %w", err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return sqlparser.Query{}, errors.New("usage: sievik \"SELECT ...\" or sievik file.csv [flags]")
		}
		return sqlparser.Parse(text)
	}

	if sqlparser.IsSQL(args[0]) {
		return sqlparser.Parse(strings.TrimSpace(strings.Join(args, " ")))
	}

	if len(args) > 1 {
		return sqlparser.Query{}, fmt.Errorf("unexpected arguments after %q", args[0])
	}
	return sqlparser.BuildSimple(args[0], flagSelect, flagWhere, flagOrderBy, flagDesc, flagLimit)
}
