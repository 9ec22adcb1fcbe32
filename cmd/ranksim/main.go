package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/botirk38/ranksim"
	"github.com/botirk38/ranksim/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type command struct {
	summary string
	run     func(env *environment, args []string) error
}

var commands = map[string]command{
	"table":  {"print the 256-entry norm decode table", runTable},
	"encode": {"quantize values to norm bytes", runEncode},
	"decode": {"decode norm bytes", runDecode},
	"score":  {"evaluate the scoring formulas", runScore},
	"export": {"write a norm snapshot of a field", runExport},
	"import": {"restore a norm snapshot", runImport},
}

var commandOrder = []string{"table", "encode", "decode", "score", "export", "import"}

// environment carries what every command needs.
type environment struct {
	ranker *ranksim.Ranker
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var configPath string
	var verbose bool

	flagSet := pflag.NewFlagSet("ranksim", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return errors.New("no command given")
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", rest[0])
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}
		cfg = loaded
	}

	ranker, err := ranksim.New(cfg.Options(logger)...)
	if err != nil {
		return fmt.Errorf("create ranker: %w", err)
	}
	defer func() {
		if err := ranker.Close(); err != nil {
			logger.Warn("close ranker", "error", err)
		}
	}()

	logger.Debug("ranker ready", "command", rest[0], "similarity", cfg.Similarity.Type, "store", cfg.Store.Type)

	return cmd.run(&environment{
		ranker: ranker,
		logger: logger,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}, rest[1:])
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage:\n  ranksim [flags] <command> [args]\n\nCommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nFlags:\n")
	flagSet.PrintDefaults()
}

func runTable(env *environment, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("table takes no arguments")
	}
	table := env.ranker.Similarity().NormTable()
	for b, v := range table {
		fmt.Fprintf(env.stdout, "%3d\t%g\n", b, v)
	}
	return nil
}

func runEncode(env *environment, args []string) error {
	if len(args) == 0 {
		return errors.New("encode needs at least one value")
	}
	sim := env.ranker.Similarity()
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return fmt.Errorf("parse value %q: %w", arg, err)
		}
		b := sim.EncodeNorm(float32(v))
		fmt.Fprintf(env.stdout, "%s\t%d\t%g\n", arg, b, sim.DecodeNorm(b))
	}
	return nil
}

func runDecode(env *environment, args []string) error {
	if len(args) == 0 {
		return errors.New("decode needs at least one byte")
	}
	sim := env.ranker.Similarity()
	for _, arg := range args {
		b, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return fmt.Errorf("parse byte %q: %w", arg, err)
		}
		fmt.Fprintf(env.stdout, "%d\t%g\n", b, sim.DecodeNorm(byte(b)))
	}
	return nil
}

func runScore(env *environment, args []string) error {
	var field string
	var numTerms, docFreq, numDocs, distance, overlap, maxOverlap int
	var freq, sumOfSquares float64

	flagSet := pflag.NewFlagSet("score", pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	flagSet.StringVar(&field, "field", "body", "field name passed to the length norm")
	flagSet.IntVar(&numTerms, "num-terms", 1, "terms in the field")
	flagSet.Float64Var(&freq, "freq", 1, "term frequency")
	flagSet.IntVar(&distance, "distance", 0, "proximity edit distance")
	flagSet.IntVar(&docFreq, "doc-freq", 1, "documents containing the term")
	flagSet.IntVar(&numDocs, "num-docs", 1, "documents in the collection")
	flagSet.IntVar(&overlap, "overlap", 1, "matched query terms")
	flagSet.IntVar(&maxOverlap, "max-overlap", 1, "query terms")
	flagSet.Float64Var(&sumOfSquares, "sum-of-squares", 1, "sum of squared query term weights")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	sim := env.ranker.Similarity()
	lengthNorm := sim.LengthNorm(field, numTerms)
	encoded := sim.EncodeNorm(lengthNorm)

	fmt.Fprintf(env.stdout, "length_norm\t%g\n", lengthNorm)
	fmt.Fprintf(env.stdout, "encoded_norm\t%d\t%g\n", encoded, sim.DecodeNorm(encoded))
	fmt.Fprintf(env.stdout, "query_norm\t%g\n", sim.QueryNorm(float32(sumOfSquares)))
	fmt.Fprintf(env.stdout, "tf\t%g\n", sim.TF(float32(freq)))
	fmt.Fprintf(env.stdout, "sloppy_freq\t%g\n", sim.SloppyFreq(distance))
	fmt.Fprintf(env.stdout, "idf\t%g\n", sim.IDF(docFreq, numDocs))
	fmt.Fprintf(env.stdout, "coord\t%g\n", sim.Coord(overlap, maxOverlap))
	return nil
}

func runExport(env *environment, args []string) error {
	var field, output string

	flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	flagSet.StringVar(&field, "field", "", "field to export (required)")
	flagSet.StringVarP(&output, "output", "o", "-", "snapshot file, - for stdout")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if field == "" {
		return errors.New("export needs --field")
	}

	w := env.stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create snapshot: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := env.ranker.ExportNorms(context.Background(), field, w); err != nil {
		return fmt.Errorf("export %s: %w", field, err)
	}
	env.logger.Info("norms exported", "field", field, "output", output)
	return nil
}

func runImport(env *environment, args []string) error {
	var input string

	flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	flagSet.StringVarP(&input, "input", "i", "-", "snapshot file, - for stdin")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	r := env.stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := env.ranker.ImportNorms(context.Background(), r); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	env.logger.Info("norms imported", "input", input)
	return nil
}
