package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/zenmarket/internal/obs"
	"github.com/noah-isme/zenmarket/internal/pricing"
)

// cli prices a cart document at the requested level.
// Exit code 0 = ok, 1 = pricing failure, 2 = usage or I/O error.
func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

const usage = "usage: cli [-v] level1|level2|level3 INFILE OUTFILE (use - for stdin/stdout)"

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprintln(stderr, usage) }
	verbose := fs.Bool("v", false, "log pricing details to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return 2
	}

	level, err := pricing.ParseLevel(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "cli: %v\n", err)
		fs.Usage()
		return 2
	}

	logLevel := "warn"
	if *verbose {
		logLevel = "debug"
	}
	logger := obs.NewLoggerTo(stderr, "console", logLevel).With().Str("level", level.String()).Logger()

	data, err := readInput(fs.Arg(1), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "cli: %v\n", err)
		return 2
	}

	started := time.Now()
	out, err := pricing.ComputeJSON(level, data)
	if err != nil {
		logger.Debug().Err(err).Str("code", pricing.Classify(err).Code).Msg("pricing failed")
		fmt.Fprintf(stderr, "cli: %s\n", oneLine(err))
		return 1
	}
	logger.Debug().Int("bytes", len(out)).Dur("elapsed", time.Since(started)).Msg("carts priced")

	if err := writeOutput(fs.Arg(2), stdout, out); err != nil {
		fmt.Fprintf(stderr, "cli: %v\n", err)
		return 2
	}
	return 0
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func oneLine(err error) string {
	return strings.TrimSpace(strings.ReplaceAll(err.Error(), "\n", " "))
}
