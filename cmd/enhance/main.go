// Command enhance fills sections 2 and 3 of templated study notes using a
// model served by LM Studio or any OpenAI-compatible endpoint.
//
// Usage:
//
//	enhance [flags] <note>... <output_dir>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dgallion1/notegest/internal/config"
	"github.com/dgallion1/notegest/internal/enhance"
	"github.com/dgallion1/notegest/internal/llm"
	"github.com/dgallion1/notegest/internal/notestore"
	"github.com/dgallion1/notegest/internal/reply"
)

type cliFlags struct {
	APIBase     string
	Model       string
	APIKey      string
	Temperature float64
	Format      string
	NoTags      bool
	Timeout     time.Duration
	Concurrency int
	Verbose     bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var flags cliFlags
	fs := flag.NewFlagSet("enhance", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: enhance [flags] <note>... <output_dir>")
		fs.PrintDefaults()
	}
	fs.StringVar(&flags.APIBase, "api-base", cfg.LLM.BaseURL, "OpenAI-compatible endpoint base URL (LM_STUDIO_API_BASE)")
	fs.StringVar(&flags.Model, "model", cfg.LLM.Model, "model name to request (LM_STUDIO_MODEL)")
	fs.StringVar(&flags.APIKey, "api-key", cfg.LLM.APIKey, "optional API key (LM_STUDIO_API_KEY)")
	fs.Float64Var(&flags.Temperature, "temperature", cfg.LLM.Temperature, "sampling temperature")
	fs.StringVar(&flags.Format, "format", cfg.ReplyFormat, `reply format: "markdown" or "json"`)
	fs.BoolVar(&flags.NoTags, "no-tags", !cfg.RewriteTags, "do not rewrite the tags field from json replies")
	fs.DurationVar(&flags.Timeout, "timeout", cfg.LLM.Timeout, "model request timeout")
	fs.IntVar(&flags.Concurrency, "concurrency", cfg.MaxConcurrentNotes, "notes enhanced at once")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log debug output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return errors.New("need at least one note and an output directory")
	}
	notes, outDir := fs.Args()[:fs.NArg()-1], fs.Arg(fs.NArg()-1)

	for _, n := range notes {
		if st, err := os.Stat(n); err != nil || st.IsDir() {
			return fmt.Errorf("input note not found: %s", n)
		}
	}

	format, err := reply.ParseFormat(flags.Format)
	if err != nil {
		return err
	}
	decoder, err := reply.NewDecoder(format)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if flags.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	client := llm.NewClient(llm.Options{
		BaseURL:     flags.APIBase,
		Model:       flags.Model,
		APIKey:      flags.APIKey,
		Temperature: flags.Temperature,
		Timeout:     flags.Timeout,
	})
	defer client.Close()

	enh := enhance.New(client, decoder, enhance.Options{RewriteTags: !flags.NoTags}, log)
	results := enh.EnhanceFiles(ctx, notes, notestore.Dir{Path: outDir}, flags.Concurrency)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(stderr, "%s: %v\n", r.Source, r.Err)
			continue
		}
		fmt.Fprintf(stdout, "Enhanced note written to %s\n", r.Dest)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d notes failed", failed, len(results))
	}
	return nil
}
