// Command trello2md writes one templated note per comment of a Trello board
// export.
//
// Usage:
//
//	trello2md [-o dir] [-template file] <board.json>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/notegest/internal/notestore"
	"github.com/dgallion1/notegest/internal/trello"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("trello2md", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("o", "notes", "output directory for Markdown files")
	template := fs.String("template", os.Getenv("TRELLO_TEMPLATE"), "note template file (default: built-in)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: trello2md [-o dir] [-template file] <board.json>")
		return errors.New("need exactly one board export")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	conv, err := trello.NewConverter(*template)
	if err != nil {
		return err
	}
	notes, err := conv.Convert(data)
	if err != nil {
		return err
	}
	paths, err := trello.WriteAll(notes, notestore.Dir{Path: *output})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %d Markdown files to %s\n", len(paths), *output)
	return nil
}
