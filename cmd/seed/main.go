// Package main previews a baseline feature fixture before it is wired
// into the server via cmd/server's -fixture flag: it loads and validates
// the file and renders the resulting feature set as a table, so an
// operator can catch a bad fixture before the server ever starts serving.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"scenarioplan.dev/engine/internal/app"
	"scenarioplan.dev/engine/internal/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fixturePath := flag.String("fixture", "", "path to a baseline feature fixture (.yaml or .json)")
	flag.Parse()

	if *fixturePath == "" {
		return fmt.Errorf("-fixture is required")
	}

	features, err := app.LoadBaselineFixture(*fixturePath)
	if err != nil {
		return fmt.Errorf("load baseline fixture: %w", err)
	}

	printFeatureTable(os.Stdout, features)
	fmt.Printf("\n%d feature(s) loaded and validated from %s\n", len(features), *fixturePath)
	return nil
}

func printFeatureTable(w io.Writer, features []domain.Feature) {
	sorted := make([]domain.Feature, len(features))
	copy(sorted, features)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Type", "Start", "End", "Parent Epic", "Title"})
	for _, f := range sorted {
		t.AppendRow(table.Row{f.ID, f.Type, f.Start, f.End, f.ParentEpic, f.Title})
	}
	t.Render()
}
