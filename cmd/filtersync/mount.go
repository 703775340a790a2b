package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filtersync/internal/config"
	"github.com/vango-dev/filtersync/pkg/filterstate"
	"github.com/vango-dev/filtersync/pkg/location"
	"github.com/vango-dev/filtersync/pkg/querycodec"
)

func mountCmd() *cobra.Command {
	var (
		defaults     string
		defaultsJSON string
		commits      []string
		reset        bool
		dir          string
	)

	cmd := &cobra.Command{
		Use:   "mount <url>",
		Short: "Simulate a view mounting against a URL",
		Long: `Mount a filter engine against an in-memory address bar and print
every URL it writes.

The initial state comes from --defaults-json, --defaults, or the
"defaults" of filtersync.json, in that order. Each --commit is a query
string merged into the state; --reset restores the initial state last.

Examples:
  filtersync mount /items --defaults-json '{"status":"","page":1}'
  filtersync mount '/items?status=open' --commit 'page=2' --commit 'status='
  filtersync mount /items --defaults 'page=1' --reset`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := mountDefaults(dir, defaults, defaultsJSON)
			if err != nil {
				return err
			}
			return runMount(cmd.OutOrStdout(), args[0], initial, commits, reset)
		},
	}

	cmd.Flags().StringVar(&defaults, "defaults", "", "Initial state as a query string")
	cmd.Flags().StringVar(&defaultsJSON, "defaults-json", "", "Initial state as a flat JSON object")
	cmd.Flags().StringArrayVarP(&commits, "commit", "c", nil, "Query string to commit (repeatable)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Reset to the initial state after the commits")
	cmd.Flags().StringVar(&dir, "config", "", "Directory containing filtersync.json (default: nearest parent with one)")

	return cmd
}

func mountDefaults(dir, defaults, defaultsJSON string) (querycodec.Record, error) {
	if rec, ok, err := flagDefaults(defaults, defaultsJSON); ok || err != nil {
		return rec, err
	}

	root, err := configDir(dir)
	if err != nil {
		return querycodec.Record{}, err
	}
	cfg, err := config.LoadFromDir(root)
	if err != nil {
		return querycodec.Record{}, err
	}
	return cfg.Defaults, nil
}

// flagDefaults reads an initial state from --defaults-json or --defaults.
// ok is false when neither flag is set.
func flagDefaults(defaults, defaultsJSON string) (rec querycodec.Record, ok bool, err error) {
	switch {
	case defaultsJSON != "":
		if err := json.Unmarshal([]byte(defaultsJSON), &rec); err != nil {
			return querycodec.Record{}, true, fmt.Errorf("--defaults-json: %w", err)
		}
		return rec, true, nil
	case defaults != "":
		return querycodec.DecodeQuery(defaults), true, nil
	}
	return querycodec.Record{}, false, nil
}

func runMount(w io.Writer, raw string, initial querycodec.Record, commits []string, reset bool) error {
	loc := location.NewMemory(raw)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	eng, err := filterstate.New(loc, initial,
		filterstate.WithLogger(logger),
		filterstate.WithOnInit(func(state querycodec.Record) {
			info(w, "init   %s", state)
		}),
	)
	if err != nil {
		return err
	}

	before := loc.Replacements()
	eng.Mount()
	if loc.Replacements() == before {
		success(w, "adopted %s", loc.Read())
	} else {
		success(w, "seeded  %s", loc.Read())
	}

	for _, c := range commits {
		eng.Commit(querycodec.DecodeQuery(c))
		success(w, "commit  %s", loc.Read())
		info(w, "state  %s", eng.State())
	}

	if reset {
		eng.Reset(func(state querycodec.Record) {
			info(w, "state  %s", state)
		})
		success(w, "reset   %s", loc.Read())
	}

	info(w, "history entries: %d, replacements: %d", loc.HistoryLen(), loc.Replacements())
	return nil
}
