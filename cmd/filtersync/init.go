package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filtersync/internal/config"
	"github.com/vango-dev/filtersync/internal/errors"
	"github.com/vango-dev/filtersync/pkg/querycodec"
)

func initCmd() *cobra.Command {
	var (
		defaults     string
		defaultsJSON string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a filtersync.json with default settings",
		Long: `Write a filtersync.json with default settings.

The initial filter state comes from --defaults-json or --defaults.
An existing file is left alone unless --force is given, in which case
only its defaults are replaced.

Examples:
  filtersync init
  filtersync init ./web --defaults 'page=1&sort=name'
  filtersync init --force --defaults-json '{"status":"","page":1}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			rec, _, err := flagDefaults(defaults, defaultsJSON)
			if err != nil {
				return err
			}
			return runInit(cmd.OutOrStdout(), dir, rec, force)
		},
	}

	cmd.Flags().StringVar(&defaults, "defaults", "", "Initial state as a query string")
	cmd.Flags().StringVar(&defaultsJSON, "defaults-json", "", "Initial state as a flat JSON object")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace the defaults of an existing filtersync.json")

	return cmd
}

func runInit(w io.Writer, dir string, defaults querycodec.Record, force bool) error {
	if config.Exists(dir) {
		if !force {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail(config.ConfigFileName + " already exists in " + dir).
				WithSuggestion("Pass --force to replace its defaults")
		}
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		cfg.Defaults = defaults
		if err := cfg.Save(); err != nil {
			return err
		}
		success(w, "updated %s", cfg.Path())
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	cfg := config.New()
	cfg.Defaults = defaults
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return err
	}
	success(w, "created %s", cfg.Path())
	info(w, "start the live server with: filtersync serve --config %s", cfg.Dir())
	return nil
}
