package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filtersync/internal/config"
	"github.com/vango-dev/filtersync/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬┬ ┌┬┐┌─┐┬─┐┌─┐┬ ┬┌┐┌┌─┐
  ├┤ ││  │ ├┤ ├┬┘└─┐└┬┘││││
  └  ┴┴─┘┴ └─┘┴└─└─┘ ┴ ┘└┘└─┘
`

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		flags := rootCmd.PersistentFlags()
		if noColor, _ := flags.GetBool("no-color"); noColor || os.Getenv("NO_COLOR") != "" {
			errors.DisableColors()
		}
		if asJSON, _ := flags.GetBool("json"); asJSON {
			errors.WriteErrorJSON(os.Stderr, err)
		} else {
			errors.PrintError(err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filtersync",
		Short: "Keep filter state and the URL query string in sync",
		Long: `filtersync mirrors a view's filter state into the address bar.

Filters survive reloads and can be shared as links. The live server
hosts one filter engine per WebSocket session; the other commands
exercise the query codec and the engine from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Report errors as JSON on stderr")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		initCmd(),
		serveCmd(),
		decodeCmd(),
		encodeCmd(),
		mountCmd(),
		explainCmd(),
		versionCmd(),
	)
	return rootCmd
}

// configDir returns dir when set. Otherwise it returns the nearest directory
// at or above the working directory that holds filtersync.json, or the
// working directory itself.
func configDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if root, err := config.FindProjectRoot(wd); err == nil {
		return root, nil
	}
	return wd, nil
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
