package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/filtersync/pkg/querycodec"
)

func decodeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "decode <query|url>",
		Short: "Decode a query string into a filter record",
		Long: `Decode a query string the way the engine reads the address bar.

Values that are plain non-negative integers become numbers; everything
else, including "-5" and "1.5", stays a string. Anything before a '?'
is ignored, so full URLs can be pasted as is.

Examples:
  filtersync decode 'status=open&page=2'
  filtersync decode '/items?q=a%26b&page=1' --format text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := querycodec.DecodeQuery(queryPart(args[0]))
			return writeRecord(cmd.OutOrStdout(), rec, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or text")

	return cmd
}

func encodeCmd() *cobra.Command {
	var strip bool

	cmd := &cobra.Command{
		Use:   "encode [json]",
		Short: "Encode a flat JSON object as a query string",
		Long: `Encode a flat JSON object as a query string, in key order.

With --strip, empty values (null, "", 0) are dropped first, exactly as a
commit would; booleans are always kept. Without an argument the object
is read from stdin.

Examples:
  filtersync encode '{"status":"open","page":2}'
  echo '{"q":"","archived":false}' | filtersync encode --strip`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if len(args) == 1 && args[0] != "-" {
				data = []byte(args[0])
			} else {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				data = b
			}

			var rec querycodec.Record
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if strip {
				rec = querycodec.Strip(rec)
			}
			fmt.Fprintln(cmd.OutOrStdout(), querycodec.Encode(rec))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strip, "strip", false, "Drop empty values before encoding")

	return cmd
}

// queryPart returns the part of s after the first '?', or s itself.
func queryPart(s string) string {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func writeRecord(w io.Writer, rec querycodec.Record, format string) error {
	switch format {
	case "json":
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case "text":
		fmt.Fprintln(w, rec.String())
	default:
		return fmt.Errorf("unknown format %q (want json or text)", format)
	}
	return nil
}
