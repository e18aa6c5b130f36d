package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/upb/web-core/internal/masking"
)

const maxLineSize = 1 << 20

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		fields []string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "logmask [flags]",
		Short: "Mask sensitive fields in JSON log lines",
		Long: `logmask reads log lines from stdin or a file and desensitizes the values
of sensitive JSON fields at any depth. Lines that are not JSON objects or
arrays, or that hold no sensitive field, are written unchanged.

Examples:
  # Mask the default fields in a log file
  logmask --file app.log

  # Mask custom fields from a pipe
  tail -f app.log | logmask --fields userPhone,idCard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			masker := masking.New(masking.NewFieldSet(fields...))

			in := cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", file, err)
				}
				defer f.Close()
				in = f
			}
			return maskLines(in, cmd.OutOrStdout(), masker)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", masking.DefaultSensitiveFields, "Sensitive field names (comma separated or repeated)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read log lines from this file instead of stdin")
	return cmd
}

// maskLines copies in to out line by line, masking each line
func maskLines(in io.Reader, out io.Writer, masker *masking.Masker) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	w := bufio.NewWriter(out)

	for scanner.Scan() {
		if _, err := w.WriteString(masker.MaskString(scanner.Text())); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return w.Flush()
}
