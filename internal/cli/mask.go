package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
	"github.com/eco2-team/backend/domains/data-shield/internal/shield"
)

const (
	flagValue = "value"

	// maxRecordSize bounds one stdin line.
	maxRecordSize = 1 << 20
)

func maskCmd(opts *rootOptions) *cobra.Command {
	var values []string

	cmd := &cobra.Command{
		Use:   "mask",
		Short: "Mask values or newline-delimited JSON records",
		Long: `Mask reads one flat JSON object per line from stdin and writes each
record with its sensitive top-level fields masked. With --value, each given
string is masked as a single value instead and stdin is ignored.

A record that cannot be masked is reported on stderr; the remaining records
are still processed and the command exits non-zero at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sh, err := opts.loadShield(cmd)
			if err != nil {
				return err
			}
			if len(values) > 0 {
				return writeLines(cmd.OutOrStdout(), sh.MaskValues(values))
			}
			return maskRecords(sh, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringArrayVar(&values, flagValue, nil, "value to mask (repeatable)")
	return cmd
}

// maskRecords masks each non-blank line of in as a flat JSON object.
func maskRecords(sh *shield.Shield, in io.Reader, out, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	var line, total, failed int
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		total++

		masked, err := sh.MaskFlatJSON(text)
		if err != nil {
			failed++
			fmt.Fprintf(errOut, "line %d: %v\n", line, err)
			continue
		}
		if _, err := fmt.Fprintln(out, masked); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf(constants.ErrMaskFailures, failed, total)
	}
	return nil
}

func writeLines(out io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(out, l); err != nil {
			return err
		}
	}
	return nil
}
