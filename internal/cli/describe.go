package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func describeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the effective masking configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sh, err := opts.loadShield(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sh.DescribeConfig())
			return err
		},
	}
}
