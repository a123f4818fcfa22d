package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "copybench",
		Short: "copybench - compare batch insert and binary COPY between two PostgreSQL stores",
		Long: `copybench moves the rows selected by a set of queries from a source
PostgreSQL table into the same table on a destination server, once with
chunked batch inserts and once with a binary COPY stream, and prints how long
each strategy took.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(NewBenchCmd(), NewPrepareCmd())

	return rootCmd
}
