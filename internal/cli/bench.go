package cli

import (
	"github.com/spf13/cobra"

	"github.com/BartekS5/copybench/internal/dataset"
	"github.com/BartekS5/copybench/internal/etl"
)

type BenchOptions struct {
	QueriesFile string
	BatchSize   int
	BufferSize  int
	Rows        int
	Seed        uint64
	SkipPrepare bool
	Interactive bool
}

func NewBenchCmd() *cobra.Command {
	opts := &BenchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run batch insert and binary copy for every query",
		RunE: func(c *cobra.Command, args []string) error {
			return runBenchmark(c.Context(), opts, c.OutOrStdout(), c.InOrStdin())
		},
	}

	cmd.Flags().StringVarP(&opts.QueriesFile, "queries", "q", "", "Path to a JSON query descriptor file (default: built-in queries)")
	cmd.Flags().IntVarP(&opts.BatchSize, "batch-size", "b", etl.DefaultBatchSize, "Rows per batch insert chunk")
	cmd.Flags().IntVar(&opts.BufferSize, "buffer-size", etl.DefaultBufferSize, "Bytes buffered between COPY export and import")
	addSeedFlags(cmd, &opts.Rows, &opts.Seed)
	cmd.Flags().BoolVar(&opts.SkipPrepare, "skip-prepare", false, "Do not create, seed or recreate tables before running")
	cmd.Flags().BoolVar(&opts.Interactive, "interactive", false, "Wait for Enter between queries")

	return cmd
}

type PrepareOptions struct {
	Rows int
	Seed uint64
}

func NewPrepareCmd() *cobra.Command {
	opts := &PrepareOptions{}

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Create the metrics tables and seed the source store",
		RunE: func(c *cobra.Command, args []string) error {
			return runPrepare(c.Context(), opts)
		},
	}
	addSeedFlags(cmd, &opts.Rows, &opts.Seed)

	return cmd
}

func addSeedFlags(cmd *cobra.Command, rows *int, seed *uint64) {
	cmd.Flags().IntVarP(rows, "rows", "n", dataset.DefaultRows, "Synthetic rows seeded into an empty source table")
	cmd.Flags().Uint64Var(seed, "seed", 0, "Random seed for synthetic data (0 = time based)")
}
