package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/BartekS5/copybench/internal/config"
	"github.com/BartekS5/copybench/internal/dataset"
	"github.com/BartekS5/copybench/internal/etl"
	"github.com/BartekS5/copybench/internal/report"
	"github.com/BartekS5/copybench/pkg/database"
	"github.com/BartekS5/copybench/pkg/logger"
	"github.com/BartekS5/copybench/pkg/models"
)

func runBenchmark(ctx context.Context, opts *BenchOptions, out io.Writer, in io.Reader) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	queries, err := config.LoadQueries(opts.QueriesFile)
	if err != nil {
		return err
	}

	sourceDB, destDB, err := connectStores(cfg)
	if err != nil {
		return err
	}
	defer sourceDB.Close()
	defer destDB.Close()

	preparer := dataset.NewPreparer(sourceDB, destDB, opts.Rows, dataset.NewGenerator(seedOrNow(opts.Seed)))
	if opts.SkipPrepare {
		if err := preparer.Truncate(ctx); err != nil {
			return fmt.Errorf("truncate destination: %w", err)
		}
	} else if err := preparer.Prepare(ctx); err != nil {
		return err
	}

	sinks := report.Multi{report.NewLineReporter(out)}
	if cfg.MongoConnString != "" {
		mongoClient, err := database.ConnectMongo(cfg.MongoConnString)
		if err != nil {
			return err
		}
		defer mongoClient.Disconnect(context.Background())

		store := report.NewMongoStore(mongoClient, cfg.MongoDatabase)
		logger.Infof("Storing results in MongoDB database %s (run %s).", cfg.MongoDatabase, store.RunID)
		sinks = append(sinks, store)
	}

	source := &etl.RowSource{DB: sourceDB, Dial: database.NewCopyDialer(cfg.SourceConnString)}
	orchestrator := etl.NewOrchestrator(
		etl.NewBatchLoader(source, destDB, opts.BatchSize),
		etl.NewStreamCopier(source, database.NewCopyDialer(cfg.DestConnString), opts.BufferSize),
		preparer,
		sinks,
	)
	if opts.Interactive {
		orchestrator.Pause = waitForEnter(out, in)
	}

	results, err := orchestrator.Run(ctx, queries)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.Succeeded() {
			failed++
		}
	}
	if failed > 0 {
		logger.Warnf("%d of %d transfers failed.", failed, len(results))
	}
	return nil
}

func runPrepare(ctx context.Context, opts *PrepareOptions) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	sourceDB, destDB, err := connectStores(cfg)
	if err != nil {
		return err
	}
	defer sourceDB.Close()
	defer destDB.Close()

	preparer := dataset.NewPreparer(sourceDB, destDB, opts.Rows, dataset.NewGenerator(seedOrNow(opts.Seed)))
	if err := preparer.Prepare(ctx); err != nil {
		return err
	}

	n, err := dataset.Count(ctx, sourceDB)
	if err != nil {
		return err
	}
	logger.Infof("Source table holds %d rows.", n)
	return nil
}

func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func connectStores(cfg *config.Config) (*sql.DB, *sql.DB, error) {
	sourceDB, err := database.ConnectSQL(cfg.SourceConnString)
	if err != nil {
		return nil, nil, fmt.Errorf("source: %w", err)
	}
	destDB, err := database.ConnectSQL(cfg.DestConnString)
	if err != nil {
		sourceDB.Close()
		return nil, nil, fmt.Errorf("destination: %w", err)
	}
	return sourceDB, destDB, nil
}

func seedOrNow(seed uint64) uint64 {
	if seed == 0 {
		return uint64(time.Now().UnixNano())
	}
	return seed
}

func waitForEnter(out io.Writer, in io.Reader) func(context.Context, models.QueryDescriptor) error {
	r := bufio.NewReader(in)
	return func(ctx context.Context, d models.QueryDescriptor) error {
		fmt.Fprint(out, "Press Enter for the next query...")
		_, err := r.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		return err
	}
}
