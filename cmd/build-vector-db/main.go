// Command build-vector-db creates a collection, loads a small labeled
// dataset into the "vdb" partition and prints the labels of the documents
// most similar to a spatial-analysis query.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/yang0369/rag/internal/app"
	"github.com/yang0369/rag/v1/config"
	"github.com/yang0369/rag/v1/dataset"
	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/minio"
	"github.com/yang0369/rag/v1/pipeline"
)

const defaultQuery = `Spatial analysis refers to modeling location-specific problems, identifying patterns,
and assessing spatial data to make decisions.`

type options struct {
	partition string
	query     string
	limit     int
	drop      bool
}

type deps struct {
	fx.In

	Pipeline *pipeline.VectorDBPipeline
	Logger   logger.Logger
	Minio    *minio.MinioClient `optional:"true"`
}

func main() {
	configPath := flag.String("config", "", "YAML config file (default $"+config.EnvPath+")")
	opts := options{}
	flag.StringVar(&opts.partition, "partition", "vdb", "partition to load the dataset into")
	flag.StringVar(&opts.query, "query", defaultQuery, "query text")
	flag.IntVar(&opts.limit, "k", 5, "maximum number of matches")
	flag.BoolVar(&opts.drop, "drop", true, "drop and recreate the collection")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var d deps
	fxApp := fx.New(
		app.Modules(cfg),
		fx.Invoke(func(in deps) { d = in }),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	runErr := run(context.Background(), d, cfg.Dataset, opts)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil {
		d.Logger.Error("shutdown failed", err, nil)
	}

	if runErr != nil {
		d.Logger.Error("build-vector-db failed", runErr, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, d deps, dsCfg dataset.Config, opts options) error {
	var getter dataset.ObjectGetter
	if d.Minio != nil {
		getter = d.Minio
	}

	docs, err := dataset.NewSource(dsCfg, getter).Load(ctx)
	if err != nil {
		return err
	}

	if err := d.Pipeline.Create(ctx, pipeline.CreateOptions{Drop: opts.drop}); err != nil {
		return err
	}

	records := make([]pipeline.Record, len(docs))
	for i, doc := range docs {
		records[i] = pipeline.Record{Title: doc.Title, Text: doc.Text}
	}
	if _, err := d.Pipeline.Update(ctx, opts.partition, records); err != nil {
		return err
	}

	results, err := d.Pipeline.Search(ctx, pipeline.SearchQuery{
		Queries:    []string{opts.query},
		Partitions: []string{opts.partition},
		Limit:      opts.limit,
	})
	if err != nil {
		return err
	}

	res := results[0]
	d.Logger.Info("search finished", nil, map[string]interface{}{
		"collection": d.Pipeline.Collection(),
		"matches":    res.Len(),
		"scores":     res.Scores,
	})
	fmt.Printf("Based on text similarity, the topics related to spatial analysis shall be: %v\n", res.Labels)
	return nil
}
