// Command ingest consumes {partition, title, text} records from Kafka or
// RabbitMQ and stores them through the vector-database pipeline. With -seed
// it instead publishes the configured dataset and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/yang0369/rag/internal/app"
	"github.com/yang0369/rag/v1/config"
	"github.com/yang0369/rag/v1/dataset"
	"github.com/yang0369/rag/v1/ingest"
	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/minio"
	"github.com/yang0369/rag/v1/pipeline"
)

type deps struct {
	fx.In

	Pipeline *pipeline.VectorDBPipeline
	Source   ingest.Transport
	Logger   logger.Logger
	Minio    *minio.MinioClient `optional:"true"`
}

func main() {
	configPath := flag.String("config", "", "YAML config file (default $"+config.EnvPath+")")
	seed := flag.Bool("seed", false, "publish the dataset to the ingest transport and exit")
	partition := flag.String("partition", "vdb", "partition used for seeded records")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	transport, err := app.Transport(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var d deps
	fxApp := fx.New(
		app.Modules(cfg),
		transport,
		fx.Invoke(func(in deps) { d = in }),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *seed {
		err = publish(ctx, d, cfg.Dataset, *partition)
	} else {
		err = consume(ctx, d)
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()
	if stopErr := fxApp.Stop(stopCtx); stopErr != nil {
		d.Logger.Error("shutdown failed", stopErr, nil)
	}

	if err != nil {
		d.Logger.Error("ingest failed", err, nil)
		os.Exit(1)
	}
}

func consume(ctx context.Context, d deps) error {
	if err := d.Pipeline.Create(ctx, pipeline.CreateOptions{}); err != nil {
		return err
	}

	d.Logger.Info("consuming ingest records", nil, map[string]interface{}{
		"collection": d.Pipeline.Collection(),
	})
	err := d.Source.Consume(ctx, func(ctx context.Context, rec ingest.Record) error {
		_, err := d.Pipeline.Update(ctx, rec.Partition, []pipeline.Record{{
			ID:    rec.ID,
			Title: rec.Title,
			Text:  rec.Text,
		}})
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func publish(ctx context.Context, d deps, dsCfg dataset.Config, partition string) error {
	var getter dataset.ObjectGetter
	if d.Minio != nil {
		getter = d.Minio
	}

	docs, err := dataset.NewSource(dsCfg, getter).Load(ctx)
	if err != nil {
		return err
	}

	recs := make([]ingest.Record, len(docs))
	for i, doc := range docs {
		recs[i] = ingest.Record{Partition: partition, Title: doc.Title, Text: doc.Text}
	}
	if err := d.Source.Publish(ctx, recs...); err != nil {
		return err
	}
	d.Logger.Info("published dataset", nil, map[string]interface{}{"records": len(recs)})
	return nil
}
