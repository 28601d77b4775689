package main

import (
	"context"
	"fmt"

	"github.com/rushteam/reviewkit/config"
	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/dataset"
	"github.com/rushteam/reviewkit/pipeline"
	"github.com/rushteam/reviewkit/pkg/logging"
	"github.com/rushteam/reviewkit/recall"
	"github.com/rushteam/reviewkit/recommend"
	"github.com/rushteam/reviewkit/store"
)

func sources(cfg *config.App) dataset.Sources {
	return dataset.Sources{
		Interactions: cfg.Data.Interactions,
		Matrix:       cfg.Data.Matrix,
	}
}

// loadSnapshot 加载数据并发布到新的 Holder
func loadSnapshot(ctx context.Context, cfg *config.App) (*dataset.Holder, *dataset.Loader, error) {
	loader := dataset.NewLoader(cfg.Data.FetchTimeout, logging.Component("dataset"))
	holder := &dataset.Holder{}
	if _, err := loader.Refresh(ctx, holder, sources(cfg)); err != nil {
		return nil, nil, err
	}
	return holder, loader, nil
}

func newStore(ctx context.Context, cfg *config.App) (core.Store, error) {
	switch cfg.Cache.Backend {
	case "", "none":
		return nil, nil
	case "redis":
		rs := store.NewRedisStore(store.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   "reviewkit:",
		})
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, err
		}
		return rs, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

func newEngine(cfg *config.App, st core.Store) (*recommend.Engine, error) {
	logger := logging.Component("recommend")
	opts := []recommend.Option{
		recommend.WithTopN(cfg.Recommend.TopN),
		recommend.WithLogger(logger),
	}

	if cfg.Recommend.Pipeline != "" {
		pcfg, err := pipeline.LoadFromYAML(cfg.Recommend.Pipeline)
		if err != nil {
			return nil, fmt.Errorf("load pipeline: %w", err)
		}
		factory := config.NewFactory(config.Deps{Store: st, Logger: logging.Component("pipeline")})
		if err := config.ValidatePipelineConfig(pcfg, factory); err != nil {
			return nil, err
		}
		p, err := pcfg.BuildPipeline(factory)
		if err != nil {
			return nil, err
		}
		opts = append(opts, recommend.WithPipeline(p))
	}

	if cfg.Remote.Endpoint != "" {
		opts = append(opts, recommend.WithRemote(recall.NewRemote(recall.RemoteConfig{
			Endpoint:    cfg.Remote.Endpoint,
			Timeout:     cfg.Remote.Timeout,
			MaxFailures: cfg.Remote.MaxFailures,
			OpenTimeout: cfg.Remote.OpenTimeout,
			Logger:      logging.Component("remote"),
		})))
	}

	return recommend.New(opts...), nil
}
