package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/reviewkit/aggregate"
	"github.com/rushteam/reviewkit/ingest"
	"github.com/rushteam/reviewkit/similarity"
)

// Sources 是两份输入数据的位置（http(s) URL 或本地路径），为空表示没有该数据。
type Sources struct {
	Interactions string
	Matrix       string
}

// Loader 并发加载交互表与相似度矩阵，全部构建成功后才返回快照。
type Loader struct {
	Rows   ingest.RowLoader
	Logger zerolog.Logger
}

// NewLoader 创建 Loader，fetchTimeout 作用于 HTTP 来源
func NewLoader(fetchTimeout time.Duration, logger zerolog.Logger) *Loader {
	return &Loader{
		Rows:   &ingest.SourceLoader{HTTP: ingest.NewHTTPLoader(fetchTimeout)},
		Logger: logger,
	}
}

// Load 加载并构建快照（尚未发布）。任一来源失败则整体失败。
func (l *Loader) Load(ctx context.Context, src Sources) (*Snapshot, error) {
	var (
		interactionRows []map[string]string
		matrixRows      []map[string]string
	)

	eg, egCtx := errgroup.WithContext(ctx)
	if src.Interactions != "" {
		eg.Go(func() error {
			rows, err := l.Rows.Load(egCtx, src.Interactions)
			if err != nil {
				return fmt.Errorf("load interactions: %w", err)
			}
			interactionRows = rows
			return nil
		})
	}
	if src.Matrix != "" {
		eg.Go(func() error {
			rows, err := l.Rows.Load(egCtx, src.Matrix)
			if err != nil {
				return fmt.Errorf("load matrix: %w", err)
			}
			matrixRows = rows
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return l.Build(interactionRows, matrixRows, src)
}

// Build 从已加载的行构建快照。interactionRows 为 nil 表示没有交互数据（空 Catalog），
// matrixRows 为 nil 表示没有矩阵（空 Index）。
func (l *Loader) Build(interactionRows, matrixRows []map[string]string, src Sources) (*Snapshot, error) {
	snap := &Snapshot{}

	if interactionRows != nil {
		records, err := (&ingest.Ingester{Logger: l.Logger}).Ingest(interactionRows)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", src.Interactions, err)
		}
		snap.Records = len(records)
		snap.Catalog = aggregate.Build(records)
	} else {
		snap.Catalog = aggregate.Build(nil)
	}

	if matrixRows == nil {
		matrixRows = []map[string]string{}
	}
	idx, err := (&similarity.Builder{Logger: l.Logger}).Build(matrixRows)
	if err != nil {
		return nil, fmt.Errorf("build similarity %s: %w", src.Matrix, err)
	}
	snap.Index = idx

	l.Logger.Info().
		Int("records", snap.Records).
		Int("items", snap.Catalog.Len()).
		Int("matrix_users", snap.Index.Len()).
		Msg("dataset built")
	return snap, nil
}

// Refresh 加载并发布新快照；失败时保留旧快照并返回错误。
func (l *Loader) Refresh(ctx context.Context, h *Holder, src Sources) (*Snapshot, error) {
	snap, err := l.Load(ctx, src)
	if err != nil {
		l.Logger.Error().Err(err).Msg("dataset refresh failed, keeping previous snapshot")
		return nil, err
	}
	gen := h.Publish(snap)
	l.Logger.Info().Uint64("generation", gen).Msg("dataset snapshot published")
	return snap, nil
}

// Watch 每隔 interval 刷新一次，直到 ctx 结束
func (l *Loader) Watch(ctx context.Context, h *Holder, src Sources, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = l.Refresh(ctx, h, src)
		}
	}
}
