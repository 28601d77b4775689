package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rushteam/reviewkit/aggregate"
	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/filter"
	"github.com/rushteam/reviewkit/pipeline"
	"github.com/rushteam/reviewkit/pkg/logging"
	"github.com/rushteam/reviewkit/recall"
	"github.com/rushteam/reviewkit/rerank"
	"github.com/rushteam/reviewkit/similarity"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(\"\") = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, "reviewkit.yaml", `
data:
  interactions: ./interactions.csv
  matrix: ./matrix.csv
  refresh: 5m
recommend:
  top_n: 8
cache:
  backend: redis
  addr: redis:6379
log:
  format: console
`)
	t.Setenv("REVIEWKIT_RECOMMEND_TOP_N", "3")
	t.Setenv("REVIEWKIT_SERVER_ADDR", ":9090")
	t.Setenv("REVIEWKIT_REMOTE_TIMEOUT", "500ms")
	t.Setenv("REVIEWKIT_UNRELATED_THING", "ignored")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Data.Interactions != "./interactions.csv" || cfg.Data.Matrix != "./matrix.csv" {
		t.Errorf("Data = %+v", cfg.Data)
	}
	if cfg.Data.Refresh != 5*time.Minute {
		t.Errorf("Data.Refresh = %v, want 5m", cfg.Data.Refresh)
	}
	if cfg.Recommend.TopN != 3 {
		t.Errorf("Recommend.TopN = %d, want env override 3", cfg.Recommend.TopN)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Addr != "redis:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache.TTL = %v, want default 10m", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Remote.Timeout != 500*time.Millisecond {
		t.Errorf("Remote.Timeout = %v, want 500ms", cfg.Remote.Timeout)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}

	path := writeFile(t, "bad.yaml", "recommend:\n  top_n: 0\ncache:\n  backend: memcached\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"top_n", "memcached"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestEnvTransform(t *testing.T) {
	tests := map[string]string{
		"REVIEWKIT_DATA_FETCH_TIMEOUT": "data.fetch_timeout",
		"REVIEWKIT_CACHE_DB":           "cache.db",
		"REVIEWKIT_LOG_LEVEL":          "log.level",
		"REVIEWKIT_NOPE":               "",
	}
	for in, want := range tests {
		if got := envTransform(in); got != want {
			t.Errorf("envTransform(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFactory_BuildFromYAML(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", `
pipeline:
  name: custom
  nodes:
    - type: recall.tiered
      config:
        timeout: 1s
        sources:
          - type: remote
            endpoint: http://127.0.0.1:1/recommend
            timeout: 100ms
            max_failures: 2
          - type: matrix
          - type: popularity
    - type: filter
      config:
        filters:
          - type: known
          - type: blacklist
            item_ids: [B]
          - type: expr
            expr: item.avg_negative > 0.8
    - type: rerank.dedup
    - type: rerank.topn
      config:
        n: 2
`)
	cfg, err := pipeline.LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}
	factory := NewFactory(Deps{Logger: logging.Nop()})
	if err := ValidatePipelineConfig(cfg, factory); err != nil {
		t.Fatalf("ValidatePipelineConfig() error = %v", err)
	}
	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}

	if got := p.Names(); !reflect.DeepEqual(got, []string{"recall.tiered", "filter.node", "rerank.dedup", "rerank.topn"}) {
		t.Fatalf("Names() = %v", got)
	}

	tiered := p.Nodes[0].(*recall.Tiered)
	if tiered.Timeout != time.Second || len(tiered.Sources) != 3 {
		t.Errorf("tiered = %+v", tiered)
	}
	if _, ok := tiered.Sources[0].(*recall.Remote); !ok {
		t.Errorf("first source = %T, want *recall.Remote", tiered.Sources[0])
	}

	fn := p.Nodes[1].(*filter.FilterNode)
	if len(fn.Filters) != 3 {
		t.Errorf("filters = %d, want 3", len(fn.Filters))
	}
	if n := p.Nodes[3].(*rerank.TopNNode).N; n != 2 {
		t.Errorf("topn N = %d, want 2", n)
	}

	// remote 不可达时回落到本地层级，并经过 filter
	records := []core.InteractionRecord{
		{ItemID: "A", UserID: "u1", PositiveScore: 0.9, NegativeScore: 0.1},
		{ItemID: "B", UserID: "u2", PositiveScore: 0.9, NegativeScore: 0.1, Seq: 1},
		{ItemID: "B", UserID: "u3", PositiveScore: 0.9, NegativeScore: 0.1, Seq: 2},
		{ItemID: "C", UserID: "u4", PositiveScore: 0.1, NegativeScore: 0.9, Seq: 3},
	}
	rctx := &core.RecommendContext{UserID: "new", TopN: 5, Catalog: aggregate.Build(records)}
	out, err := p.Run(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := core.ItemIDs(out); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("Run() = %v, want [A]", got)
	}
}

func TestFactory_Errors(t *testing.T) {
	factory := DefaultFactory()

	tests := []struct {
		name     string
		nodeType string
		cfg      map[string]interface{}
	}{
		{name: "unknown node", nodeType: "rank.lr", cfg: nil},
		{name: "tiered without sources", nodeType: "recall.tiered", cfg: map[string]interface{}{}},
		{name: "unknown source", nodeType: "recall.tiered", cfg: map[string]interface{}{
			"sources": []interface{}{map[string]interface{}{"type": "ann"}},
		}},
		{name: "remote without endpoint", nodeType: "recall.tiered", cfg: map[string]interface{}{
			"sources": []interface{}{map[string]interface{}{"type": "remote"}},
		}},
		{name: "bad expr", nodeType: "filter", cfg: map[string]interface{}{
			"filters": []interface{}{map[string]interface{}{"type": "expr", "expr": "item.avg_positive >"}},
		}},
		{name: "unknown filter", nodeType: "filter", cfg: map[string]interface{}{
			"filters": []interface{}{map[string]interface{}{"type": "user_block"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := factory.Build(tt.nodeType, tt.cfg); err == nil {
				t.Errorf("Build(%s) expected error", tt.nodeType)
			}
		})
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	factory := DefaultFactory()

	empty := &pipeline.Config{}
	if err := ValidatePipelineConfig(empty, factory); err == nil {
		t.Error("expected error for empty pipeline")
	}

	bad := &pipeline.Config{}
	bad.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "rerank.dedup"}, {Type: "rank.dnn"}}
	if err := ValidatePipelineConfig(bad, factory); err == nil || !strings.Contains(err.Error(), "rank.dnn") {
		t.Errorf("ValidatePipelineConfig() error = %v", err)
	}

	if err := ValidatePipelineConfig(nil, factory); err != nil {
		t.Errorf("ValidatePipelineConfig(nil) error = %v", err)
	}
}

func TestFactory_FanoutPipeline(t *testing.T) {
	path := writeFile(t, "fanout.yaml", `
pipeline:
  name: fanout
  nodes:
    - type: recall.fanout
      config:
        merge_strategy: first
        max_concurrent: 2
        sources:
          - type: matrix
          - type: popularity
    - type: filter
      config:
        filters:
          - type: reviewed
    - type: rerank.diversity
      config:
        max: 1
`)
	cfg, err := pipeline.LoadFromYAML(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := cfg.BuildPipeline(NewFactory(Deps{Logger: logging.Nop()}))
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}

	records := []core.InteractionRecord{
		{ItemID: "A", UserID: "u1", PositiveScore: 0.9},
		{ItemID: "X", UserID: "u2", PositiveScore: 0.9, Seq: 1},
		{ItemID: "B", UserID: "u3", PositiveScore: 0.2, Seq: 2},
		{ItemID: "B", UserID: "u4", PositiveScore: 0.2, Seq: 3},
	}
	idx, err := similarity.Build([]map[string]string{{"USER_ID": "u1", "u2": "0.9"}})
	if err != nil {
		t.Fatal(err)
	}
	rctx := &core.RecommendContext{UserID: "u1", TopN: 5, Catalog: aggregate.Build(records), Index: idx}
	out, err := p.Run(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// matrix: X；popularity: B(2), A(1), X(1)；A 已被 u1 评价；每个来源保留一个
	if got := core.ItemIDs(out); !reflect.DeepEqual(got, []string{"X", "B"}) {
		t.Errorf("Run() = %v, want [X B]", got)
	}

	if _, err := NewFactory(Deps{}).Build("recall.fanout", map[string]interface{}{
		"merge_strategy": "priority",
		"sources":        []interface{}{map[string]interface{}{"type": "matrix"}},
	}); err == nil {
		t.Error("expected error for unknown merge strategy")
	}
}
