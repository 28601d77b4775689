package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rushteam/reviewkit/core"
)

type appendNode struct {
	id  string
	err error
}

func (n *appendNode) Name() string { return "append." + n.id }
func (n *appendNode) Kind() Kind   { return KindRecall }
func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(n.id)), nil
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{&appendNode{id: "A"}, &appendNode{id: "B"}}}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := core.ItemIDs(out); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Run() = %v, want [A B]", got)
	}
	if got := p.Names(); !reflect.DeepEqual(got, []string{"append.A", "append.B"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestPipeline_RunError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{&appendNode{id: "A"}, &appendNode{id: "B", err: boom}}}
	_, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want boom", err)
	}
	if !strings.Contains(err.Error(), "append.B") {
		t.Errorf("error should name the failing node: %v", err)
	}
}

func TestPipeline_RunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{&appendNode{id: "A"}}}
	if _, err := p.Run(ctx, &core.RecommendContext{}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestConfig_BuildPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	yml := `pipeline:
  name: test
  nodes:
    - type: append
      config:
        id: A
    - type: append
      config:
        id: B
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}
	if cfg.Pipeline.Name != "test" || len(cfg.Pipeline.Nodes) != 2 {
		t.Fatalf("unexpected config: %+v", cfg.Pipeline)
	}

	factory := NewNodeFactory()
	factory.Register("append", func(c map[string]interface{}) (Node, error) {
		id, _ := c["id"].(string)
		return &appendNode{id: id}, nil
	})

	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := core.ItemIDs(out); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Run() = %v, want [A B]", got)
	}

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, NodeConfig{Type: "missing"})
	if _, err := cfg.BuildPipeline(factory); err == nil || !strings.Contains(err.Error(), "append") {
		t.Errorf("BuildPipeline() error = %v, want unknown type listing supported types", err)
	}
}

func TestLoadFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.json")
	if err := os.WriteFile(path, []byte(`{"pipeline":{"name":"j","nodes":[{"type":"append","config":{"id":"A"}}]}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromJSON(path)
	if err != nil {
		t.Fatalf("LoadFromJSON() error = %v", err)
	}
	if cfg.Pipeline.Name != "j" || cfg.Pipeline.Nodes[0].Type != "append" {
		t.Errorf("unexpected config: %+v", cfg.Pipeline)
	}
	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
