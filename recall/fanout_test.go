package recall

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pkg/logging"
)

func TestFanout_Process(t *testing.T) {
	sources := func() []Source {
		return []Source{
			&stubSource{name: "recall.matrix", items: []string{"X", "Y"}},
			&stubSource{name: "recall.remote", err: errors.New("boom")},
			&stubSource{name: "recall.popularity", items: []string{"Y", "Z"}},
		}
	}

	tests := []struct {
		name     string
		strategy string
		limit    int
		want     []string
	}{
		{name: "first wins", strategy: "", want: []string{"X", "Y", "Z"}},
		{name: "union keeps duplicates", strategy: "union", want: []string{"X", "Y", "Y", "Z"}},
		{name: "limited concurrency", strategy: "first", limit: 1, want: []string{"X", "Y", "Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &Fanout{Sources: sources(), MergeStrategy: tt.strategy, MaxConcurrent: tt.limit, Logger: logging.Nop()}
			items, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, nil)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if got := ids(items); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Process() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFanout_MergedLabels(t *testing.T) {
	node := &Fanout{
		Sources: []Source{
			&stubSource{name: "recall.matrix", items: []string{"X"}},
			&stubSource{name: "recall.popularity", items: []string{"X"}},
		},
		Logger: logging.Nop(),
	}
	items, err := node.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Label("recall_node") != "recall.matrix|recall.popularity" {
		t.Errorf("merged item = %+v", items)
	}
}

func TestFanout_Empty(t *testing.T) {
	items, err := (&Fanout{}).Process(context.Background(), nil, nil)
	if err != nil || items == nil || len(items) != 0 {
		t.Errorf("Process() = %v, %v; want empty non-nil", items, err)
	}
}
