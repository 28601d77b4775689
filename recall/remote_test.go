package recall

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pkg/logging"
)

func TestRemote_Recall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req struct {
			UserID string `json:"userId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.UserID != "u1" {
			t.Errorf("userId = %q, want u1", req.UserID)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"recommendations": []string{"B", "A", "B", ""},
		})
	}))
	defer srv.Close()

	r := NewRemote(RemoteConfig{Endpoint: srv.URL, Timeout: time.Second, Logger: logging.Nop()})
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if got := ids(items); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("Recall() = %v, want [B A]", got)
	}
	if items[0].Label("recall_source") != "remote" {
		t.Errorf("recall_source = %q", items[0].Label("recall_source"))
	}
}

func TestRemote_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	r := NewRemote(RemoteConfig{
		Endpoint:    srv.URL,
		Timeout:     time.Second,
		MaxFailures: 2,
		OpenTimeout: time.Minute,
		Logger:      logging.Nop(),
	})
	rctx := &core.RecommendContext{UserID: "u1"}

	for i := 0; i < 2; i++ {
		if _, err := r.Recall(context.Background(), rctx); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if r.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", r.State())
	}

	_, err := r.Recall(context.Background(), rctx)
	if !core.IsUnavailable(err) {
		t.Errorf("open breaker error = %v, want UNAVAILABLE", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2 (open breaker must not call out)", got)
	}
}

func TestRemote_NoEndpoint(t *testing.T) {
	r := NewRemote(RemoteConfig{Logger: logging.Nop()})
	if _, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"}); err == nil {
		t.Error("Recall() without endpoint should fail")
	}
}
