package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pkg/metrics"
	"github.com/rushteam/reviewkit/pkg/utils"
)

// Remote 是通过 HTTP 调用外部推荐服务的召回源，调用受熔断器保护。
//
// 请求格式（JSON，POST）：
//
//	{"userId": "user_123"}
//
// 响应格式：
//
//	{"recommendations": ["item_1", "item_2"]}
//
// 使用示例：
//
//	remote := recall.NewRemote(recall.RemoteConfig{
//		Endpoint: "http://localhost:5000/recommendations",
//		Timeout:  2 * time.Second,
//	})
//
//	tiered := &recall.Tiered{
//		Sources: []recall.Source{remote, &recall.NeighborFavorites{}, &recall.Popularity{}},
//	}
type Remote struct {
	Endpoint string
	Client   *http.Client
	Logger   zerolog.Logger

	cb *gobreaker.CircuitBreaker[[]string]
}

// RemoteConfig 是 Remote 的构建参数
type RemoteConfig struct {
	Endpoint string
	Timeout  time.Duration

	// MaxFailures 连续失败多少次后打开熔断器（默认 5）
	MaxFailures uint32

	// OpenTimeout 熔断器从 open 进入 half-open 的等待时间（默认 30s）
	OpenTimeout time.Duration

	// Client 可选，未设置时按 Timeout 创建
	Client *http.Client

	Logger zerolog.Logger
}

// NewRemote 创建远程召回源
func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	r := &Remote{
		Endpoint: cfg.Endpoint,
		Client:   client,
		Logger:   cfg.Logger,
	}

	name := "remote-recommender"
	metrics.BreakerState.WithLabelValues(name).Set(0)
	maxFailures := cfg.MaxFailures
	r.cb = gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.Logger.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return r
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (r *Remote) Name() string { return "recall.remote" }

// State 返回熔断器当前状态
func (r *Remote) State() gobreaker.State {
	return r.cb.State()
}

// Recall 实现 Source 接口。熔断打开时直接返回 UNAVAILABLE 错误，不发起请求。
func (r *Remote) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Endpoint == "" {
		return nil, core.NewDomainError(core.ModuleRemote, core.ErrorCodeInvalidInput, "remote endpoint is required")
	}
	if rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	ids, err := r.cb.Execute(func() ([]string, error) {
		return r.call(ctx, rctx.UserID)
	})
	if err != nil {
		metrics.RemoteFailures.Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, core.WrapDomainError(core.ModuleRemote, core.ErrorCodeUnavailable, "circuit open", err)
		}
		return nil, err
	}

	items := make([]*core.Item, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		it := core.NewItem(id)
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "remote", Source: "recall"})
		items = append(items, it)
	}
	return items, nil
}

type remoteRequest struct {
	UserID string `json:"userId"`
}

type remoteResponse struct {
	Recommendations []string `json:"recommendations"`
}

func (r *Remote) call(ctx context.Context, userID string) ([]string, error) {
	body, err := json.Marshal(remoteRequest{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote recall call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("remote recall error: status=%d, body=%s", resp.StatusCode, string(msg))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Recommendations, nil
}
