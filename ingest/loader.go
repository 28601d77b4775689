package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// RowLoader 从某个来源加载按列名取值的行（交互表或相似度矩阵）。
type RowLoader interface {
	Load(ctx context.Context, source string) ([]map[string]string, error)
}

// HTTPLoader 通过 HTTP GET 下载 CSV。
type HTTPLoader struct {
	client *http.Client
}

// NewHTTPLoader 创建 HTTP CSV 加载器
//
// 用法：
//
//	loader := ingest.NewHTTPLoader(10 * time.Second)
//	rows, err := loader.Load(ctx, "https://bucket.example.com/interactions.csv")
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPLoader{
		client: &http.Client{Timeout: timeout},
	}
}

// NewHTTPLoaderWithClient 使用自定义 HTTP 客户端创建加载器
func NewHTTPLoaderWithClient(client *http.Client) *HTTPLoader {
	return &HTTPLoader{client: client}
}

// Load 下载并解析 CSV
func (l *HTTPLoader) Load(ctx context.Context, url string) ([]map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: status=%d, body=%s", url, resp.StatusCode, string(body))
	}

	rows, err := ReadCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return rows, nil
}

// FileLoader 从本地文件读取 CSV。
type FileLoader struct{}

// Load 打开并解析本地 CSV 文件
func (FileLoader) Load(ctx context.Context, path string) ([]map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

// SourceLoader 根据来源前缀选择加载器：http(s):// 走 HTTP，其余按本地路径处理。
type SourceLoader struct {
	HTTP *HTTPLoader
}

func (l *SourceLoader) Load(ctx context.Context, source string) ([]map[string]string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		h := l.HTTP
		if h == nil {
			h = NewHTTPLoader(0)
		}
		return h.Load(ctx, source)
	}
	return FileLoader{}.Load(ctx, source)
}

var (
	_ RowLoader = (*HTTPLoader)(nil)
	_ RowLoader = FileLoader{}
	_ RowLoader = (*SourceLoader)(nil)
)
