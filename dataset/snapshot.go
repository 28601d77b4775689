// Package dataset 负责加载两份输入数据、构建只读快照并原子发布。
//
// 读方通过 Holder.Current 拿到完整构建好的 Snapshot，永远看不到构建了一半的数据。
package dataset

import (
	"sync/atomic"
	"time"

	"github.com/rushteam/reviewkit/aggregate"
	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pkg/metrics"
	"github.com/rushteam/reviewkit/similarity"
)

// Snapshot 是某一时刻的只读数据集，发布后不再修改。
type Snapshot struct {
	Catalog    *aggregate.Store
	Index      *similarity.Index
	Records    int
	Generation uint64
	LoadedAt   time.Time
}

// ItemCatalog 以接口形式返回 Catalog，nil 快照返回 nil 接口
func (s *Snapshot) ItemCatalog() core.ItemCatalog {
	if s == nil || s.Catalog == nil {
		return nil
	}
	return s.Catalog
}

// NeighborIndex 以接口形式返回 Index，nil 快照返回 nil 接口
func (s *Snapshot) NeighborIndex() core.NeighborIndex {
	if s == nil || s.Index == nil {
		return nil
	}
	return s.Index
}

// Holder 持有当前发布的快照。
type Holder struct {
	current atomic.Pointer[Snapshot]
	gen     atomic.Uint64
}

// Publish 为快照分配新的代数并原子替换当前快照，返回分配的代数。
func (h *Holder) Publish(s *Snapshot) uint64 {
	s.Generation = h.gen.Add(1)
	if s.LoadedAt.IsZero() {
		s.LoadedAt = time.Now()
	}
	h.current.Store(s)

	metrics.SnapshotGeneration.Set(float64(s.Generation))
	metrics.SnapshotItems.Set(float64(s.Catalog.Len()))
	return s.Generation
}

// Current 返回当前快照，尚未发布时返回 nil。
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Ready 报告是否已发布过快照
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}
