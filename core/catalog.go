package core

// ItemCatalog 是物品聚合画像的只读领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由 aggregate.Store 实现
//   - 召回源只依赖此接口，避免 recall 与 aggregate 互相依赖
//
// 所有返回的顺序都是确定的：IDs 按物品首次出现顺序，RecordsByUser 按摄入顺序。
type ItemCatalog interface {
	// IDs 返回全部物品 ID（稳定顺序）
	IDs() []string

	// Get 读取单个物品的聚合画像
	Get(itemID string) (*ItemAggregate, bool)

	// RecordsByUser 返回某用户撰写的全部记录（按摄入顺序）
	RecordsByUser(userID string) []InteractionRecord

	// Len 返回物品数量
	Len() int
}

// Neighbor 是相似度矩阵中的一个相似用户。
type Neighbor struct {
	UserID string
	Score  float64
}

// NeighborIndex 是用户相似度矩阵的只读领域接口，由 similarity.Index 实现。
type NeighborIndex interface {
	// Has 报告矩阵中是否有该用户的行
	Has(userID string) bool

	// Neighbors 返回按分数降序（同分按 ID 升序，NaN 最后）的相似用户；
	// 用户不存在时返回空切片。topN <= 0 表示不截断。
	Neighbors(userID string, excludeSelf bool, topN int) []Neighbor

	// ColumnTotals 返回每一列在所有行上的合计（跳过 NaN），用于冷启动热度。
	ColumnTotals() map[string]float64
}
