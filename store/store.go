// Package store 提供 core.Store 的实现，接口定义在 core 包。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	var r core.Store = store.NewRedisStore(store.RedisConfig{Addr: "localhost:6379"})
package store
