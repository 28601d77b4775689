// Package conv 提供单元格解析、map 取值等工具，用于简化各模块中的重复逻辑。
package conv

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParseScore 将单元格解析为 float64；空串、无法解析或非有限值（Inf）时返回 NaN，不报错。
func ParseScore(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// ParseUnitScore 与 ParseScore 相同，但 [0, 1] 之外的值也视为 NaN。
func ParseUnitScore(s string) float64 {
	v := ParseScore(s)
	if v < 0 || v > 1 {
		return math.NaN()
	}
	return v
}

// SplitKeywords 按逗号切分关键词：去除首尾空白、丢弃空项、去重，保持首次出现顺序。
func SplitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		kw := strings.TrimSpace(p)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// NormalizeKey 将列名归一化：去除空白与 BOM、驼峰转下划线、转大写。
// "itemId" / "item_id" / " ITEM_ID " 均归一化为 "ITEM_ID"。
func NormalizeKey(k string) string {
	k = strings.TrimSpace(strings.TrimPrefix(k, "\ufeff"))
	var b strings.Builder
	b.Grow(len(k) + 4)
	for i, r := range k {
		if r >= 'A' && r <= 'Z' && i > 0 {
			prev := k[i-1]
			if prev >= 'a' && prev <= 'z' {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// Lookup 按归一化后的列名在行中取值；原样匹配优先。
// 多个列名归一化后相同（如 "itemId" 与 "item_id"）时取字典序最小的列。
func Lookup(row map[string]string, key string) (string, bool) {
	if v, ok := row[key]; ok {
		return v, true
	}
	want := NormalizeKey(key)
	for _, k := range SortedKeys(row) {
		if NormalizeKey(k) == want {
			return row[k], true
		}
	}
	return "", false
}

// SortedKeys 返回 map 的 key（升序），用于与遍历顺序无关的处理。
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConfigGet 从 map[string]any（如 YAML/JSON 解析结果）按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigGetInt 从 config 取 int。YAML/JSON 常得到 int 或 float64，此处兼容并统一为 int。
func ConfigGetInt(m map[string]any, key string, defaultVal int) int {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case float32:
		return int(val)
	default:
		return defaultVal
	}
}

// ConfigGetStrings 从 config 取字符串列表；元素为数字时按 "%g" 格式化。
func ConfigGetStrings(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		switch val := e.(type) {
		case string:
			out = append(out, val)
		case int:
			out = append(out, strconv.Itoa(val))
		case float64:
			out = append(out, strconv.FormatFloat(val, 'g', -1, 64))
		}
	}
	return out
}

// ConfigGetDuration 从 config 取时长：字符串按 time.ParseDuration 解析（"2s"），数字视为秒。
func ConfigGetDuration(m map[string]any, key string, defaultVal time.Duration) time.Duration {
	if m == nil {
		return defaultVal
	}
	switch val := m[key].(type) {
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return defaultVal
		}
		return d
	case int:
		return time.Duration(val) * time.Second
	case float64:
		return time.Duration(val * float64(time.Second))
	default:
		return defaultVal
	}
}
