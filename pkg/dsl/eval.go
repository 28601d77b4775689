package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/reviewkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Predicate 是编译后的物品过滤表达式，使用 CEL (Common Expression Language)。
// 编译一次后可并发地对多个 ItemAggregate 求值。
//
// 可用字段（item.xxx）：
//   - id: 物品 ID
//   - records: 记录数
//   - positive_keywords / negative_keywords: 关键词列表
//   - counts: 情感计数，如 item.counts.POSITIVE
//   - avg_positive / avg_negative / avg_neutral: 平均分（无可用分数时为 NaN）
//
// 求值出错（例如对 NaN 做大小比较、访问不存在的字段）时视为不匹配，不返回错误；
// 表达式结果不是布尔值时返回错误。
//
// 示例：
//   - `item.avg_positive > 0.6`
//   - `"campus" in item.positive_keywords && item.counts.NEGATIVE == 0`
//   - `item.id.startsWith("Uni")`
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile 解析并编译表达式；空表达式匹配全部物品。
func Compile(expr string) (*Predicate, error) {
	p := &Predicate{expr: expr}
	if expr == "" {
		return p, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.WrapDomainError(core.ModuleAggregate, core.ErrorCodeInvalidInput, "compile error", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	p.prg = prg
	return p, nil
}

// String 返回原始表达式
func (p *Predicate) String() string { return p.expr }

// Match 对单个物品求值，表达式必须返回布尔值。
func (p *Predicate) Match(agg *core.ItemAggregate) (bool, error) {
	if p.prg == nil {
		return true, nil
	}
	if agg == nil {
		return false, nil
	}

	out, _, err := p.prg.Eval(map[string]any{"item": buildInput(agg)})
	if err != nil {
		return false, nil
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(agg *core.ItemAggregate) map[string]any {
	counts := make(map[string]int64, len(core.Sentiments))
	for _, s := range core.Sentiments {
		counts[s.String()] = int64(agg.SentimentCounts[s])
	}

	pos := agg.PositiveKeywords
	if pos == nil {
		pos = []string{}
	}
	neg := agg.NegativeKeywords
	if neg == nil {
		neg = []string{}
	}

	return map[string]any{
		"id":                agg.ItemID,
		"records":           int64(len(agg.Records)),
		"positive_keywords": pos,
		"negative_keywords": neg,
		"counts":            counts,
		"avg_positive":      agg.AverageScore(core.ScorePositive),
		"avg_negative":      agg.AverageScore(core.ScoreNegative),
		"avg_neutral":       agg.AverageScore(core.ScoreNeutral),
	}
}
