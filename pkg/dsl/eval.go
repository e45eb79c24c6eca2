package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/tripkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量和函数
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// 定义变量类型
		cel.Variable("place", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是规则 DSL 解释器，使用 CEL (Common Expression Language) 实现。
// CEL 是 Google 开发的表达式语言，具有类型安全、高性能、线程安全等特性。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：place.category == "culture" / label.recall_source != "hot"
//   - 数值：place.rating >= 4.0 / place.budget_level <= 2
//   - 逻辑：place.category == "nature" && place.rating > 3.5
//   - 存在性：label.filtered != null
//   - 包含："art" in place.tags
//
// 示例：
//   - `place.budget_level <= 2` → 只保留低预算地点
//   - `place.rating >= 4.0 && "sea" in place.tags` → 高分海滨地点
type Eval struct {
	candidate *core.Candidate
	rctx      *core.RecommendContext
	env       *cel.Env
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(c *core.Candidate, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		candidate: c,
		rctx:      rctx,
		env:       env,
	}
}

// Evaluate 解析并执行 DSL 表达式，返回布尔结果。
// 空表达式返回 true（视为无条件通过）。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		// 访问不存在的 key 时 CEL 会报错；用 label.key != null 检查存在性
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{})
	labelAccessor := make(map[string]interface{})
	if e.candidate != nil {
		for k, v := range e.candidate.Labels {
			labels[k] = map[string]interface{}{
				"value":  v.Value,
				"source": v.Source,
			}
			// label.recall_source 直接访问 value
			labelAccessor[k] = v.Value
		}
	}

	place := map[string]interface{}{}
	if e.candidate != nil && e.candidate.Place != nil {
		p := e.candidate.Place
		place = map[string]interface{}{
			"id":           p.ID,
			"name":         p.Name,
			"category":     p.Category,
			"tags":         p.Tags,
			"rating":       p.Rating,
			"budget_level": p.BudgetLevel,
			"score":        e.candidate.Score,
			"labels":       labels,
		}
	}

	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx = map[string]interface{}{
			"user_id": e.rctx.UserID,
			"scene":   e.rctx.Scene,
			"query":   e.rctx.Query,
			"params":  e.rctx.Params,
		}
	}

	return map[string]interface{}{
		"place": place,
		"label": labelAccessor,
		"rctx":  rctx,
	}
}
