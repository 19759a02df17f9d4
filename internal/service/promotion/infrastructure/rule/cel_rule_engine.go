// Package rule 把第三方表达式引擎适配到 domain.RuleEngine 接口。
package rule

import (
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"storefront/internal/service/promotion/domain"
)

// CELRuleEngine 用 CEL 表达式评估促销条件，表达式通过 order.<key> 访问订单事实，
// 例如 `order.item_total >= 50.0 && order.country == "US"`。
// 编译结果按表达式缓存，可并发使用。
type CELRuleEngine struct {
	env      *cel.Env
	programs sync.Map // rule -> cel.Program
}

func NewCELRuleEngine() (*CELRuleEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("order", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create cel env")
	}
	return &CELRuleEngine{env: env}, nil
}

// Evaluate 空规则视为无条件适用
func (e *CELRuleEngine) Evaluate(rule string, fact domain.Fact) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	prg, err := e.program(rule)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]any{"order": map[string]any(fact)})
	if err != nil {
		return false, errors.Wrapf(domain.ErrInvalidRule, "eval %q: %v", rule, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, errors.Wrapf(domain.ErrInvalidRule, "%q evaluates to %s, want bool", rule, out.Type().TypeName())
	}
	return result, nil
}

func (e *CELRuleEngine) program(rule string) (cel.Program, error) {
	if cached, ok := e.programs.Load(rule); ok {
		return cached.(cel.Program), nil
	}
	ast, iss := e.env.Compile(rule)
	if iss != nil && iss.Err() != nil {
		return nil, errors.Wrapf(domain.ErrInvalidRule, "compile %q: %v", rule, iss.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidRule, "program %q: %v", rule, err)
	}
	e.programs.Store(rule, prg)
	return prg, nil
}
