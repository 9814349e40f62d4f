package expression

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// CheckFileSingleMatch returns true if any expression matches the file.
func CheckFileSingleMatch(f *File, expressions []CompiledExpression) (bool, error) {
	match, _, err := CheckFileSingleMatchWithReason(f, expressions)
	return match, err
}

// CheckFileSingleMatchWithReason returns true and the matching expression
// text if any expression matches the file.
func CheckFileSingleMatchWithReason(f *File, expressions []CompiledExpression) (bool, string, error) {
	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, f)
		if err != nil {
			return false, "", fmt.Errorf("check expression: %w", err)
		}

		expResult, ok := result.(bool)
		if !ok {
			return false, "", fmt.Errorf("type assert expression result: %T", result)
		}

		if expResult {
			return true, expression.Text, nil
		}
	}

	return false, "", nil
}

// CheckFileAllMatch returns true only if every expression matches the file.
func CheckFileAllMatch(f *File, expressions []CompiledExpression) (bool, error) {
	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, f)
		if err != nil {
			return false, fmt.Errorf("check expression: %w", err)
		}

		expResult, ok := result.(bool)
		if !ok {
			return false, fmt.Errorf("type assert expression result: %T", result)
		}

		if !expResult {
			return false, nil
		}
	}

	return true, nil
}
