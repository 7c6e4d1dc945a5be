package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcpframework/core/internal/logger"
	"github.com/mcpframework/core/pkg/protocol"
	"github.com/mcpframework/core/pkg/registry"
)

// CalculatorTool returns the calculator tool definition.
func CalculatorTool() protocol.Tool {
	return protocol.Tool{
		Name:        "calculator",
		Description: "A simple calculator that can perform basic arithmetic operations",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"expression": {
					Type:        "string",
					Description: "A simple arithmetic expression with spaces around the operator, such as 2 + 2 or 4 * 6",
				},
			},
			Required: []string{"expression"},
		},
	}
}

// HandleCalculatorTool handles the calculator tool invocation.
func HandleCalculatorTool(ctx registry.ExecutionContext) (any, error) {
	paramsMap, ok := ctx.Arguments.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid parameters format")
	}

	expression, ok := paramsMap["expression"].(string)
	if !ok {
		return nil, fmt.Errorf("expression parameter is required and must be a string")
	}

	result, err := calculateResult(expression)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"result":     result,
		"expression": expression,
	}, nil
}

// calculateResult performs a simple calculation based on the input expression.
func calculateResult(expression string) (float64, error) {
	parts := strings.Fields(strings.TrimSpace(expression))
	if len(parts) != 3 {
		return 0, fmt.Errorf("expression must be in format 'number operator number'")
	}

	num1, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid first number: %v", err)
	}
	operator := parts[1]
	num2, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid second number: %v", err)
	}

	var result float64
	switch operator {
	case "+":
		result = num1 + num2
	case "-":
		result = num1 - num2
	case "*":
		result = num1 * num2
	case "/":
		if num2 == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		result = num1 / num2
	default:
		return 0, fmt.Errorf("unsupported operator: %s", operator)
	}

	logger.Info("Calculated", expression, "=", result)
	return result, nil
}
