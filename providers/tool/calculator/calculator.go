package calculator

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/fungraph/core/jsonschema"
	"github.com/leofalp/fungraph/providers/tool"
)

// ToolName is the name the calculator is registered under.
const ToolName = "calculator"

// ErrDivisionByZero is returned for a division with a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

// Input holds the two operands and the operation applied to them.
type Input struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	Op string  `json:"op"`
}

// Output carries the result of the operation.
type Output struct {
	Result float64 `json:"result"`
}

// NewTool returns the calculator tool. Its schema restricts op to add, sub,
// mul and div, so a catalog rejects other operations before Calc runs.
func NewTool() *tool.FuncTool[Input, Output] {
	return tool.NewFuncTool(ToolName, Calc,
		tool.WithDescription("Perform one arithmetic operation (add, sub, mul, div) on two numbers."),
		tool.WithParameters(jsonschema.Object(map[string]*jsonschema.Schema{
			"a":  jsonschema.Number("First operand"),
			"b":  jsonschema.Number("Second operand"),
			"op": jsonschema.String("Operation").WithEnum("add", "sub", "mul", "div"),
		}, "a", "b", "op")),
	)
}

// Calc applies input.Op to the operands. The symbols +, -, * and / are
// accepted as aliases.
func Calc(ctx context.Context, input Input) (Output, error) {
	switch input.Op {
	case "add", "+":
		return Output{Result: input.A + input.B}, nil
	case "sub", "-":
		return Output{Result: input.A - input.B}, nil
	case "mul", "*":
		return Output{Result: input.A * input.B}, nil
	case "div", "/":
		if input.B == 0 {
			return Output{}, ErrDivisionByZero
		}
		return Output{Result: input.A / input.B}, nil
	default:
		return Output{}, fmt.Errorf("unsupported operation %q", input.Op)
	}
}
