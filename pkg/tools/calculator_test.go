package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatorExecute(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       string
		wantErr    bool
	}{
		{name: "addition", expression: "2 + 3", want: "5"},
		{name: "precedence", expression: "2 + 3 * 4", want: "14"},
		{name: "parentheses", expression: "(2 + 3) * 4", want: "20"},
		{name: "division", expression: "10 / 4", want: "2.5"},
		{name: "modulo", expression: "10 % 3", want: "1"},
		{name: "power right associative", expression: "2 ^ 3 ^ 2", want: "512"},
		{name: "unary minus", expression: "-5 + 3", want: "-2"},
		{name: "nested", expression: "((1 + 2) * (3 + 4)) / 7", want: "3"},
		{name: "decimal", expression: "0.1 + 0.2 * 10", want: "2.1"},
		{name: "division by zero", expression: "1 / 0", wantErr: true},
		{name: "trailing garbage", expression: "1 + 2 abc", wantErr: true},
		{name: "unclosed paren", expression: "(1 + 2", wantErr: true},
		{name: "empty", expression: "  ", wantErr: true},
		{name: "letters rejected", expression: "import os", wantErr: true},
	}

	calc := NewCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Execute(context.Background(), map[string]any{"expression": tt.expression})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculatorRequiresExpressionArg(t *testing.T) {
	calc := NewCalculator()
	_, err := calc.Execute(context.Background(), map[string]any{})
	require.Error(t, err)
}
