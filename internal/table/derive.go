package table

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"path"
	"strconv"

	"sadf/internal/config"

	"github.com/casbin/govaluate"
)

// Derive appends a computed field to every time-indexed table whose name matches a
// definition's table pattern. Definitions are applied in order, so a later
// expression may use a field added by an earlier one. Rows where a referenced value
// is empty or not numeric, or where evaluation fails, get an empty value.
func Derive(allTableValues []TableValues, defs []config.Derived) error {
	functions := getEvaluatorFunctions()
	for _, def := range defs {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(def.Expression, functions)
		if err != nil {
			return fmt.Errorf("derived field %s: failed to parse expression %q: %w", def.Name, def.Expression, err)
		}
		matched := 0
		for i := range allTableValues {
			tableValues := &allTableValues[i]
			if !tableValues.HasRows {
				continue
			}
			if ok, _ := path.Match(def.Table, tableValues.Name); !ok {
				continue
			}
			field, err := deriveField(*tableValues, def.Name, expr)
			if err != nil {
				return fmt.Errorf("derived field %s, table %s: %w", def.Name, tableValues.Name, err)
			}
			tableValues.Fields = append(tableValues.Fields, field)
			matched++
		}
		if matched == 0 {
			slog.Warn("derived field matched no table", slog.String("name", def.Name), slog.String("table", def.Table))
		}
	}
	return nil
}

func deriveField(tableValues TableValues, name string, expr *govaluate.EvaluableExpression) (Field, error) {
	if _, err := GetFieldIndex(name, tableValues); err == nil {
		return Field{}, fmt.Errorf("field already exists")
	}
	vars := expr.Vars()
	fieldIndices := make([]int, len(vars))
	for i, v := range vars {
		idx, err := GetFieldIndex(v, tableValues)
		if err != nil {
			return Field{}, err
		}
		fieldIndices[i] = idx
	}
	field := Field{Name: name, Values: make([]string, tableValues.NumRows())}
	for row := range tableValues.NumRows() {
		variables := make(map[string]any, len(vars))
		for i, v := range vars {
			value, err := strconv.ParseFloat(tableValues.Fields[fieldIndices[i]].Values[row], 64)
			if err != nil {
				variables = nil
				break
			}
			variables[v] = value
		}
		if variables == nil {
			continue
		}
		result, err := expr.Evaluate(variables)
		if err != nil {
			slog.Warn("failed to evaluate derived field", slog.String("table", tableValues.Name), slog.String("name", name), slog.Int("row", row), slog.String("error", err.Error()))
			continue
		}
		field.Values[row] = FormatValue(result)
	}
	return field, nil
}

// getEvaluatorFunctions defines functions that can be called in derived field expressions
func getEvaluatorFunctions() map[string]govaluate.ExpressionFunction {
	functions := make(map[string]govaluate.ExpressionFunction)
	functions["max"] = func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("max takes 2 arguments, got %d", len(args))
		}
		return max(toFloat(args[0]), toFloat(args[1])), nil
	}
	functions["min"] = func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("min takes 2 arguments, got %d", len(args))
		}
		return min(toFloat(args[0]), toFloat(args[1])), nil
	}
	return functions
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case int:
		return float64(t)
	case float64:
		return t
	}
	return 0
}
