// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation for user-supplied integrand
// expressions and bound spellings.
//
// The CLI and HTTP service accept integrands as expression strings and
// bounds as strings that may spell infinity. These validators run before
// the expression compiler so that malformed or hostile input (control
// characters, string literals smuggled into a numeric DSL, absurd lengths)
// is rejected with a clear message instead of reaching the parser.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxExpressionLength caps integrand expression size. Long expressions are
// legitimate (nested fractions, long polynomials) but unbounded input is a
// parser DoS vector.
const MaxExpressionLength = 1024

// expressionPattern matches the numeric expression subset: identifiers,
// numbers, arithmetic operators, comparisons for ternaries, and grouping.
// String literals and control characters are deliberately outside the set.
var expressionPattern = regexp.MustCompile(`^[A-Za-z0-9_+\-*/%^!<>=?: .,()]+$`)

// ValidateExpression checks that an integrand expression string is safe to
// hand to the expression compiler.
//
// Valid expressions:
//   - 1 to MaxExpressionLength characters
//   - identifiers, digits, arithmetic and comparison operators,
//     parentheses, commas, spaces
//   - balanced parentheses
//
// The compiler performs full syntax and type checking afterwards; this is
// the cheap boundary filter.
//
// Example:
//
//	if err := validation.ValidateExpression(req.Integrand); err != nil {
//	    return nil, fmt.Errorf("invalid integrand: %w", err)
//	}
func ValidateExpression(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return fmt.Errorf("expression cannot be empty")
	}

	if len(expression) > MaxExpressionLength {
		return fmt.Errorf("expression exceeds %d characters", MaxExpressionLength)
	}

	if !expressionPattern.MatchString(expression) {
		return fmt.Errorf("expression contains characters outside the numeric subset: %q", expression)
	}

	depth := 0
	for _, r := range expression {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("unbalanced parentheses in expression: %q", expression)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced parentheses in expression: %q", expression)
	}

	return nil
}

// SanitizeExpression trims and validates an expression string.
// Returns the trimmed expression if valid, or an error if invalid.
//
// Use this at the service boundary:
//
//	safeExpr, err := validation.SanitizeExpression(userInput)
//	if err != nil {
//	    return err
//	}
//	// safeExpr is trimmed and validated
func SanitizeExpression(expression string) (string, error) {
	normalized := strings.TrimSpace(expression)
	if err := ValidateExpression(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// ParseBound parses a bound spelling into a float64.
//
// Accepted spellings (case-insensitive):
//   - "inf", "+inf", "infinity" for positive infinity
//   - "-inf", "-infinity" for negative infinity
//   - anything strconv.ParseFloat accepts ("2.5", "1e-3", "-4")
//
// NaN is rejected: it is never a meaningful integration bound.
func ParseBound(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("bound cannot be empty")
	}

	switch strings.ToLower(trimmed) {
	case "inf", "+inf", "infinity", "+infinity":
		return math.Inf(1), nil
	case "-inf", "-infinity":
		return math.Inf(-1), nil
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bound %q: %w", s, err)
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("bound cannot be NaN")
	}
	return v, nil
}
