// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tfctl/catsync/internal/attrs"
	"github.com/tfctl/catsync/internal/log"
)

// filterRegex splits a filter expression into key, operator (with optional
// negation) and target. "name" (key only), "name=value" and "name=" all
// match.
var filterRegex = regexp.MustCompile(`^([^!?=^~<>@/]*)(!?[=^~<>@/])?(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Expressions with an empty key are skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Values containing commas need another delimiter.
	delim := ","
	if d, ok := os.LookupEnv("CATSYNC_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		filterSpec = strings.TrimSpace(filterSpec)
		if filterSpec == "" {
			continue
		}

		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Errorf("invalid filter: %s", filterSpec)
			continue
		}

		key := strings.TrimSpace(parts[1])
		operand := parts[2]
		target := parts[3]

		if key == "" {
			log.Errorf("invalid filter: empty key in %s", filterSpec)
			continue
		}

		negate := strings.HasPrefix(operand, "!")
		operand = strings.TrimPrefix(operand, "!")

		filters = append(filters, Filter{
			Key:     key,
			Negate:  negate,
			Operand: operand,
			Value:   target,
		})
	}

	return filters
}

// FilterDataset returns one row per item of candidates that matches every
// filter in spec. Rows hold each attr's value under its output key.
func FilterDataset(candidates gjson.Result, attrList attrs.AttrList, spec string) []map[string]interface{} {
	//nolint:prealloc
	var filteredResults []map[string]interface{}

	filters := BuildFilters(spec)

	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, attrList, filters) {
			continue
		}

		result := make(map[string]interface{})
		for _, attr := range attrList {
			if attr.Key == "*" {
				continue
			}
			// Transforms are applied when the rows are written.
			result[attr.OutputKey] = candidate.Get(attr.Key).Value()
		}
		filteredResults = append(filteredResults, result)
	}

	return filteredResults
}

// applyFilters returns true if the candidate matches all filters. A filter
// key names an attr by output key, or is otherwise used as a gjson path.
func applyFilters(candidate gjson.Result, attrList attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		path := filter.Key
		if attr, ok := attrList.Lookup(filter.Key); ok {
			path = attr.Key
		}

		value := candidate.Get(path).Value()
		if value == nil {
			// A missing value only satisfies a negated filter.
			if filter.Operand != "" && filter.Negate {
				continue
			}
			return false
		}

		result := true
		switch v := value.(type) {
		case string:
			if num, ok := numericString(v, filter); ok {
				result = checkNumericOperand(num, filter)
			} else {
				result = checkStringOperand(v, filter)
			}
		case bool:
			result = checkStringOperand(fmt.Sprintf("%v", v), filter)
		case float64:
			result = checkNumericOperand(v, filter)
		default:
			if filter.Operand == "@" {
				result = checkContainsOperand(value, filter)
			}
		}

		if !result {
			return false
		}
	}

	return true
}

// numericString reports whether a string value and the filter target are
// both numbers and the operand is a comparison, so "12.00">9 compares as a
// number.
func numericString(v string, filter Filter) (float64, bool) {
	if filter.Operand != "<" && filter.Operand != ">" {
		return 0, false
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(filter.Value), 64); err != nil {
		return 0, false
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return num, err == nil
}

// checkContainsOperand evaluates a membership style filter (operand '@')
// against list or object values.
func checkContainsOperand(value interface{}, filter Filter) bool {
	switch val := value.(type) {
	case []any:
		for _, item := range val {
			if fmt.Sprintf("%v", item) == filter.Value {
				return !filter.Negate
			}
		}
		return filter.Negate
	case map[string]any:
		_, found := val[filter.Value]
		return found == !filter.Negate
	default:
		log.Errorf("unsupported type for contains filtering: %T", value)
		return false
	}
}

// checkNumericOperand compares a numeric value against the filter value using
// numeric semantics. Supported operands: =, >, < and their negations.
func checkNumericOperand(value float64, filter Filter) bool {
	if filter.Operand == "" {
		return true
	}

	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Value), 64)
	if err != nil {
		log.Errorf("invalid numeric value: %s", filter.Value)
		return false
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Errorf("unsupported numeric operand: %s", filter.Operand)
		return false
	}
}

// checkStringOperand evaluates a string comparison style filter against the
// provided value using the operand semantics. A key with no operand only
// requires the value to be present.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "":
		return true
	case "=":
		return value == filter.Value == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Value) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Value) == !filter.Negate
	case ">":
		return value > filter.Value == !filter.Negate
	case "<":
		return value < filter.Value == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Value) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Value, value)
		if err != nil {
			log.Errorf("invalid regex: %s", filter.Value)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Errorf("unsupported filtering operand: %s", filter.Operand)
		return false
	}
}
