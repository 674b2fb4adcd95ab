// Package coupons holds the immutable coupon rule table.
package coupons

import (
	"fmt"
	"strings"
)

// Type is the kind of benefit a coupon grants.
type Type string

const (
	TypePercent  Type = "percent"
	TypeFlat     Type = "flat"
	TypeShipping Type = "shipping"
)

// Valid reports whether t is a known coupon type.
func (t Type) Valid() bool {
	switch t {
	case TypePercent, TypeFlat, TypeShipping:
		return true
	}
	return false
}

// Rule is a single coupon definition. Value is a percentage for percent
// coupons, an amount for flat coupons and ignored for shipping coupons.
type Rule struct {
	Code        string `yaml:"code"`
	Type        Type   `yaml:"type"`
	Value       int64  `yaml:"value"`
	MinSubtotal int64  `yaml:"min_subtotal"`
}

// Eligible reports whether subtotal meets the rule's minimum spend.
func (r Rule) Eligible(subtotal int64) bool {
	return subtotal >= r.MinSubtotal
}

// Shortfall returns how much more must be spent before the rule applies.
func (r Rule) Shortfall(subtotal int64) int64 {
	if r.Eligible(subtotal) {
		return 0
	}
	return r.MinSubtotal - subtotal
}

func (r Rule) validate() error {
	if Normalize(r.Code) == "" {
		return fmt.Errorf("coupon code is required")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("coupon %s: unknown type %q", r.Code, r.Type)
	}
	if r.Value < 0 {
		return fmt.Errorf("coupon %s: value must be non-negative", r.Code)
	}
	if r.Type == TypePercent && r.Value > 100 {
		return fmt.Errorf("coupon %s: percent value must be at most 100", r.Code)
	}
	if r.MinSubtotal < 0 {
		return fmt.Errorf("coupon %s: min subtotal must be non-negative", r.Code)
	}
	return nil
}

// Normalize trims and upper-cases a user supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Table is a read-only lookup of rules keyed by normalized code.
type Table struct {
	rules map[string]Rule
	order []string
}

// NewTable validates rules and builds a table. Codes are normalized and must be unique.
func NewTable(rules ...Rule) (*Table, error) {
	t := &Table{rules: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		if err := rule.validate(); err != nil {
			return nil, err
		}
		rule.Code = Normalize(rule.Code)
		if _, dup := t.rules[rule.Code]; dup {
			return nil, fmt.Errorf("duplicate coupon code %s", rule.Code)
		}
		t.rules[rule.Code] = rule
		t.order = append(t.order, rule.Code)
	}
	return t, nil
}

// Default returns the built-in storefront coupons.
func Default() *Table {
	t, err := NewTable(DefaultRules()...)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultRules lists the built-in coupons.
func DefaultRules() []Rule {
	return []Rule{
		{Code: "SAVE10", Type: TypePercent, Value: 10, MinSubtotal: 1000},
		{Code: "FLAT200", Type: TypeFlat, Value: 200, MinSubtotal: 1500},
		{Code: "FREESHIP", Type: TypeShipping, Value: 0, MinSubtotal: 500},
	}
}

// Lookup finds the rule for code after normalizing it. Matching is exact.
func (t *Table) Lookup(code string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	rule, ok := t.rules[Normalize(code)]
	return rule, ok
}

// Rules returns the rules in definition order.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	out := make([]Rule, 0, len(t.order))
	for _, code := range t.order {
		out = append(out, t.rules[code])
	}
	return out
}
