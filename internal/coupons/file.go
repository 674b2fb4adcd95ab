package coupons

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type couponFile struct {
	Coupons []Rule `yaml:"coupons"`
}

// LoadFile reads a YAML rule table of the form:
//
//	coupons:
//	  - code: SAVE10
//	    type: percent
//	    value: 10
//	    min_subtotal: 1000
func LoadFile(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading coupons file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML rule table.
func Parse(raw []byte) (*Table, error) {
	var doc couponFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding coupons: %w", err)
	}
	if len(doc.Coupons) == 0 {
		return nil, fmt.Errorf("coupons file defines no rules")
	}
	return NewTable(doc.Coupons...)
}
