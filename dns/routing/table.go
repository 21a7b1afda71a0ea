// Package routing loads the callback-to-server routing table and keeps it
// current while the bot runs.
package routing

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyTable is returned when a file declares neither routing section.
	ErrEmptyTable = errors.New("routing: no routing sections in file")
	// ErrEmptyCode is returned for a mapping with a blank callback code.
	ErrEmptyCode = errors.New("routing: empty callback code")
)

// Table maps callback codes to server identifiers. A loaded Table is never mutated.
type Table struct {
	Servers       map[string]string `yaml:"callbackToServer"`
	International map[string]string `yaml:"callbackToInternationalServer"`
}

// Parse decodes a routing table from JSON or YAML.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("routing: parse: %w", err)
	}
	if t.Servers == nil && t.International == nil {
		return nil, ErrEmptyTable
	}
	for _, m := range []map[string]string{t.Servers, t.International} {
		for code := range m {
			if strings.TrimSpace(code) == "" {
				return nil, ErrEmptyCode
			}
		}
	}
	return &t, nil
}

// Load reads and parses the routing file at path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routing: read %s: %w", path, err)
	}
	return Parse(data)
}

// Lookup resolves a callback code, preferring the domestic section.
// The bare country code (the part after the last underscore) is tried as well.
func (t *Table) Lookup(code string) (server string, international bool, ok bool) {
	if t == nil {
		return "", false, false
	}
	keys := []string{code}
	if i := strings.LastIndexByte(code, '_'); i >= 0 && i < len(code)-1 {
		keys = append(keys, code[i+1:])
	}
	for _, k := range keys {
		if s, found := t.Servers[k]; found {
			return s, false, true
		}
		if s, found := t.International[k]; found {
			return s, true, true
		}
	}
	return "", false, false
}

// Codes lists every routed code in sorted order.
func (t *Table) Codes() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(t.Servers)+len(t.International))
	for k := range t.Servers {
		seen[k] = struct{}{}
	}
	for k := range t.International {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
