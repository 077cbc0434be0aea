// Package config holds the value handling shared by the config store
// adapters. Settings are flat dotted keys such as "feed.page_size".
package config

import "sort"

// Values maps dotted keys to decoded values. TOML decodes integers as
// int64 and JSON as float64, so Int accepts every numeric form. Strings
// are never parsed; the settings service stores typed values.
type Values map[string]any

// String returns the string at key, or "" when missing or not a string.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns the integer at key, or 0 when missing or not numeric.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Bool returns the boolean at key, or false when missing or not a bool.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// Keys returns every key, sorted.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
