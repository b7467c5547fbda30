package report

import (
	"sort"
	"strings"
)

// scope is one JSON object searched for candidate keys
type scope = map[string]any

var foldReplacer = strings.NewReplacer("_", "", "-", "", " ", "", ".", "")

// fold reduces a key to its case and separator agnostic form
func fold(key string) string {
	return foldReplacer.Replace(strings.ToLower(key))
}

// lookup returns the non-null values stored under key in s: the exact key
// first, then keys that fold to the same form in sorted order.
func lookup(s scope, key string) []any {
	if s == nil {
		return nil
	}

	var values []any
	if v, ok := s[key]; ok && v != nil {
		values = append(values, v)
	}

	want := fold(key)
	var folded []string
	for k, v := range s {
		if k != key && v != nil && fold(k) == want {
			folded = append(folded, k)
		}
	}
	sort.Strings(folded)
	for _, k := range folded {
		values = append(values, s[k])
	}
	return values
}

// pick walks scopes in order and, within each, the candidate keys in order.
// The first value the coercer accepts wins; values it rejects are skipped.
func pick[T any](scopes []scope, keys []string, coerce func(any) (T, bool)) (T, bool) {
	for _, s := range scopes {
		for _, key := range keys {
			for _, v := range lookup(s, key) {
				if out, ok := coerce(v); ok {
					return out, true
				}
			}
		}
	}
	var zero T
	return zero, false
}

// pickOr is pick with a fallback for absent or unusable values
func pickOr[T any](scopes []scope, keys []string, coerce func(any) (T, bool), fallback T) T {
	if out, ok := pick(scopes, keys, coerce); ok {
		return out
	}
	return fallback
}

// objects collects every object stored under keys across scopes, in search order
func objects(scopes []scope, keys []string) []scope {
	var out []scope
	for _, s := range scopes {
		for _, key := range keys {
			for _, v := range lookup(s, key) {
				if obj, ok := asObject(v); ok {
					out = append(out, obj)
				}
			}
		}
	}
	return out
}
