package extension

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// sharedKey is the keyword argument that marks a declaration as shared.
const sharedKey = "shared"

// KV is a keyword argument passed to Extension.Init.
type KV struct {
	Key   string
	Value any
}

// Kw builds a keyword argument.
//
//	e.Init("orders", extension.Kw("durable", true))
func Kw(key string, value any) KV {
	return KV{Key: key, Value: value}
}

// SharedArg marks a declaration as shared within one container.
var SharedArg = Kw(sharedKey, true)

// Args are the constructor arguments recorded when a unit is declared.
// The zero value holds no arguments. Args are never mutated after
// construction; accessors hand out copies.
type Args struct {
	positional []any
	keyword    map[string]any
}

// NewArgs splits raw Init arguments into positional and keyword values.
func NewArgs(raw ...any) Args {
	var a Args
	for _, v := range raw {
		if kv, ok := v.(KV); ok {
			if a.keyword == nil {
				a.keyword = make(map[string]any)
			}
			a.keyword[kv.Key] = kv.Value
			continue
		}
		a.positional = append(a.positional, v)
	}
	return a
}

// Positional returns a copy of the positional arguments.
func (a Args) Positional() []any { return slices.Clone(a.positional) }

// Keywords returns a copy of the keyword arguments.
func (a Args) Keywords() map[string]any { return maps.Clone(a.keyword) }

// Keyword returns a single keyword argument.
func (a Args) Keyword(key string) (any, bool) {
	v, ok := a.keyword[key]
	return v, ok
}

// Len returns the total number of arguments.
func (a Args) Len() int { return len(a.positional) + len(a.keyword) }

// Equal reports whether both argument sets hold equal values.
func (a Args) Equal(o Args) bool {
	if len(a.positional) != len(o.positional) || len(a.keyword) != len(o.keyword) {
		return false
	}
	for i := range a.positional {
		if !reflect.DeepEqual(a.positional[i], o.positional[i]) {
			return false
		}
	}
	for k, v := range a.keyword {
		ov, ok := o.keyword[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

func (a Args) String() string {
	parts := make([]string, 0, a.Len())
	for _, v := range a.positional {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	keys := make([]string, 0, len(a.keyword))
	for k := range a.keyword {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, a.keyword[k]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// shared reports whether the arguments ask for a shared declaration.
func (a Args) shared() bool {
	v, ok := a.keyword[sharedKey].(bool)
	return ok && v
}
