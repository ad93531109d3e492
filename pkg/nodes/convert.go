package nodes

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// asInt converts the numeric forms a value takes after literal decoding.
func asInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint:
		return int(x), nil
	case uint8:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float32:
		if float32(math.Trunc(float64(x))) == x {
			return int(x), nil
		}
	case float64:
		if math.Trunc(x) == x {
			return int(x), nil
		}
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), nil
		}
	case string:
		if n, err := strconv.Atoi(x); err == nil {
			return n, nil
		}
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %v (%T) is not an integer", ErrInvalidInput, v, v)
}

// truthy follows the usual dynamic-language rules: zero values, empty
// strings and empty collections are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	case Accumulation:
		return len(x.Items) > 0
	}
	if n, err := asInt(v); err == nil {
		return n != 0
	}
	if f, ok := v.(float64); ok {
		return f != 0
	}
	if f, ok := v.(float32); ok {
		return f != 0
	}
	return true
}

// numbered collects values of base<start> .. base<start+n-1>; absent slots
// are nil.
func numbered(inputs map[string]any, base string, start, n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = inputs[base+strconv.Itoa(start+i)]
	}
	return out
}

// liveCount returns how many numbered slots to read. The resolved schema
// knows; without one the highest present index decides.
func liveCount(count int, inputs map[string]any, base string, start int) int {
	if count > 0 {
		return count
	}
	n := 0
	for name := range inputs {
		if len(name) <= len(base) || name[:len(base)] != base {
			continue
		}
		if idx, err := strconv.Atoi(name[len(base):]); err == nil && idx >= start && idx-start+1 > n {
			n = idx - start + 1
		}
	}
	return n
}

// describe renders v for Print: strings quoted, containers spelled out
// member by member with a trailing comma, numbers and booleans as written,
// and anything else by its type name.
func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return "'" + x + "'"
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case Accumulation:
		return "{'accum': " + describe(x.Items) + ",}"
	}

	rv := reflect.ValueOf(v)
	var b strings.Builder
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Slice, reflect.Array:
		b.WriteString("[")
		for i := 0; i < rv.Len(); i++ {
			b.WriteString(describe(rv.Index(i).Interface()))
			b.WriteString(",")
		}
		b.WriteString("]")
		return b.String()
	case reflect.Map:
		entries := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, describe(iter.Key().Interface())+": "+describe(iter.Value().Interface())+",")
		}
		sort.Strings(entries)
		b.WriteString("{")
		for _, e := range entries {
			b.WriteString(e)
		}
		b.WriteString("}")
		return b.String()
	}
	if name := rv.Type().Name(); name != "" {
		return name
	}
	return rv.Type().String()
}
