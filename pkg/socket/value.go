package socket

import (
	"encoding/json"
	"strings"
)

// Typed is implemented by values that know their socket type, such as the
// loop flow handle.
type Typed interface {
	SocketType() Type
}

// Of infers the type of a literal input value. Whole float64 values count as
// INT since decoded JSON numbers arrive that way.
func Of(v any) Type {
	switch x := v.(type) {
	case nil:
		return Any()
	case Typed:
		return x.SocketType()
	case bool:
		return Concrete(BooleanName)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Concrete(IntName)
	case float32:
		return Concrete(FloatName)
	case float64:
		if x == float64(int64(x)) {
			return Concrete(IntName)
		}
		return Concrete(FloatName)
	case json.Number:
		if !strings.ContainsAny(x.String(), ".eE") {
			return Concrete(IntName)
		}
		return Concrete(FloatName)
	case string:
		return Concrete(StringName)
	}
	return Any()
}
