package socket

import (
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the variants a socket Type can take.
type Kind uint8

const (
	// KindWildcard accepts any value. It is the zero value of Type.
	KindWildcard Kind = iota
	// KindConcrete is a set of one or more named alternatives.
	KindConcrete
	// KindTemplate is a naked placeholder such as <T>.
	KindTemplate
	// KindQualified is a placeholder inside a wrapper such as LIST<T>.
	KindQualified
)

func (k Kind) String() string {
	switch k {
	case KindConcrete:
		return "concrete"
	case KindTemplate:
		return "template"
	case KindQualified:
		return "qualified"
	default:
		return "wildcard"
	}
}

// Well-known type names.
const (
	WildcardName    = "*"
	FlowControlName = "FLOW_CONTROL"
	IntName         = "INT"
	FloatName       = "FLOAT"
	BooleanName     = "BOOLEAN"
	StringName      = "STRING"
	ListWrapper     = "LIST"
)

// Type is a socket type descriptor.
//
// A Type is immutable once built; the names slice of a concrete type is
// sorted and deduplicated so that equality is order-insensitive.
type Type struct {
	kind    Kind
	names   []string
	key     string
	wrapper string
}

// Any returns the wildcard type.
func Any() Type { return Type{} }

// Concrete builds a union of the given names. Blank names are dropped and a
// wildcard member (or an empty set) yields the wildcard type.
func Concrete(names ...string) Type {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if n == WildcardName {
			return Any()
		}
		set[n] = struct{}{}
	}
	if len(set) == 0 {
		return Any()
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return Type{kind: KindConcrete, names: out}
}

// Template builds a naked template <key>.
func Template(key string) Type {
	key = strings.TrimSpace(key)
	if key == "" {
		return Any()
	}
	return Type{kind: KindTemplate, key: key}
}

// Qualified builds a wrapped template wrapper<key>.
func Qualified(wrapper, key string) Type {
	wrapper, key = strings.TrimSpace(wrapper), strings.TrimSpace(key)
	if key == "" {
		return Any()
	}
	if wrapper == "" {
		return Template(key)
	}
	return Type{kind: KindQualified, wrapper: wrapper, key: key}
}

// Int and Boolean are shorthands for the scalar types loop nodes declare.
func Int() Type     { return Concrete(IntName) }
func Boolean() Type { return Concrete(BooleanName) }

// FlowControl is the type of the loop handle socket.
func FlowControl() Type { return Concrete(FlowControlName) }

// Kind reports the variant.
func (t Type) Kind() Kind { return t.kind }

// IsWildcard reports whether t accepts anything.
func (t Type) IsWildcard() bool { return t.kind == KindWildcard }

// IsTemplated reports whether t still carries an unresolved placeholder.
func (t Type) IsTemplated() bool {
	return t.kind == KindTemplate || t.kind == KindQualified
}

// Names returns a copy of the members of a concrete type.
func (t Type) Names() []string {
	if t.kind != KindConcrete {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether name is a member of a concrete type.
func (t Type) Has(name string) bool {
	if t.kind != KindConcrete {
		return false
	}
	i := sort.SearchStrings(t.names, name)
	return i < len(t.names) && t.names[i] == name
}

// Key returns the template key, or "" for non-templated types.
func (t Type) Key() string { return t.key }

// Wrapper returns the wrapper of a qualified template.
func (t Type) Wrapper() string { return t.wrapper }

// Equal compares two types structurally.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind || t.key != o.key || t.wrapper != o.wrapper {
		return false
	}
	if len(t.names) != len(o.names) {
		return false
	}
	for i := range t.names {
		if t.names[i] != o.names[i] {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	switch t.kind {
	case KindConcrete:
		return strings.Join(t.names, ",")
	case KindTemplate:
		return "<" + t.key + ">"
	case KindQualified:
		return t.wrapper + "<" + t.key + ">"
	default:
		return WildcardName
	}
}

// MarshalText encodes the descriptor form.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a declared descriptor (see Parse).
func (t *Type) UnmarshalText(b []byte) error {
	*t = Parse(string(b))
	return nil
}

// ReplaceGroup substitutes a variadic group marker (such as "#N") with a
// concrete index wherever it appears in the descriptor.
func (t Type) ReplaceGroup(marker string, index int) Type {
	if marker == "" || !strings.Contains(t.String(), marker) {
		return t
	}
	idx := strconv.Itoa(index)
	switch t.kind {
	case KindTemplate:
		return Template(strings.ReplaceAll(t.key, marker, idx))
	case KindQualified:
		return Qualified(strings.ReplaceAll(t.wrapper, marker, idx), strings.ReplaceAll(t.key, marker, idx))
	case KindConcrete:
		names := make([]string, len(t.names))
		for i, n := range t.names {
			names[i] = strings.ReplaceAll(n, marker, idx)
		}
		return Concrete(names...)
	}
	return t
}
