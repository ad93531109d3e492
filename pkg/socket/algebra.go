package socket

import "sort"

// Intersect narrows a by b.
//
// A wildcard on either side yields the other operand and equal operands are
// returned unchanged. Concrete unions are intersected as sets. An empty
// intersection yields the wildcard: the mismatch is left for validation to
// report instead of failing resolution. Templated operands that differ have
// no common member and therefore also yield the wildcard.
func Intersect(a, b Type) Type {
	if a.IsWildcard() {
		return b
	}
	if b.IsWildcard() || a.Equal(b) {
		return a
	}
	if a.kind != KindConcrete || b.kind != KindConcrete {
		return Any()
	}
	var common []string
	for _, m := range a.names {
		for _, n := range b.names {
			if v, ok := meet(m, n); ok {
				common = append(common, v)
			}
		}
	}
	return Concrete(common...)
}

// IntersectAll folds Intersect over ts in a canonical order, so the result
// does not depend on the order in which constraints were collected.
func IntersectAll(ts ...Type) Type {
	sorted := make([]Type, len(ts))
	copy(sorted, ts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})
	acc := Any()
	for _, t := range sorted {
		acc = Intersect(acc, t)
	}
	return acc
}

// Compatible reports whether a value of type actual may feed a socket
// declared as declared: every member of actual must be a member of declared.
func Compatible(declared, actual Type) bool {
	if declared.IsWildcard() || actual.IsWildcard() {
		return true
	}
	switch declared.kind {
	case KindTemplate:
		return true
	case KindQualified:
		if actual.kind != KindConcrete {
			return true
		}
		for _, m := range actual.names {
			if w, _, ok := splitQualified(m); !ok || w != declared.wrapper {
				return false
			}
		}
		return true
	}
	if actual.kind != KindConcrete {
		return true
	}
	for _, m := range actual.names {
		found := false
		for _, d := range declared.names {
			if v, ok := meet(d, m); ok && v == m {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// meet compares two union members. W<*> meets any W<X> and yields W<X>.
func meet(m, n string) (string, bool) {
	if m == n {
		return m, true
	}
	mw, mi, mok := splitQualified(m)
	nw, ni, nok := splitQualified(n)
	if !mok || !nok || mw != nw {
		return "", false
	}
	switch {
	case mi == WildcardName:
		return n, true
	case ni == WildcardName:
		return m, true
	}
	return "", false
}
