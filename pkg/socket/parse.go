package socket

import "strings"

// Parse reads a declared type descriptor.
//
//	*          wildcard
//	A,B        concrete union
//	<T>        naked template
//	LIST<T>    qualified template
//
// Anything of the form W<K> is read as a qualified template; use Observed for
// descriptors reported by wiring, which never carry placeholders.
func Parse(s string) Type {
	s = strings.TrimSpace(s)
	if s == "" || s == WildcardName {
		return Any()
	}
	if w, k, ok := splitQualified(s); ok && isKey(k) {
		if w == "" {
			return Template(k)
		}
		if !strings.ContainsAny(w, ",<>") {
			return Qualified(w, k)
		}
	}
	return Concrete(splitUnion(s)...)
}

// Observed reads a concrete descriptor as seen on a wire. Members such as
// LIST<INT> stay concrete names.
func Observed(s string) Type {
	s = strings.TrimSpace(s)
	if s == "" || s == WildcardName {
		return Any()
	}
	return Concrete(splitUnion(s)...)
}

// splitUnion splits on commas that are not nested inside angle brackets.
func splitUnion(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// splitQualified splits "W<inner>" into its wrapper and inner descriptor.
func splitQualified(s string) (wrapper, inner string, ok bool) {
	if !strings.HasSuffix(s, ">") {
		return "", "", false
	}
	open := strings.IndexByte(s, '<')
	if open < 0 {
		return "", "", false
	}
	return s[:open], s[open+1 : len(s)-1], true
}

func isKey(k string) bool {
	return k != "" && k != WildcardName && !strings.ContainsAny(k, ",<> ")
}
