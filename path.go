package acceptparams

import "strings"

// CanonicalName returns the name of this node as it is accessed in the
// params mapping, e.g. "user[address][zip]". The root renders as "".
func (r *Rules) CanonicalName() string {
	switch {
	case r.parent == nil:
		return ""
	case r.parent.parent == nil:
		return r.name
	default:
		return r.parent.CanonicalName() + "[" + r.name + "]"
	}
}

// keyPath renders a key of the mapping validated by r.
func (r *Rules) keyPath(key string) string {
	base := r.CanonicalName()
	if base == "" {
		return key
	}
	return base + "[" + key + "]"
}

// Pointer converts a canonical name ("user[address][zip]") into a JSON
// Pointer ("/user/address/zip"), escaping '~' and '/' per RFC 6901. The
// empty name is the whole document.
func Pointer(canonical string) string {
	if canonical == "" {
		return ""
	}
	var parts []string
	head, rest, _ := strings.Cut(canonical, "[")
	parts = append(parts, head)
	for rest != "" {
		seg, after, ok := strings.Cut(rest, "]")
		if !ok {
			parts = append(parts, rest)
			break
		}
		parts = append(parts, seg)
		rest = strings.TrimPrefix(after, "[")
	}
	b := &strings.Builder{}
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(p, "~", "~0"), "/", "~1"))
	}
	return b.String()
}
