package logging

import (
	"fmt"
	"strconv"
	"strings"
)

// Format substitutes placeholders in template with args.
//
//	{}        next positional argument, %v
//	{2}       argument 2
//	{:08b}    next positional argument with an fmt verb (leading % optional)
//	{1:%x}    argument 1 with an fmt verb
//	{{ }}     literal braces
//
// Placeholders referring to a missing argument are kept verbatim.
func Format(template string, args ...any) string {
	if !strings.ContainsAny(template, "{}") {
		return template
	}

	var b strings.Builder
	b.Grow(len(template) + 16*len(args))
	next := 0

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				b.WriteString(template[i:])
				return b.String()
			}
			token := template[i+1 : i+1+end]
			if !writeToken(&b, token, args, &next) {
				b.WriteString(template[i : i+2+end])
			}
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				i++
			}
			b.WriteByte('}')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func writeToken(b *strings.Builder, token string, args []any, next *int) bool {
	indexPart, verb, hasVerb := strings.Cut(token, ":")

	idx := *next
	if indexPart != "" {
		n, err := strconv.Atoi(strings.TrimSpace(indexPart))
		if err != nil || n < 0 {
			return false
		}
		idx = n
	}
	if idx >= len(args) {
		return false
	}
	if indexPart == "" {
		*next = idx + 1
	}

	if !hasVerb || verb == "" {
		fmt.Fprint(b, args[idx])
		return true
	}
	if verb[0] != '%' {
		verb = "%" + verb
	}
	fmt.Fprintf(b, verb, args[idx])
	return true
}
