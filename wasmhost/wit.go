package wasmhost

import (
	"regexp"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/hostbridge/errors"
)

// signature is the WIT view of one exported function.
type signature struct {
	params  []wit.Type
	results []wit.Type
}

func (s *signature) paramTypes() []wit.Type {
	if s == nil {
		return nil
	}
	return s.params
}

func (s *signature) resultTypes() []wit.Type {
	if s == nil {
		return nil
	}
	return s.results
}

// name: func(a: u32, b: u32) -> u32;
var witFunc = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;\n]+))?`)

// parseWitFunctions extracts function signatures from WIT text.
func parseWitFunctions(witText string) (map[string]*signature, error) {
	funcs := make(map[string]*signature)
	for _, match := range witFunc.FindAllStringSubmatch(witText, -1) {
		sig := &signature{}

		for _, p := range splitParams(strings.TrimSpace(match[2])) {
			typ := p
			if idx := strings.LastIndex(p, ":"); idx != -1 {
				typ = p[idx+1:]
			}
			t, err := parseWitType(typ)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "parse param type "+typ)
			}
			sig.params = append(sig.params, t)
		}

		result := strings.TrimSpace(match[3])
		if strings.HasPrefix(result, "(") && strings.HasSuffix(result, ")") {
			result = strings.TrimSpace(result[1 : len(result)-1])
		}
		for _, r := range splitParams(result) {
			t, err := parseWitType(r)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "parse result type "+r)
			}
			sig.results = append(sig.results, t)
		}

		funcs[match[1]] = sig
	}
	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "no functions found in WIT text")
	}
	return funcs, nil
}

// splitParams splits a comma list, ignoring commas inside parens.
func splitParams(s string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if str := strings.TrimSpace(cur.String()); str != "" {
			out = append(out, str)
		}
		cur.Reset()
	}
	for _, ch := range s {
		switch {
		case ch == '(' || ch == '<':
			depth++
		case ch == ')' || ch == '>':
			depth--
		case ch == ',' && depth == 0:
			flush()
			continue
		}
		cur.WriteRune(ch)
	}
	flush()
	return out
}

func parseWitType(s string) (wit.Type, error) {
	return wit.ParseType(strings.TrimSpace(s))
}
