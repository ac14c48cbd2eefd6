// Package caller names the type of the code that called into a function.
//
// Names follow typeinfo's format: "example.com/pkg.Server" for methods
// (value or pointer receiver), the package path for free functions and
// closures.
package caller

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Strategy selects how frames are located.
type Strategy int32

const (
	// StrategyAuto picks StrategyFrame when the runtime answers a
	// single-frame probe, StrategyStack otherwise.
	StrategyAuto Strategy = iota
	// StrategyFrame asks the runtime for one frame.
	StrategyFrame
	// StrategyStack captures the whole stack and indexes it.
	StrategyStack
)

func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyFrame:
		return "frame"
	case StrategyStack:
		return "stack"
	}
	return fmt.Sprintf("Strategy(%d)", int32(s))
}

// ParseStrategy parses "auto", "frame" or "stack".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return StrategyAuto, nil
	case "frame":
		return StrategyFrame, nil
	case "stack":
		return StrategyStack, nil
	}
	return StrategyAuto, fmt.Errorf("unknown caller strategy %q", s)
}

var (
	requested  atomic.Int32
	selectOnce sync.Once
	selected   Strategy
)

// UseStrategy requests a strategy. It only has an effect before the first
// lookup; the choice is fixed for the life of the process afterwards.
func UseStrategy(s Strategy) {
	requested.Store(int32(s))
}

// ActiveStrategy returns the strategy in use, selecting it on first call.
func ActiveStrategy() Strategy {
	selectOnce.Do(func() {
		selected = Strategy(requested.Load())
		if selected != StrategyAuto {
			return
		}
		selected = StrategyStack
		if _, _, _, ok := runtime.Caller(0); ok {
			selected = StrategyFrame
		}
	})
	return selected
}

// Resolve returns the type name of the code that called the function calling
// Resolve, walking depth further frames up. Depths past the bottom of the
// stack are clamped to the last frame.
func Resolve(depth int) string {
	sym, _ := lookup(ActiveStrategy(), depth+3)
	return TypeName(sym)
}

// CallerType returns the type name of the function calling CallerType
// (depth 0) or of its callers (depth 1, 2, ...), skipping frames whose type
// is excluded. It returns "" when every remaining frame is excluded.
func CallerType(depth int, excluded ...string) string {
	return callerType(depth, excluded)
}

func callerType(depth int, excluded []string) string {
	strategy := ActiveStrategy()
	for d := max(depth, 0); ; d++ {
		// 0 lookup, 1 callerType, 2 exported entry point, 3 its caller.
		sym, clamped := lookup(strategy, d+3)
		name := TypeName(sym)
		if !slices.Contains(excluded, name) {
			return name
		}
		if clamped {
			return ""
		}
	}
}

// lookup returns the function symbol skip frames above lookup itself and
// whether the stack ended before that frame.
func lookup(strategy Strategy, skip int) (string, bool) {
	if strategy == StrategyFrame {
		if pc, _, _, ok := runtime.Caller(skip); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				return fn.Name(), false
			}
		}
	}
	return stackFrame(skip + 1)
}

// stackFrame walks a full stack capture. skip is relative to stackFrame.
func stackFrame(skip int) (string, bool) {
	pcs := make([]uintptr, 32)
	for {
		n := runtime.Callers(1, pcs)
		if n < len(pcs) {
			pcs = pcs[:n]
			break
		}
		pcs = make([]uintptr, len(pcs)*2)
	}

	frames := runtime.CallersFrames(pcs)
	var last string
	for i := 0; ; i++ {
		f, more := frames.Next()
		last = f.Function
		if i == skip {
			return last, false
		}
		if !more {
			return last, true
		}
	}
}

// TypeName maps a function symbol as reported by the runtime to a type name.
func TypeName(symbol string) string {
	if symbol == "" {
		return ""
	}
	symbol = stripTypeArgs(symbol)

	dir, rest := "", symbol
	if i := strings.LastIndexByte(symbol, '/'); i >= 0 {
		dir, rest = symbol[:i+1], symbol[i+1:]
	}
	pkg, fn, ok := strings.Cut(rest, ".")
	pkgPath := dir + strings.ReplaceAll(pkg, "%2e", ".")
	if !ok {
		return pkgPath
	}

	parts := strings.Split(fn, ".")
	for len(parts) > 1 && isWrapper(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 2 || parts[0] == "glob" {
		return pkgPath
	}
	recv := strings.TrimSuffix(strings.TrimPrefix(parts[0], "(*"), ")")
	if recv == "" {
		return pkgPath
	}
	return pkgPath + "." + recv
}

func stripTypeArgs(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isWrapper reports closure and compiler wrapper segments: func1, 2 (nested
// closure), gowrap1, deferwrap1, or an empty segment.
func isWrapper(seg string) bool {
	seg = strings.TrimSuffix(seg, "-fm")
	for _, prefix := range []string{"func", "gowrap", "deferwrap"} {
		if rest, ok := strings.CutPrefix(seg, prefix); ok && isDigits(rest) {
			return true
		}
	}
	return seg == "" || isDigits(seg)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type contextKey struct{}

// WithCaller records an explicit caller name on ctx. CallerTypeContext
// prefers it over stack walking.
func WithCaller(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextKey{}, name)
}

// FromContext returns the caller name recorded by WithCaller.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	name, ok := ctx.Value(contextKey{}).(string)
	return name, ok && name != ""
}

// CallerTypeContext is CallerType with an explicit caller taking precedence
// when ctx carries one that is not excluded.
func CallerTypeContext(ctx context.Context, depth int, excluded ...string) string {
	if name, ok := FromContext(ctx); ok && !slices.Contains(excluded, name) {
		return name
	}
	return callerType(depth, excluded)
}
