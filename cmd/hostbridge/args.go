package main

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/wippyai/hostbridge/typeinfo"
)

// convertArg parses s as a value of t.
func convertArg(s string, t *typeinfo.Type) (any, error) {
	rt := t.Reflect()
	if rt == nil {
		return nil, fmt.Errorf("cannot convert %q to %s", s, t.Name())
	}
	out := reflect.New(rt).Elem()
	switch rt.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 0, rt.Bits())
		if err != nil {
			return nil, err
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 0, rt.Bits())
		if err != nil {
			return nil, err
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, rt.Bits())
		if err != nil {
			return nil, err
		}
		out.SetFloat(f)
	case reflect.String:
		out.SetString(s)
	default:
		return nil, fmt.Errorf("cannot convert %q to %s", s, t.Name())
	}
	return out.Interface(), nil
}

func formatResult(v any) string {
	switch v := v.(type) {
	case nil:
		return "(no result)"
	case []any:
		return fmt.Sprint(v...)
	default:
		return fmt.Sprint(v)
	}
}
