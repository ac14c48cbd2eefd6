package wasmhost

import (
	"fmt"
	"reflect"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

// valueTypeFuncref is the funcref value type byte; wazero's api package does
// not export it.
const valueTypeFuncref api.ValueType = 0x70

// valueType pairs a core value type with the Go type callers see.
type valueType struct {
	goType reflect.Type
	core   api.ValueType
}

func valueTypes(core []api.ValueType, refined []wit.Type) ([]valueType, error) {
	if refined != nil && len(refined) != len(core) {
		return nil, fmt.Errorf("WIT declares %d values, module has %d", len(refined), len(core))
	}
	out := make([]valueType, len(core))
	for i, c := range core {
		gt, err := coreGoType(c)
		if err != nil {
			return nil, err
		}
		if refined != nil {
			if wt := witGoType(refined[i], c); wt != nil {
				gt = wt
			}
		}
		out[i] = valueType{goType: gt, core: c}
	}
	return out, nil
}

func coreGoType(c api.ValueType) (reflect.Type, error) {
	switch c {
	case api.ValueTypeI32:
		return reflect.TypeFor[int32](), nil
	case api.ValueTypeI64:
		return reflect.TypeFor[int64](), nil
	case api.ValueTypeF32:
		return reflect.TypeFor[float32](), nil
	case api.ValueTypeF64:
		return reflect.TypeFor[float64](), nil
	case api.ValueTypeExternref, valueTypeFuncref:
		return reflect.TypeFor[uintptr](), nil
	}
	return nil, fmt.Errorf("unsupported value type %s", api.ValueTypeName(c))
}

// witGoType returns the Go type for a WIT scalar whose lowering is c, or nil.
func witGoType(t wit.Type, c api.ValueType) reflect.Type {
	var rt reflect.Type
	var lowered api.ValueType
	switch t.(type) {
	case wit.Bool:
		rt, lowered = reflect.TypeFor[bool](), api.ValueTypeI32
	case wit.S8:
		rt, lowered = reflect.TypeFor[int8](), api.ValueTypeI32
	case wit.U8:
		rt, lowered = reflect.TypeFor[uint8](), api.ValueTypeI32
	case wit.S16:
		rt, lowered = reflect.TypeFor[int16](), api.ValueTypeI32
	case wit.U16:
		rt, lowered = reflect.TypeFor[uint16](), api.ValueTypeI32
	case wit.S32:
		rt, lowered = reflect.TypeFor[int32](), api.ValueTypeI32
	case wit.U32:
		rt, lowered = reflect.TypeFor[uint32](), api.ValueTypeI32
	case wit.Char:
		rt, lowered = reflect.TypeFor[rune](), api.ValueTypeI32
	case wit.S64:
		rt, lowered = reflect.TypeFor[int64](), api.ValueTypeI64
	case wit.U64:
		rt, lowered = reflect.TypeFor[uint64](), api.ValueTypeI64
	case wit.F32:
		rt, lowered = reflect.TypeFor[float32](), api.ValueTypeF32
	case wit.F64:
		rt, lowered = reflect.TypeFor[float64](), api.ValueTypeF64
	default:
		return nil
	}
	if lowered != c {
		return nil
	}
	return rt
}

func encode(v reflect.Value, c api.ValueType) uint64 {
	switch c {
	case api.ValueTypeF32:
		return api.EncodeF32(float32(v.Float()))
	case api.ValueTypeF64:
		return api.EncodeF64(v.Float())
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return api.EncodeI32(int32(v.Int()))
	case reflect.Int, reflect.Int64:
		return api.EncodeI64(v.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return api.EncodeU32(uint32(v.Uint()))
	default:
		return v.Uint()
	}
}

func decode(raw uint64, vt valueType) reflect.Value {
	out := reflect.New(vt.goType).Elem()
	switch vt.goType.Kind() {
	case reflect.Bool:
		out.SetBool(uint32(raw) != 0)
	case reflect.Float32:
		out.SetFloat(float64(api.DecodeF32(raw)))
	case reflect.Float64:
		out.SetFloat(api.DecodeF64(raw))
	case reflect.Int8, reflect.Int16, reflect.Int32:
		out.SetInt(int64(api.DecodeI32(raw)))
	case reflect.Int64:
		out.SetInt(int64(raw))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		out.SetUint(uint64(api.DecodeU32(raw)))
	default:
		out.SetUint(raw)
	}
	return out
}
