package converter

import (
	"fmt"
	"reflect"
	"strconv"
)

// builtinFallbacks are the structural conversions probed after user
// converters, in a fixed order: identity first, then scalar coercions,
// then the collection shape conversions. The order is part of the lookup
// contract and must stay deterministic. Populated in init because
// convertPointer re-probes the list itself.
var builtinFallbacks []TargetFunc

func init() {
	builtinFallbacks = []TargetFunc{
		convertIdentity,
		convertScalar,
		convertStringBytes,
		convertPointer,
		convertElementToSlice,
		convertSingletonToElement,
		convertSliceArray,
	}
}

func convertIdentity(v interface{}, target reflect.Type) (interface{}, bool, error) {
	if reflect.TypeOf(v).AssignableTo(target) {
		return v, true, nil
	}
	return nil, false, nil
}

// convertScalar coerces between numeric and boolean representations,
// including parse/format between scalars and strings. Numeric narrowing is
// allowed; it follows Go conversion semantics.
func convertScalar(v interface{}, target reflect.Type) (interface{}, bool, error) {
	src := reflect.ValueOf(v)
	if isNumeric(src.Kind()) && isNumeric(target.Kind()) {
		return src.Convert(target).Interface(), true, nil
	}

	if src.Kind() == reflect.String {
		out, applied, err := parseScalar(src.String(), target)
		if err != nil || applied {
			return out, applied, err
		}
	}

	if target.Kind() == reflect.String && (isNumeric(src.Kind()) || src.Kind() == reflect.Bool) {
		formatted := fmt.Sprintf("%v", v)
		return reflect.ValueOf(formatted).Convert(target).Interface(), true, nil
	}

	return nil, false, nil
}

func parseScalar(s string, target reflect.Type) (interface{}, bool, error) {
	out := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false, nil
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, false, nil
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false, nil
		}
		out.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, false, nil
		}
		out.SetBool(b)
	default:
		return nil, false, nil
	}
	return out.Interface(), true, nil
}

func convertStringBytes(v interface{}, target reflect.Type) (interface{}, bool, error) {
	switch s := v.(type) {
	case string:
		if target == reflect.TypeOf([]byte(nil)) {
			return []byte(s), true, nil
		}
	case []byte:
		if target.Kind() == reflect.String {
			return reflect.ValueOf(string(s)).Convert(target).Interface(), true, nil
		}
	}
	return nil, false, nil
}

// convertPointer dereferences a non-nil pointer and retries the structural
// tiers against the pointee. User converters are intentionally not
// retried: they were registered for the pointer type or not at all.
func convertPointer(v interface{}, target reflect.Type) (interface{}, bool, error) {
	src := reflect.ValueOf(v)
	if src.Kind() != reflect.Ptr || src.IsNil() {
		return nil, false, nil
	}
	elem := src.Elem().Interface()
	for _, fn := range builtinFallbacks {
		out, applied, err := fn(elem, target)
		if err != nil || applied {
			return out, applied, err
		}
	}
	return nil, false, nil
}

// convertElementToSlice wraps a single value into a one-element slice of
// the target's element type.
func convertElementToSlice(v interface{}, target reflect.Type) (interface{}, bool, error) {
	if target.Kind() != reflect.Slice {
		return nil, false, nil
	}
	src := reflect.ValueOf(v)
	if src.Kind() == reflect.Slice || src.Kind() == reflect.Array {
		return nil, false, nil
	}
	if !src.Type().AssignableTo(target.Elem()) {
		return nil, false, nil
	}
	out := reflect.MakeSlice(target, 1, 1)
	out.Index(0).Set(src)
	return out.Interface(), true, nil
}

// convertSingletonToElement unwraps a one-element slice or array when its
// element satisfies the target.
func convertSingletonToElement(v interface{}, target reflect.Type) (interface{}, bool, error) {
	src := reflect.ValueOf(v)
	if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
		return nil, false, nil
	}
	if src.Len() != 1 {
		return nil, false, nil
	}
	elem := src.Index(0)
	if !elem.Type().AssignableTo(target) {
		return nil, false, nil
	}
	return elem.Interface(), true, nil
}

// convertSliceArray interconverts slices and arrays with compatible
// element types, when sizes permit.
func convertSliceArray(v interface{}, target reflect.Type) (interface{}, bool, error) {
	src := reflect.ValueOf(v)
	switch {
	case src.Kind() == reflect.Slice && target.Kind() == reflect.Array:
		if src.Len() != target.Len() || !src.Type().Elem().AssignableTo(target.Elem()) {
			return nil, false, nil
		}
		out := reflect.New(target).Elem()
		reflect.Copy(out, src)
		return out.Interface(), true, nil
	case src.Kind() == reflect.Array && target.Kind() == reflect.Slice:
		if !src.Type().Elem().AssignableTo(target.Elem()) {
			return nil, false, nil
		}
		out := reflect.MakeSlice(target, src.Len(), src.Len())
		reflect.Copy(out, src)
		return out.Interface(), true, nil
	}
	return nil, false, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
