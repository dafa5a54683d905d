package serializr

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// numKey is the canonical registry key for numeric identifiers, so that
// json.Number("1"), int(1) and float64(1) address the same registration.
type numKey string

// opaqueKey stands in for identifiers whose dynamic type is not comparable.
type opaqueKey string

func idKey(id any) any {
	switch v := id.(type) {
	case nil, string, bool:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return numKey(strconv.FormatInt(i, 10))
		}
		if f, err := v.Float64(); err == nil {
			return floatKey(f)
		}
		return numKey(v)
	case int:
		return numKey(strconv.FormatInt(int64(v), 10))
	case int8:
		return numKey(strconv.FormatInt(int64(v), 10))
	case int16:
		return numKey(strconv.FormatInt(int64(v), 10))
	case int32:
		return numKey(strconv.FormatInt(int64(v), 10))
	case int64:
		return numKey(strconv.FormatInt(v, 10))
	case uint:
		return numKey(strconv.FormatUint(uint64(v), 10))
	case uint8:
		return numKey(strconv.FormatUint(uint64(v), 10))
	case uint16:
		return numKey(strconv.FormatUint(uint64(v), 10))
	case uint32:
		return numKey(strconv.FormatUint(uint64(v), 10))
	case uint64:
		return numKey(strconv.FormatUint(v, 10))
	case float32:
		return floatKey(float64(v))
	case float64:
		return floatKey(v)
	}
	if reflect.TypeOf(id).Comparable() {
		return id
	}
	return opaqueKey(fmt.Sprintf("%T:%v", id, id))
}

func floatKey(f float64) numKey {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return numKey(strconv.FormatInt(int64(f), 10))
	}
	return numKey(strconv.FormatFloat(f, 'g', -1, 64))
}

// sameInstance reports reference identity for reference-like values (maps,
// pointers, slices) and equality for comparable values.
func sameInstance(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
