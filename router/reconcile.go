// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import "reflect"

// override describes one single-valued config field: how to read it from
// a router, its sentinel, and the error raised on divergent values.
type override[T any] struct {
	field    string
	sentinel T
	conflict error
	get      func(Config) T
}

// reconcile folds the field over routers from left to right. Sentinel and
// zero values are transparent, the first explicit value wins, repeats of
// that value are accepted, and a second distinct value is a conflict.
func reconcile[T any](o override[T], routers []*Router) (T, error) {
	var zero T
	acc, from := o.sentinel, -1
	for i, r := range routers {
		v := o.get(r.config)
		switch {
		case identical(v, zero), identical(v, o.sentinel):
		case from < 0:
			acc, from = v, i
		case identical(acc, v):
		default:
			return o.sentinel, &ConflictError{Field: o.field, First: from, Second: i, err: o.conflict}
		}
	}
	return acc, nil
}

// identical reports whether a and b are the same value: == for comparable
// values, the same underlying pointer for funcs, maps and slices, and deep
// equality for other values such as structs holding slices.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() {
		return va.Equal(vb)
	}
	switch va.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice:
		return va.Pointer() == vb.Pointer()
	default:
		return reflect.DeepEqual(a, b)
	}
}
