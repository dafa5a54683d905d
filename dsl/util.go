package dsl

import (
	"reflect"
	"strings"

	serializr "github.com/reoring/serializr"
)

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// rebase prefixes the issues of err with rel (an unescaped pointer segment
// starting with '/').
func rebase(err error, rel string) serializr.Issues {
	seg := strings.ReplaceAll(strings.ReplaceAll(strings.TrimPrefix(rel, "/"), "~", "~0"), "/", "~1")
	return serializr.IssuesAt(err, "/"+seg)
}
