package webhelper

import (
	"math"

	"github.com/tidwall/gjson"
)

// The webhelper omits fields freely, so each extractor falls back to the zero
// value for its type when a field is missing or holds the wrong JSON type.

func stringField(obj gjson.Result, key string) string {
	v := obj.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

func boolField(obj gjson.Result, key string) bool {
	return obj.Get(key).Type == gjson.True
}

func floatField(obj gjson.Result, key string) float64 {
	v := obj.Get(key)
	if v.Type != gjson.Number {
		return 0
	}
	return v.Num
}

func intField(obj gjson.Result, key string) int64 {
	v := obj.Get(key)
	if v.Type != gjson.Number || v.Num != math.Trunc(v.Num) {
		return 0
	}
	return v.Int()
}
