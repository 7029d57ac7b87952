package config

import (
	"reflect"
	"strings"
)

const hiddenValue = "(sensitive)"

// DebugMap returns the configuration as a nested map for structured logging.
// Fields tagged debugmap:"hidden" are masked.
func (c *Configuration) DebugMap() map[string]any {
	return debugMap(reflect.ValueOf(*c))
}

func debugMap(v reflect.Value) map[string]any {
	out := make(map[string]any)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := strings.Split(f.Tag.Get("mapstructure"), ",")[0]
		if key == "" {
			key = f.Name
		}

		fv := v.Field(i)
		switch {
		case fv.Kind() == reflect.Struct && f.Tag.Get("debugmap") == "":
			out[key] = debugMap(fv)
		case f.Tag.Get("debugmap") == "hidden":
			if !fv.IsZero() {
				out[key] = hiddenValue
			} else {
				out[key] = ""
			}
		default:
			out[key] = fv.Interface()
		}
	}
	return out
}
