package model

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// columnIndexes caches the column-name to struct-field mapping per model
// type so repeated field application does not re-walk struct tags.
var columnIndexes sync.Map // reflect.Type -> map[string]int

// assignFields writes a column-keyed field map onto a model struct. target
// must be a non-nil pointer to a struct. Keys are matched against the bun
// column name (the first token of the bun tag), falling back to the
// snake_case form of the Go field name. Unknown keys and incompatible
// values are reported as errors so a bad write never silently drops data.
func assignFields(target any, fields map[string]any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("model: assignFields target must be a non-nil pointer, got %T", target)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("model: assignFields target must point to a struct, got %T", target)
	}

	index := columnIndex(rv.Type())
	for name, value := range fields {
		i, ok := index[name]
		if !ok {
			return fmt.Errorf("model: %s has no field %q", rv.Type().Name(), name)
		}
		if err := assignValue(rv.Field(i), value); err != nil {
			return fmt.Errorf("model: field %q: %w", name, err)
		}
	}
	return nil
}

func columnIndex(t reflect.Type) map[string]int {
	if cached, ok := columnIndexes.Load(t); ok {
		return cached.(map[string]int)
	}

	index := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("bun")
		col, _, _ := strings.Cut(tag, ",")
		if col == "-" || strings.Contains(tag, "rel:") {
			continue
		}
		if col == "" {
			col = toSnake(f.Name)
		}
		index[col] = i
	}

	actual, _ := columnIndexes.LoadOrStore(t, index)
	return actual.(map[string]int)
}

func assignValue(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	v := reflect.ValueOf(value)

	if field.Kind() == reflect.Pointer {
		if v.Type() == field.Type() {
			field.Set(v)
			return nil
		}
		elem := reflect.New(field.Type().Elem())
		if err := assignValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	switch {
	case v.Type().AssignableTo(field.Type()):
		field.Set(v)
	case v.Type().ConvertibleTo(field.Type()) && convertible(v.Kind(), field.Kind()):
		field.Set(v.Convert(field.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", value, field.Type())
	}
	return nil
}

// convertible restricts reflect conversions to numeric widening so that,
// for example, an int does not get silently converted into a string.
func convertible(from, to reflect.Kind) bool {
	return isNumericKind(from) && isNumericKind(to)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// toSnake converts a Go identifier to snake_case using ASCII-aware rules.
// Kept local so column-name fallbacks never depend on reflected type names
// carrying punctuation a database identifier would reject.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if (unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower) && !lastUnderscore {
					b.WriteByte('_')
					lastUnderscore = true
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r), unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}
