package repository

import (
	"reflect"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidateID canonicalizes an entity identifier. Integers of any width and
// numeric strings are accepted; nil, blank or non-numeric strings,
// non-positive values, and non-integer types are rejected.
func ValidateID(id any) (int64, error) {
	if id == nil {
		return 0, validationErrorf("id cannot be nil")
	}

	var v int64
	switch t := id.(type) {
	case int:
		v = int64(t)
	case int8:
		v = int64(t)
	case int16:
		v = int64(t)
	case int32:
		v = int64(t)
	case int64:
		v = t
	case uint:
		v = int64(t)
	case uint8:
		v = int64(t)
	case uint16:
		v = int64(t)
	case uint32:
		v = int64(t)
	case uint64:
		v = int64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, validationErrorf("id cannot be an empty string")
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, validationErrorf("invalid id format: %q must be a positive integer", t)
		}
		v = parsed
	default:
		return 0, validationErrorf("id must be an integer or numeric string, got %T", id)
	}

	if v <= 0 {
		return 0, validationErrorf("id must be positive, got %d", v)
	}
	return v, nil
}

// CleanFields validates a field map for create/update operations. Entries
// whose value is nil or an empty string are stripped; an error is returned
// when nothing usable remains.
func CleanFields(fields map[string]any, op string) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, validationErrorf("no data provided for %s", op)
	}

	cleaned := make(map[string]any, len(fields))
	for k, v := range fields {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		cleaned[k] = v
	}

	if len(cleaned) == 0 {
		return nil, validationErrorf("no valid data provided for %s after cleaning", op)
	}
	return cleaned, nil
}

// ValidateRecords checks a record list for bulk operations: it must be
// non-empty and contain no nil entries.
func ValidateRecords[T Entity](records []T, op string) error {
	if records == nil {
		return validationErrorf("records must be a list for %s", op)
	}
	if len(records) == 0 {
		return validationErrorf("empty records list provided for %s", op)
	}
	for i, rec := range records {
		if isNilRecord(rec) {
			return validationErrorf("record at index %d is nil for %s", i, op)
		}
	}
	return nil
}

// ValidateFieldNames checks a field-name list for bulk updates. Names are
// trimmed; blank names are rejected.
func ValidateFieldNames(fields []string, op string) ([]string, error) {
	if fields == nil {
		return nil, validationErrorf("fields must be a list for %s", op)
	}
	if len(fields) == 0 {
		return nil, validationErrorf("empty fields list provided for %s", op)
	}

	trimmed := make([]string, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, validationErrorf("field at index %d must be a non-empty string for %s", i, op)
		}
		trimmed[i] = f
	}
	return trimmed, nil
}

func validateBatchSize(batchSize int) error {
	if err := validation.Validate(batchSize, validation.Required, validation.Min(1)); err != nil {
		return validationErrorf("batch size must be a positive integer, got %d", batchSize)
	}
	return nil
}

func validateRange(limit, offset int) error {
	if limit < 0 {
		return validationErrorf("limit must be a positive integer, got %d", limit)
	}
	if err := validation.Validate(offset, validation.Min(0)); err != nil {
		return validationErrorf("offset must be a non-negative integer, got %d", offset)
	}
	return nil
}

func validatePageParams(page, perPage int) error {
	if err := validation.Validate(page, validation.Required, validation.Min(1)); err != nil {
		return validationErrorf("page must be a positive integer, got %d", page)
	}
	if err := validation.Validate(perPage, validation.Required, validation.Min(1)); err != nil {
		return validationErrorf("per-page count must be a positive integer, got %d", perPage)
	}
	if err := validation.Validate(perPage, validation.Max(maxPerPage)); err != nil {
		return validationErrorf("per-page count too large, maximum is %d, got %d", maxPerPage, perPage)
	}
	return nil
}

// isNilRecord reports whether a generic record value is a typed nil.
func isNilRecord(rec any) bool {
	if rec == nil {
		return true
	}
	rv := reflect.ValueOf(rec)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
