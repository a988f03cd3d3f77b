package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// envLookup resolves one variable. os.LookupEnv in production; tests pass a map.
type envLookup func(key string) (string, bool)

// envOverrides walks the config tree and applies every `env` tagged field
// whose variable is set. Every malformed variable is reported, not just the
// first. The names of the applied variables are returned for startup logging.
func envOverrides(target interface{}, lookup envLookup) ([]string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	w := &envWalker{lookup: lookup}
	w.walk(reflect.ValueOf(target), "")
	return w.applied, errors.Join(w.errs...)
}

type envWalker struct {
	lookup  envLookup
	applied []string
	errs    []error
}

func (w *envWalker) walk(val reflect.Value, path string) {
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		meta := typ.Field(i)
		name := meta.Name
		if path != "" {
			name = path + "." + meta.Name
		}

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			w.walk(field.Addr(), name)
			continue
		}

		key := meta.Tag.Get("env")
		if key == "" {
			continue
		}
		raw, ok := w.lookup(key)
		if !ok {
			continue
		}
		if err := setField(field, strings.TrimSpace(raw)); err != nil {
			w.errs = append(w.errs, fmt.Errorf("%s (%s): %w", key, name, err))
			continue
		}
		w.applied = append(w.applied, key)
	}
}

// setField parses value into field according to the field's kind. Slices of
// strings are comma separated with blanks dropped.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q", value)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", value)
		}
		field.SetUint(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items).Convert(field.Type()))

	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}

	return nil
}
