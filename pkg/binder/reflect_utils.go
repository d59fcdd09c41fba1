package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// bindToStruct copies values into the tagged fields of the struct v points to.
// Missing parameters leave fields at their zero value.
func bindToStruct(v any, tagName string, values map[string][]string, bindErr error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer", bindErr)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a pointer to struct", bindErr)
	}

	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}
		sf := rt.Field(i)
		name, skip := parseFieldTag(sf, tagName)
		if skip {
			continue
		}
		vals := values[name]
		if len(vals) == 0 {
			continue
		}
		if err := setFieldValue(field, sf.Type, vals); err != nil {
			return fmt.Errorf("%w: field %s: %v", bindErr, sf.Name, err)
		}
	}
	return nil
}

// parseFieldTag returns the parameter name for field. Untagged fields use the
// lowercased field name.
func parseFieldTag(field reflect.StructField, tagName string) (name string, skip bool) {
	tag := field.Tag.Get(tagName)
	switch tag {
	case "":
		return strings.ToLower(field.Name), false
	case "-":
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

func setFieldValue(field reflect.Value, t reflect.Type, values []string) error {
	switch t.Kind() {
	case reflect.Ptr:
		if field.IsNil() {
			field.Set(reflect.New(t.Elem()))
		}
		return setFieldValue(field.Elem(), t.Elem(), values)
	case reflect.Slice:
		return setSliceValue(field, t, values)
	}

	value := values[0]
	switch t.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, t.Bits())
		if err != nil {
			return fmt.Errorf("invalid int value %q", value)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			switch strings.ToLower(value) {
			case "on", "yes":
				b = true
			case "off", "no", "":
				b = false
			default:
				return fmt.Errorf("invalid bool value %q", value)
			}
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type %s", t.Kind())
	}
	return nil
}

// setSliceValue accepts both repeated parameters and comma-separated lists.
func setSliceValue(field reflect.Value, t reflect.Type, values []string) error {
	var all []string
	for _, v := range values {
		all = append(all, strings.Split(v, ",")...)
	}

	slice := reflect.MakeSlice(t, len(all), len(all))
	for i, value := range all {
		if err := setFieldValue(slice.Index(i), t.Elem(), []string{strings.TrimSpace(value)}); err != nil {
			return err
		}
	}
	field.Set(slice)
	return nil
}
