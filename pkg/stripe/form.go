package stripe

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Params is implemented by request parameter structs. The returned values use
// the API's bracket notation for nested keys.
type Params interface {
	Values() url.Values
}

// encodeForm renders p as a form body. Nil params produce a nil body.
func encodeForm(p Params) []byte {
	if p == nil {
		return nil
	}
	v := p.Values()
	if len(v) == 0 {
		return []byte{}
	}
	return []byte(v.Encode())
}

// appendNested flattens v under prefix:
//
//	metadata[tier]=pro
//	line_items[0][price]=price_123
//	expand[0]=subscription
//
// Supported values are scalars, map[string]string, map[string]any and []any
// (recursively) plus []string. Nil values are skipped.
func appendNested(dst url.Values, prefix string, v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		dst.Add(prefix, val)
	case bool:
		dst.Add(prefix, strconv.FormatBool(val))
	case int:
		dst.Add(prefix, strconv.Itoa(val))
	case int64:
		dst.Add(prefix, strconv.FormatInt(val, 10))
	case float64:
		dst.Add(prefix, strconv.FormatFloat(val, 'f', -1, 64))
	case []string:
		for i, item := range val {
			dst.Add(indexKey(prefix, i), item)
		}
	case []any:
		for i, item := range val {
			if err := appendNested(dst, indexKey(prefix, i), item); err != nil {
				return err
			}
		}
	case map[string]string:
		for _, k := range sortedKeys(val) {
			dst.Add(childKey(prefix, k), val[k])
		}
	case map[string]any:
		for _, k := range sortedKeys(val) {
			if err := appendNested(dst, childKey(prefix, k), val[k]); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unsupported value %T for %q", ErrInvalidParams, v, prefix)
	}
	return nil
}

// EncodeValues flattens an arbitrary parameter map, for endpoints without a
// typed params struct.
func EncodeValues(params map[string]any) (url.Values, error) {
	v := url.Values{}
	for _, k := range sortedKeys(params) {
		if err := appendNested(v, k, params[k]); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func childKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "[" + key + "]"
}

func indexKey(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// setString adds key only for non-empty values.
func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setMetadata(v url.Values, metadata map[string]string) {
	for _, k := range sortedKeys(metadata) {
		v.Set(childKey("metadata", k), metadata[k])
	}
}

func setExpand(v url.Values, expand []string) {
	for i, e := range expand {
		v.Set(indexKey("expand", i), e)
	}
}
