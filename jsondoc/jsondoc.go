// Package jsondoc implements the insertion-ordered JSON object used for
// course folder content. Plain map[string]interface{} loses the key order the
// client authored, which the positional record lookup depends on, so objects
// are decoded through the token stream and remember their key order.
package jsondoc

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Object is a JSON object whose keys keep their insertion order. Nested
// objects decode to *Object; arrays decode to []interface{}.
type Object struct {
	keys   []string
	values map[string]interface{}
}

func New() *Object {
	return &Object{values: make(map[string]interface{})}
}

func (o *Object) init() {
	if o.values == nil {
		o.values = make(map[string]interface{})
	}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (interface{}, bool) {
	if o == nil || o.values == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Val returns the value under key, or nil when absent.
func (o *Object) Val(key string) interface{} {
	v, _ := o.Get(key)
	return v
}

// At returns the i-th key/value pair in insertion order.
func (o *Object) At(i int) (string, interface{}) {
	if o == nil || i < 0 || i >= len(o.keys) {
		return "", nil
	}
	key := o.keys[i]
	return key, o.values[key]
}

// Set stores value under key, appending the key if it is new.
func (o *Object) Set(key string, value interface{}) {
	o.init()
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key and its value.
func (o *Object) Delete(key string) {
	if o == nil || o.values == nil {
		return
	}
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return New()
	}
	out := New()
	for _, k := range o.keys {
		out.Set(k, cloneValue(o.values[k]))
	}
	return out
}

// CloneValue deep-copies a decoded JSON value: nested objects and arrays are
// duplicated, scalars returned as-is.
func CloneValue(v interface{}) interface{} {
	return cloneValue(v)
}

func cloneValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case *Object:
		return tv.Clone()
	case []interface{}:
		arr := make([]interface{}, len(tv))
		for i, item := range tv {
			arr[i] = cloneValue(item)
		}
		return arr
	default:
		return v
	}
}

// Merge deep-merges src into dst and returns the result as a new object.
// Keys present in both sides merge recursively when both values are objects;
// arrays, scalars and mismatched types are replaced wholesale by src. Neither
// input is modified.
func Merge(dst, src *Object) *Object {
	if dst == nil {
		return src.Clone()
	}
	if src == nil {
		return dst.Clone()
	}
	out := dst.Clone()
	for _, k := range src.keys {
		incoming := src.values[k]
		existing, ok := out.Get(k)
		if ok {
			if existingObj, okA := existing.(*Object); okA {
				if incomingObj, okB := incoming.(*Object); okB {
					out.Set(k, Merge(existingObj, incomingObj))
					continue
				}
			}
		}
		out.Set(k, cloneValue(incoming))
	}
	return out
}

// AsObject reports v as a nested object when it is one.
func AsObject(v interface{}) (*Object, bool) {
	obj, ok := v.(*Object)
	return obj, ok && obj != nil
}

// AsArray reports v as a JSON array when it is one.
func AsArray(v interface{}) ([]interface{}, bool) {
	arr, ok := v.([]interface{})
	return arr, ok
}

// UnmarshalJSON decodes data, preserving object key order at every level.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("jsondoc: expected object, got %v", tok)
	}

	parsed, err := parseObject(dec)
	if err != nil {
		return err
	}
	*o = *parsed
	return nil
}

func parseObject(dec *json.Decoder) (*Object, error) {
	obj := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("jsondoc: expected object key, got %v", keyTok)
		}
		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func parseArray(dec *json.Decoder) ([]interface{}, error) {
	arr := make([]interface{}, 0)
	for dec.More() {
		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
	// consume closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func parseValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tv := tok.(type) {
	case json.Delim:
		switch tv {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("jsondoc: unexpected delimiter %v", tv)
		}
	default:
		return tok, nil
	}
}

// MarshalJSON encodes the object with its keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil || len(o.keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valueBytes, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Value implements driver.Valuer so an Object can be stored in a JSON column.
func (o Object) Value() (driver.Value, error) {
	b, err := (&o).MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON columns.
func (o *Object) Scan(value interface{}) error {
	if value == nil {
		*o = *New()
		return nil
	}
	var data []byte
	switch tv := value.(type) {
	case []byte:
		data = tv
	case string:
		data = []byte(tv)
	default:
		return fmt.Errorf("jsondoc: cannot scan %T into Object", value)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		*o = *New()
		return nil
	}
	return o.UnmarshalJSON(data)
}
