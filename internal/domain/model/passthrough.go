package model

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Diagram and analysis payloads come from a language model and from browser
// clients that attach their own keys. decodeLoose and encodeLoose let the
// typed structs read what they understand and carry the rest through
// unchanged, so a reply with numeric ids or extra layout keys is neither
// rejected nor stripped.

type looseField struct {
	name      string
	index     int
	omitEmpty bool
}

var looseFields sync.Map // reflect.Type -> []looseField

func fieldsOf(t reflect.Type) []looseField {
	if cached, ok := looseFields.Load(t); ok {
		return cached.([]looseField)
	}
	var fields []looseField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("json")
		if tag == "-" || tag == "" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fields = append(fields, looseField{name: name, index: i, omitEmpty: strings.Contains(opts, "omitempty")})
	}
	looseFields.Store(t, fields)
	return fields
}

// decodeLoose fills the json-tagged fields of the struct dst points to.
// String fields also take numbers and booleans, numeric fields also take
// numeric strings. Keys without a field, and values that do not fit their
// field, are returned verbatim.
func decodeLoose(b []byte, dst any) (map[string]json.RawMessage, error) {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	v := reflect.ValueOf(dst).Elem()
	for _, f := range fieldsOf(v.Type()) {
		raw, ok := obj[f.name]
		if !ok {
			continue
		}
		if setLoose(v.Field(f.index), raw) {
			delete(obj, f.name)
		}
	}
	if len(obj) == 0 {
		return nil, nil
	}
	return obj, nil
}

func setLoose(fv reflect.Value, raw json.RawMessage) bool {
	switch fv.Kind() {
	case reflect.String:
		s, ok := looseString(raw)
		if ok {
			fv.SetString(s)
		}
		return ok
	case reflect.Float32, reflect.Float64:
		f, ok := looseNumber(raw)
		if ok {
			fv.SetFloat(f)
		}
		return ok
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := looseNumber(raw)
		if !ok || f != math.Trunc(f) {
			return false
		}
		fv.SetInt(int64(f))
		return true
	}
	ptr := reflect.New(fv.Type())
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return false
	}
	fv.Set(ptr.Elem())
	return true
}

func looseString(raw json.RawMessage) (string, bool) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func looseNumber(raw json.RawMessage) (float64, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch t := v.(type) {
	case nil:
		return 0, true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(t, "%")), 64)
		return f, err == nil
	}
	return 0, false
}

// encodeLoose writes the struct src as an object merged with extra. An empty
// typed field never hides a value that arrived untyped under the same key.
func encodeLoose(src any, extra map[string]json.RawMessage) ([]byte, error) {
	v := reflect.ValueOf(src)
	fields := fieldsOf(v.Type())
	out := make(map[string]any, len(fields)+len(extra))
	for k, raw := range extra {
		out[k] = raw
	}
	for _, f := range fields {
		fv := v.Field(f.index)
		if isEmptyValue(fv) {
			if _, kept := extra[f.name]; kept || f.omitEmpty {
				continue
			}
		}
		out[f.name] = fv.Interface()
	}
	return json.Marshal(out)
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return v.IsZero()
}
