// Package typedjson decodes JSON objects of the form
//
//	{"Type": "<name>", "Config": {...}}
//
// into the concrete Go type registered under <name>. It backs the
// configuration types of the agent, solver, and initwfn packages.
package typedjson

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Field names of a typed JSON object
const (
	TypeField  = "Type"
	ValueField = "Config"
)

// Decode decodes data into a new value of types[name], where name is
// read from the TypeField of data. The decoded value is returned by
// value along with name. A missing ValueField decodes to the zero
// value.
func Decode(data []byte, types map[string]reflect.Type) (interface{},
	string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, "", fmt.Errorf("decode: %v", err)
	}

	raw, ok := fields[TypeField]
	if !ok {
		return nil, "", fmt.Errorf("decode: missing field %v", TypeField)
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return nil, "", fmt.Errorf("decode: could not read %v: %v",
			TypeField, err)
	}

	ty, ok := types[name]
	if !ok {
		return nil, "", fmt.Errorf("decode: unknown type %q, have %v", name,
			Names(types))
	}
	value := reflect.New(ty)
	if raw, ok := fields[ValueField]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, value.Interface()); err != nil {
			return nil, "", fmt.Errorf("decode: %v %v: %v", name, ValueField,
				err)
		}
	}
	return value.Elem().Interface(), name, nil
}

// Names returns the sorted keys of types
func Names(types map[string]reflect.Type) []string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
