package ulog

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	// Field is a single entry of a message format definition.
	Field struct {
		Type      string
		ArraySize int // 0 for scalars
		Name      string
	}

	// MessageFormat is a parsed `F` message: a named, ordered field list.
	MessageFormat struct {
		Name   string
		Fields []Field
	}

	// column is one flattened scalar slot of a wire row.
	column struct {
		name    string
		typ     string
		offset  int
		skipped bool // padding and char fields are sized but never decoded
	}
)

var basicTypeSizes = map[string]int{
	"int8_t":   1,
	"uint8_t":  1,
	"int16_t":  2,
	"uint16_t": 2,
	"int32_t":  4,
	"uint32_t": 4,
	"int64_t":  8,
	"uint64_t": 8,
	"float":    4,
	"double":   8,
	"bool":     1,
	"char":     1,
}

// parseFormat parses the payload of a format definition message,
// e.g. "vehicle_attitude:uint64_t timestamp;float[4] q;uint8_t _padding0;".
func parseFormat(payload string) (*MessageFormat, error) {
	name, rest, ok := strings.Cut(payload, ":")
	if !ok || name == "" {
		return nil, fmt.Errorf("malformed format definition %q", payload)
	}

	f := &MessageFormat{Name: name}
	for _, entry := range strings.Split(rest, ";") {
		if entry == "" {
			continue
		}
		typeStr, fieldName, ok := strings.Cut(entry, " ")
		if !ok {
			return nil, fmt.Errorf("malformed field %q in format %s", entry, name)
		}

		typ, arraySize, err := parseTypeName(typeStr)
		if err != nil {
			return nil, fmt.Errorf("format %s: %v", name, err)
		}
		f.Fields = append(f.Fields, Field{Type: typ, ArraySize: arraySize, Name: fieldName})
	}
	return f, nil
}

// parseTypeName splits "float[4]" into ("float", 4); scalars report size 0.
func parseTypeName(typeStr string) (string, int, error) {
	base, arr, ok := strings.Cut(typeStr, "[")
	if !ok {
		return typeStr, 0, nil
	}
	arr, ok = strings.CutSuffix(arr, "]")
	if !ok {
		return "", 0, fmt.Errorf("malformed array type %q", typeStr)
	}
	n, err := strconv.Atoi(arr)
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("malformed array length in %q", typeStr)
	}
	return base, n, nil
}

// flatten expands the format into wire-order scalar columns, recursing into
// nested message types. Nested fields are named parent.child, array elements
// name[i]. Returns the columns and the total row size in bytes.
func (f *MessageFormat) flatten(formats map[string]*MessageFormat, prefix string, offset int) ([]column, int, error) {
	var cols []column

	for _, field := range f.Fields {
		count := field.ArraySize
		scalar := count == 0
		if scalar {
			count = 1
		}

		size, basic := basicTypeSizes[field.Type]
		for i := 0; i < count; i++ {
			name := prefix + field.Name
			if !scalar {
				name = fmt.Sprintf("%s%s[%d]", prefix, field.Name, i)
			}

			if basic {
				cols = append(cols, column{
					name:    name,
					typ:     field.Type,
					offset:  offset,
					skipped: field.Type == "char" || strings.HasPrefix(field.Name, "_padding"),
				})
				offset += size
				continue
			}

			nested, ok := formats[field.Type]
			if !ok {
				return nil, 0, fmt.Errorf("format %s references unknown type %s", f.Name, field.Type)
			}
			sub, next, err := nested.flatten(formats, name+".", offset)
			if err != nil {
				return nil, 0, err
			}
			cols = append(cols, sub...)
			offset = next
		}
	}
	return cols, offset, nil
}
