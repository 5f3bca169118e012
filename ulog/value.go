package ulog

import (
	"encoding/binary"
	"math"
	"strings"
)

// readNumeric decodes one basic-typed scalar at b[off:] into a float64.
// Datasets carry every numeric column as float64, which is what plotting
// and statistics operate on anyway.
func readNumeric(typ string, b []byte, off int) float64 {
	switch typ {
	case "int8_t":
		return float64(int8(b[off]))
	case "uint8_t":
		return float64(b[off])
	case "int16_t":
		return float64(int16(binary.LittleEndian.Uint16(b[off:])))
	case "uint16_t":
		return float64(binary.LittleEndian.Uint16(b[off:]))
	case "int32_t":
		return float64(int32(binary.LittleEndian.Uint32(b[off:])))
	case "uint32_t":
		return float64(binary.LittleEndian.Uint32(b[off:]))
	case "int64_t":
		return float64(int64(binary.LittleEndian.Uint64(b[off:])))
	case "uint64_t":
		return float64(binary.LittleEndian.Uint64(b[off:]))
	case "float":
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off:])))
	case "double":
		return math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
	case "bool":
		if b[off] != 0 {
			return 1
		}
		return 0
	}
	return math.NaN()
}

// decodeTyped decodes an info or parameter value declared as typeStr.
// Char arrays become strings, everything else a typed Go scalar.
func decodeTyped(typeStr string, raw []byte) any {
	typ, arraySize, err := parseTypeName(typeStr)
	if err != nil {
		return nil
	}

	if typ == "char" {
		n := len(raw)
		if arraySize > 0 && arraySize < n {
			n = arraySize
		}
		return strings.TrimRight(string(raw[:n]), "\x00")
	}

	size, ok := basicTypeSizes[typ]
	if !ok || len(raw) < size {
		return nil
	}

	if arraySize > 1 {
		vals := make([]any, 0, arraySize)
		for i := 0; i+size <= len(raw) && i/size < arraySize; i += size {
			vals = append(vals, decodeScalar(typ, raw[i:]))
		}
		return vals
	}
	return decodeScalar(typ, raw)
}

func decodeScalar(typ string, b []byte) any {
	switch typ {
	case "int8_t":
		return int8(b[0])
	case "uint8_t":
		return b[0]
	case "int16_t":
		return int16(binary.LittleEndian.Uint16(b))
	case "uint16_t":
		return binary.LittleEndian.Uint16(b)
	case "int32_t":
		return int32(binary.LittleEndian.Uint32(b))
	case "uint32_t":
		return binary.LittleEndian.Uint32(b)
	case "int64_t":
		return int64(binary.LittleEndian.Uint64(b))
	case "uint64_t":
		return binary.LittleEndian.Uint64(b)
	case "float":
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case "double":
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	case "bool":
		return b[0] != 0
	}
	return nil
}
