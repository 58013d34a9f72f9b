package acceptparams

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Type is the declared type of a scalar field.
type Type int

const (
	TypeString Type = iota + 1
	TypeText
	TypeBinary
	TypeInteger
	TypeFloat
	TypeDecimal
	TypeBoolean
	TypeDatetime
	TypeArray
	TypeUUID
)

var typeNames = map[Type]string{
	TypeString:   "string",
	TypeText:     "text",
	TypeBinary:   "binary",
	TypeInteger:  "integer",
	TypeFloat:    "float",
	TypeDecimal:  "decimal",
	TypeBoolean:  "boolean",
	TypeDatetime: "datetime",
	TypeArray:    "array",
	TypeUUID:     "uuid",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a textual type tag. "sequence" is accepted as an alias of
// "array", "int"/"bool" as aliases of "integer"/"boolean".
func ParseType(tag string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "string":
		return TypeString, true
	case "text":
		return TypeText, true
	case "binary":
		return TypeBinary, true
	case "integer", "int":
		return TypeInteger, true
	case "float":
		return TypeFloat, true
	case "decimal":
		return TypeDecimal, true
	case "boolean", "bool":
		return TypeBoolean, true
	case "datetime":
		return TypeDatetime, true
	case "array", "sequence":
		return TypeArray, true
	case "uuid":
		return TypeUUID, true
	}
	return 0, false
}

var (
	integerRe  = regexp.MustCompile(`^[-+]?\d+$`)
	floatRe    = regexp.MustCompile(`^[-+]?(\d*\.\d+|\d+)$`)
	datetimeRe = regexp.MustCompile(`^[-\d:T\s]+$`)
)

var boolTokens = map[string]bool{
	"1": true, "true": true, "TRUE": true, "T": true, "Y": true,
	"0": false, "false": false, "FALSE": false, "F": false, "N": false,
}

func (t Type) valid() bool {
	_, ok := typeNames[t]
	return ok
}

// recognize reports whether the string form s is acceptable for t.
// TypeArray is handled structurally and never reaches here.
func (t Type) recognize(s string) (bool, error) {
	switch t {
	case TypeString, TypeText, TypeBinary:
		return true, nil
	case TypeInteger:
		return integerRe.MatchString(s), nil
	case TypeFloat, TypeDecimal:
		return floatRe.MatchString(s), nil
	case TypeBoolean:
		_, ok := boolTokens[s]
		return ok, nil
	case TypeDatetime:
		return datetimeRe.MatchString(s), nil
	case TypeUUID:
		return uuid.Validate(s) == nil, nil
	default:
		return false, fmt.Errorf("no recognition rule for %s", t)
	}
}

// coerce converts a recognized raw value into the representation of t.
// s is the string form the value was recognized with.
func (t Type) coerce(raw any, s string) (any, error) {
	switch t {
	case TypeInteger:
		return strconv.ParseInt(strings.TrimPrefix(s, "+"), 10, 64)
	case TypeFloat, TypeDecimal:
		return strconv.ParseFloat(s, 64)
	case TypeBoolean:
		return boolTokens[s], nil
	case TypeString, TypeText, TypeDatetime:
		return s, nil
	case TypeBinary:
		return raw, nil
	case TypeUUID:
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	default:
		return nil, fmt.Errorf("no coercion for %s", t)
	}
}

// scalarString renders the string form of a scalar input value. Floats are
// written without exponent so that 1e6 from a JSON decoder still reads as
// an integer.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int8:
		return strconv.FormatInt(int64(t), 10), true
	case int16:
		return strconv.FormatInt(int64(t), 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint8:
		return strconv.FormatUint(uint64(t), 10), true
	case uint16:
		return strconv.FormatUint(uint64(t), 10), true
	case uint32:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float32:
		return formatFloat(float64(t)), true
	case float64:
		return formatFloat(t), true
	case []byte:
		return string(t), true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toFloat converts numeric values (and numeric strings) to float64.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// toSequence normalizes the accepted shapes of an array value.
func toSequence(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case string:
		parts := strings.Split(t, ",")
		for len(parts) > 0 && parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}
		out := make([]any, len(parts))
		for i, s := range parts {
			out[i] = s
		}
		return out, true
	case []byte:
		return nil, false
	}
	// other typed slices built by the caller, e.g. []int
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
