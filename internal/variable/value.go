package variable

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the declared primitive type of a scene variable.
type Type string

const (
	TypeBoolean Type = "boolean"
	TypeNumber  Type = "number"
	TypeString  Type = "string"
)

// ValidType returns true if t is one of the supported variable types.
func ValidType(t Type) bool {
	return t == TypeBoolean || t == TypeNumber || t == TypeString
}

// Kind tags the shape of a Value.
type Kind string

const (
	KindBoolean Kind = "boolean"
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindVector3 Kind = "vector3"
	KindColor   Kind = "color"
)

// Value is a tagged union over the payload shapes the engine moves around.
// Variables only ever hold boolean/number/string; vector3 and color exist
// for binding telemetry and property dispatch.
type Value struct {
	Kind Kind       `json:"kind"`
	Bool bool       `json:"bool,omitempty"`
	Num  float64    `json:"num,omitempty"`
	Str  string     `json:"str,omitempty"`
	Vec  [3]float64 `json:"vec,omitempty"`
}

// Boolean returns a boolean Value.
func Boolean(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// Number returns a number Value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// String returns a string Value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Vector3 returns a vector3 Value.
func Vector3(x, y, z float64) Value {
	return Value{Kind: KindVector3, Vec: [3]float64{x, y, z}}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	return v == o
}

// AsFloat returns the numeric view of the value: numbers as-is, booleans as
// 0/1, numeric strings parsed, everything else 0.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBoolean:
		if v.Bool {
			return 1
		}
		return 0
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// Interface returns the plain Go representation, for JSON responses.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindBoolean:
		return v.Bool
	case KindNumber:
		return v.Num
	case KindString:
		return v.Str
	case KindVector3:
		return v.Vec
	}
	return nil
}

// Coerce converts a raw JSON-decoded value into the target variable type.
// It is total: on unconvertible input it returns the type's zero value
// together with an error describing what was rejected. It never panics,
// since it sits on the hot path of untrusted external data.
func Coerce(raw interface{}, target Type) (Value, error) {
	switch target {
	case TypeBoolean:
		return coerceBoolean(raw)
	case TypeNumber:
		return coerceNumber(raw)
	case TypeString:
		return coerceString(raw)
	}
	return Value{}, fmt.Errorf("unknown variable type %q", target)
}

func coerceBoolean(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return Boolean(v), nil
	case float64:
		return Boolean(v != 0), nil
	case int:
		return Boolean(v != 0), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return Boolean(true), nil
		case "false", "0", "no", "off", "":
			return Boolean(false), nil
		}
		return Boolean(false), fmt.Errorf("cannot coerce %q to boolean", v)
	case nil:
		return Boolean(false), fmt.Errorf("cannot coerce null to boolean")
	}
	return Boolean(false), fmt.Errorf("cannot coerce %T to boolean", raw)
}

func coerceNumber(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case float64:
		return Number(v), nil
	case int:
		return Number(float64(v)), nil
	case int64:
		return Number(float64(v)), nil
	case bool:
		if v {
			return Number(1), nil
		}
		return Number(0), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return Number(0), fmt.Errorf("cannot coerce %q to number", v)
		}
		return Number(f), nil
	case nil:
		return Number(0), fmt.Errorf("cannot coerce null to number")
	}
	return Number(0), fmt.Errorf("cannot coerce %T to number", raw)
}

func coerceString(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case string:
		return String(v), nil
	case float64:
		return String(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case int:
		return String(strconv.Itoa(v)), nil
	case bool:
		return String(strconv.FormatBool(v)), nil
	case nil:
		return String(""), fmt.Errorf("cannot coerce null to string")
	}
	return String(fmt.Sprintf("%v", raw)), nil
}
