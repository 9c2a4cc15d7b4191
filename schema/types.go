// Package schema defines the declarative table model: tables, columns,
// column types, constraints and the inline shorthand forms users write in
// model files. It also provides normalization of shorthand into canonical
// table-level constraints.
package schema

import (
	"encoding/json"
	"fmt"
)

// TypeKind identifies a column type.
type TypeKind string

// Scalar type kinds.
const (
	TypeSmallInt        TypeKind = "small_int"
	TypeInteger         TypeKind = "integer"
	TypeBigInt          TypeKind = "big_int"
	TypeReal            TypeKind = "real"
	TypeDoublePrecision TypeKind = "double_precision"
	TypeText            TypeKind = "text"
	TypeBoolean         TypeKind = "boolean"
	TypeDate            TypeKind = "date"
	TypeTime            TypeKind = "time"
	TypeTimestamp       TypeKind = "timestamp"
	TypeTimestamptz     TypeKind = "timestamptz"
	TypeInterval        TypeKind = "interval"
	TypeBytea           TypeKind = "bytea"
	TypeUUID            TypeKind = "uuid"
	TypeJSON            TypeKind = "json"
	TypeJSONB           TypeKind = "jsonb"
	TypeInet            TypeKind = "inet"
	TypeCidr            TypeKind = "cidr"
	TypeMacaddr         TypeKind = "macaddr"
	TypeXML             TypeKind = "xml"
)

// Parameterized type kinds.
const (
	TypeVarchar TypeKind = "varchar"
	TypeNumeric TypeKind = "numeric"
	TypeChar    TypeKind = "char"
	TypeCustom  TypeKind = "custom"
	TypeEnum    TypeKind = "enum"
)

var simpleKinds = map[TypeKind]bool{
	TypeSmallInt: true, TypeInteger: true, TypeBigInt: true,
	TypeReal: true, TypeDoublePrecision: true, TypeText: true,
	TypeBoolean: true, TypeDate: true, TypeTime: true,
	TypeTimestamp: true, TypeTimestamptz: true, TypeInterval: true,
	TypeBytea: true, TypeUUID: true, TypeJSON: true, TypeJSONB: true,
	TypeInet: true, TypeCidr: true, TypeMacaddr: true, TypeXML: true,
}

// ColumnType is the type of a column. Scalar kinds carry no parameters;
// varchar/char carry a length, numeric carries precision and scale, custom
// carries a raw SQL type name, and enum carries a name plus its values.
type ColumnType struct {
	Kind       TypeKind
	Length     uint32
	Precision  uint32
	Scale      uint32
	CustomType string
	EnumName   string
	EnumValues EnumValues
}

// Simple returns a scalar column type.
func Simple(kind TypeKind) ColumnType {
	return ColumnType{Kind: kind}
}

// Varchar returns a varchar type with the given length.
func Varchar(length uint32) ColumnType {
	return ColumnType{Kind: TypeVarchar, Length: length}
}

// Char returns a fixed-length char type.
func Char(length uint32) ColumnType {
	return ColumnType{Kind: TypeChar, Length: length}
}

// Numeric returns a numeric type with the given precision and scale.
func Numeric(precision, scale uint32) ColumnType {
	return ColumnType{Kind: TypeNumeric, Precision: precision, Scale: scale}
}

// Custom returns a column type backed by a raw SQL type name.
func Custom(sqlType string) ColumnType {
	return ColumnType{Kind: TypeCustom, CustomType: sqlType}
}

// StringEnum returns an enum type whose variants are plain strings.
func StringEnum(name string, values ...string) ColumnType {
	return ColumnType{Kind: TypeEnum, EnumName: name, EnumValues: EnumValues{Strings: values}}
}

// IntEnum returns an enum type whose variants carry explicit integer values.
func IntEnum(name string, members ...EnumMember) ColumnType {
	return ColumnType{Kind: TypeEnum, EnumName: name, EnumValues: EnumValues{Members: members}}
}

// IsEnum reports whether the type is an enum.
func (t ColumnType) IsEnum() bool {
	return t.Kind == TypeEnum
}

// Equal reports structural equality of two column types.
func (t ColumnType) Equal(other ColumnType) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TypeVarchar, TypeChar:
		return t.Length == other.Length
	case TypeNumeric:
		return t.Precision == other.Precision && t.Scale == other.Scale
	case TypeCustom:
		return t.CustomType == other.CustomType
	case TypeEnum:
		return t.EnumName == other.EnumName && t.EnumValues.Equal(other.EnumValues)
	default:
		return true
	}
}

// MarshalJSON encodes scalar kinds as bare strings and parameterized kinds
// as single-key objects, e.g. {"varchar":{"length":255}}.
func (t ColumnType) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TypeVarchar, TypeChar:
		return json.Marshal(map[string]any{string(t.Kind): map[string]any{"length": t.Length}})
	case TypeNumeric:
		return json.Marshal(map[string]any{"numeric": map[string]any{"precision": t.Precision, "scale": t.Scale}})
	case TypeCustom:
		return json.Marshal(map[string]any{"custom": map[string]any{"type": t.CustomType}})
	case TypeEnum:
		return json.Marshal(map[string]any{"enum": map[string]any{"name": t.EnumName, "values": t.EnumValues}})
	default:
		if !simpleKinds[t.Kind] {
			return nil, fmt.Errorf("unknown column type kind: %q", t.Kind)
		}
		return json.Marshal(string(t.Kind))
	}
}

// UnmarshalJSON accepts either a bare string (scalar kinds) or a single-key
// object (parameterized kinds).
func (t *ColumnType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		kind := TypeKind(s)
		if !simpleKinds[kind] {
			return fmt.Errorf("unknown column type: %q", s)
		}
		*t = ColumnType{Kind: kind}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid column type: %s", data)
	}
	if len(obj) != 1 {
		return fmt.Errorf("column type object must have exactly one key, got %d", len(obj))
	}
	for key, raw := range obj {
		switch TypeKind(key) {
		case TypeVarchar, TypeChar:
			var body struct {
				Length uint32 `json:"length"`
			}
			if err := json.Unmarshal(raw, &body); err != nil {
				return err
			}
			*t = ColumnType{Kind: TypeKind(key), Length: body.Length}
		case TypeNumeric:
			var body struct {
				Precision uint32 `json:"precision"`
				Scale     uint32 `json:"scale"`
			}
			if err := json.Unmarshal(raw, &body); err != nil {
				return err
			}
			*t = ColumnType{Kind: TypeNumeric, Precision: body.Precision, Scale: body.Scale}
		case TypeCustom:
			var body struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(raw, &body); err != nil {
				return err
			}
			*t = ColumnType{Kind: TypeCustom, CustomType: body.Type}
		case TypeEnum:
			var body struct {
				Name   string     `json:"name"`
				Values EnumValues `json:"values"`
			}
			if err := json.Unmarshal(raw, &body); err != nil {
				return err
			}
			*t = ColumnType{Kind: TypeEnum, EnumName: body.Name, EnumValues: body.Values}
		default:
			return fmt.Errorf("unknown column type: %q", key)
		}
	}
	return nil
}

// EnumMember is one variant of an integer-valued enum.
type EnumMember struct {
	Name  string `json:"name"`
	Value int32  `json:"value"`
}

// EnumValues holds the variants of an enum type: either plain strings or
// name/value pairs, never both.
type EnumValues struct {
	Strings []string
	Members []EnumMember
}

// IsInteger reports whether the enum variants carry integer values.
func (v EnumValues) IsInteger() bool {
	return v.Members != nil
}

// Names returns the variant names in declaration order.
func (v EnumValues) Names() []string {
	if v.IsInteger() {
		names := make([]string, len(v.Members))
		for i, m := range v.Members {
			names[i] = m.Name
		}
		return names
	}
	return v.Strings
}

// Equal reports structural equality of two enum value sets.
func (v EnumValues) Equal(other EnumValues) bool {
	if v.IsInteger() != other.IsInteger() {
		return false
	}
	if v.IsInteger() {
		if len(v.Members) != len(other.Members) {
			return false
		}
		for i := range v.Members {
			if v.Members[i] != other.Members[i] {
				return false
			}
		}
		return true
	}
	return stringsEqual(v.Strings, other.Strings)
}

// MarshalJSON encodes string enums as an array of strings and integer enums
// as an array of {"name","value"} objects.
func (v EnumValues) MarshalJSON() ([]byte, error) {
	if v.IsInteger() {
		return json.Marshal(v.Members)
	}
	if v.Strings == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Strings)
}

// UnmarshalJSON inspects the first element to decide between the two forms.
func (v *EnumValues) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("enum values must be an array: %w", err)
	}
	if len(raw) == 0 {
		*v = EnumValues{Strings: []string{}}
		return nil
	}
	var first string
	if err := json.Unmarshal(raw[0], &first); err == nil {
		var strs []string
		if err := json.Unmarshal(data, &strs); err != nil {
			return err
		}
		*v = EnumValues{Strings: strs}
		return nil
	}
	var members []EnumMember
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	*v = EnumValues{Members: members}
	return nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
