package schema

import (
	"fmt"
	"strings"
)

// Row object types
const (
	ObjectTypeColumn     = "TABLE_COLUMN"
	ObjectTypeIndex      = "TABLE_INDEX"
	ObjectTypeConstraint = "TABLE_CONSTRAINT"
)

// DataType is the cross-dialect column type vocabulary
type DataType int

const (
	TinyInt DataType = iota
	Integer
	BigInteger
	Double
	Decimal
	Boolean
	DateTime
	VarString
	Text
	UniqueIdentifier
	Blob
)

var dataTypeNames = []string{
	"TinyInt",
	"Integer",
	"BigInteger",
	"Double",
	"Decimal",
	"Boolean",
	"DateTime",
	"VarString",
	"Text",
	"UniqueIdentifier",
	"Blob",
}

// DataTypes lists every DataType value
func DataTypes() []DataType {
	out := make([]DataType, len(dataTypeNames))
	for i := range dataTypeNames {
		out[i] = DataType(i)
	}
	return out
}

func (t DataType) String() string {
	if t < 0 || int(t) >= len(dataTypeNames) {
		return fmt.Sprintf("DataType(%d)", int(t))
	}
	return dataTypeNames[t]
}

// ParseDataType parses a DataType name, ignoring case
func ParseDataType(s string) (DataType, error) {
	for i, name := range dataTypeNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return DataType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown data type: %q", s)
}

func (t DataType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *DataType) UnmarshalText(b []byte) error {
	v, err := ParseDataType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Default is the closed set of default-value expressions that survive a round trip
type Default int

const (
	DefaultNone Default = iota
	DefaultCurrentDateTime
	DefaultNewUniqueIdentifier
	DefaultZero
	DefaultOne
	DefaultTwo
	DefaultThree
)

var defaultNames = []string{
	"None",
	"CurrentDateTime",
	"NewUniqueIdentifier",
	"Zero",
	"One",
	"Two",
	"Three",
}

// Defaults lists every Default value
func Defaults() []Default {
	out := make([]Default, len(defaultNames))
	for i := range defaultNames {
		out[i] = Default(i)
	}
	return out
}

func (d Default) String() string {
	if d < 0 || int(d) >= len(defaultNames) {
		return fmt.Sprintf("Default(%d)", int(d))
	}
	return defaultNames[d]
}

// ParseDefault parses a Default name, ignoring case. An empty string is None.
func ParseDefault(s string) (Default, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultNone, nil
	}
	for i, name := range defaultNames {
		if strings.EqualFold(name, s) {
			return Default(i), nil
		}
	}
	return DefaultNone, fmt.Errorf("unknown column default: %q", s)
}

// Literal returns the integer literal for Zero..Three
func (d Default) Literal() (int, bool) {
	switch d {
	case DefaultZero:
		return 0, true
	case DefaultOne:
		return 1, true
	case DefaultTwo:
		return 2, true
	case DefaultThree:
		return 3, true
	}
	return 0, false
}

// DefaultFromLiteral maps 0..3 onto Zero..Three
func DefaultFromLiteral(v int) (Default, bool) {
	switch v {
	case 0:
		return DefaultZero, true
	case 1:
		return DefaultOne, true
	case 2:
		return DefaultTwo, true
	case 3:
		return DefaultThree, true
	}
	return DefaultNone, false
}

func (d Default) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Default) UnmarshalText(b []byte) error {
	v, err := ParseDefault(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// IndexType distinguishes plain indexes from constraints
type IndexType int

const (
	IndexTypeIndex IndexType = iota
	IndexTypeConstraint
)

func (t IndexType) String() string {
	if t == IndexTypeConstraint {
		return "Constraint"
	}
	return "Index"
}

// IndexTypeFromObjectType maps a row object type onto an IndexType
func IndexTypeFromObjectType(objectType string) IndexType {
	if objectType == ObjectTypeIndex {
		return IndexTypeIndex
	}
	return IndexTypeConstraint
}

func (t IndexType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *IndexType) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "index", "":
		*t = IndexTypeIndex
	case "constraint":
		*t = IndexTypeConstraint
	default:
		return fmt.Errorf("unknown index type: %q", string(b))
	}
	return nil
}
