package settings

import (
	"strconv"

	"github.com/vicentefelipechile/enlacevrc/common"
)

// Kind is the declared type of a setting definition. Values are only
// string-encoded at the storage edge; inside the catalog boundary they are
// tagged Values.
type Kind uint8

const (
	KindBoolean Kind = iota
	KindString
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindNumeric:
		return "numeric"
	}

	return "unknown"
}

// ParseKind parses the wire name of a setting type.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "boolean":
		return KindBoolean, nil
	case "string":
		return KindString, nil
	case "numeric":
		return KindNumeric, nil
	}

	return 0, common.NewValidationError("invalid setting type: " + s)
}

// Value is a tagged setting value.
type Value struct {
	Kind Kind

	Bool bool
	Str  string
	Num  int64
}

// ParseValue decodes a string-encoded value of the given kind. Booleans are
// stored as "1"/"0".
func ParseValue(kind Kind, encoded string) (Value, error) {
	switch kind {
	case KindBoolean:
		switch encoded {
		case "1":
			return Value{Kind: KindBoolean, Bool: true}, nil
		case "0":
			return Value{Kind: KindBoolean, Bool: false}, nil
		}
		return Value{}, common.NewValidationError("boolean settings must be encoded as \"1\" or \"0\"")
	case KindString:
		return Value{Kind: KindString, Str: encoded}, nil
	case KindNumeric:
		n, err := strconv.ParseInt(encoded, 10, 64)
		if err != nil {
			return Value{}, common.NewValidationError("invalid numeric setting value: " + encoded)
		}
		return Value{Kind: KindNumeric, Num: n}, nil
	}

	return Value{}, common.NewValidationError("unknown setting type")
}

// Encode returns the string encoding written to storage.
func (v Value) Encode() string {
	switch v.Kind {
	case KindBoolean:
		if v.Bool {
			return "1"
		}
		return "0"
	case KindNumeric:
		return strconv.FormatInt(v.Num, 10)
	}

	return v.Str
}
