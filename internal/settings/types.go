// Package settings implements the typed, grouped, persisted settings store
// of spec §4.3: entries are registered at construction time into groups,
// loaded from and saved to an INI-style file, and exposed to clients through
// a request/response interface with validator-gated writes.
package settings

import "fmt"

// Type is the primitive type carried by a settings Entry's value.
type Type int

const (
	TypeBool Type = iota
	TypeI32
	TypeU32
	TypeI64
	TypeU64
	TypeF32
	TypeF64
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeI32:
		return "i32"
	case TypeU32:
		return "u32"
	case TypeI64:
		return "i64"
	case TypeU64:
		return "u64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// Flags are per-entry behavior modifiers.
type Flags uint8

const (
	FlagNone Flags = 0
	// FlagReadOnly rejects SetGroup writes targeting this entry.
	FlagReadOnly Flags = 1 << iota
	// FlagPassword replaces the string value with "" on GetGroupList
	// responses.
	FlagPassword
	// FlagNoExport omits the entry entirely from GetGroupList responses.
	FlagNoExport
)

// Value is a tagged union over the eight supported primitive types. Exactly
// one field is meaningful, selected by Type.
type Value struct {
	Type Type
	B    bool
	I32  int32
	U32  uint32
	I64  int64
	U64  uint64
	F32  float32
	F64  float64
	Str  string
}

// String renders the value the way the INI codec and the wire format expect.
func (v Value) String() string {
	switch v.Type {
	case TypeBool:
		if v.B {
			return "true"
		}
		return "false"
	case TypeI32:
		return fmt.Sprintf("%d", v.I32)
	case TypeU32:
		return fmt.Sprintf("%d", v.U32)
	case TypeI64:
		return fmt.Sprintf("%d", v.I64)
	case TypeU64:
		return fmt.Sprintf("%d", v.U64)
	case TypeF32:
		return fmt.Sprintf("%f", v.F32)
	case TypeF64:
		return fmt.Sprintf("%f", v.F64)
	case TypeString:
		return v.Str
	default:
		return ""
	}
}

func boolValue(b bool) Value        { return Value{Type: TypeBool, B: b} }
func i32Value(v int32) Value        { return Value{Type: TypeI32, I32: v} }
func u32Value(v uint32) Value       { return Value{Type: TypeU32, U32: v} }
func i64Value(v int64) Value        { return Value{Type: TypeI64, I64: v} }
func u64Value(v uint64) Value       { return Value{Type: TypeU64, U64: v} }
func f32Value(v float32) Value      { return Value{Type: TypeF32, F32: v} }
func f64Value(v float64) Value      { return Value{Type: TypeF64, F64: v} }
func stringValue(v string) Value    { return Value{Type: TypeString, Str: v} }

// Entry is one typed, named setting within a Group.
type Entry struct {
	ID          string
	DisplayName string
	Description string
	Type        Type

	current Value
	pending Value
	Default Value

	DependsOn *Entry
	Flags     Flags
}

// Current returns the entry's live value — equal to Pending outside an
// in-flight SetGroup transaction (spec §3 invariant).
func (e *Entry) Current() Value { return e.current }

// Pending returns the value staged by an in-flight SetGroup transaction.
func (e *Entry) Pending() Value { return e.pending }

// SetCurrent is a direct setter used by player-registry volume persistence
// and by validators that want to mutate a sibling entry outright rather
// than merely staging a value.
func (e *Entry) SetCurrent(v Value) { e.current = v }

// SetPending lets a Validator adjust a staged value (e.g. clamp it) before
// the transaction commits.
func (e *Entry) SetPending(v Value) { e.pending = v }
