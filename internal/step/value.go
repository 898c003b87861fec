package step

// ValueKind identifies the active variant of a Value.
type ValueKind int

const (
	ValueUnset   ValueKind = iota // $
	ValueDerived                  // *
	ValueString
	ValueInteger
	ValueReal
	ValueBoolean // .T. or .F.
	ValueEnum    // any other enumeration literal, including .U.
	ValueBinary
	ValueRef  // #id
	ValueList // ( ... ) aggregate, possibly nested
	ValueTyped
)

var valueKindNames = map[ValueKind]string{
	ValueUnset:   "unset",
	ValueDerived: "derived",
	ValueString:  "string",
	ValueInteger: "integer",
	ValueReal:    "real",
	ValueBoolean: "boolean",
	ValueEnum:    "enumeration",
	ValueBinary:  "binary",
	ValueRef:     "reference",
	ValueList:    "list",
	ValueTyped:   "typed",
}

func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is one attribute value of an entity instance. Kind selects which of
// the remaining fields is meaningful:
//
//	ValueString, ValueEnum, ValueBinary  Str
//	ValueInteger                         Int
//	ValueReal                            Real (Str keeps the source spelling)
//	ValueBoolean                         Bool
//	ValueRef                             Ref
//	ValueList                            List
//	ValueTyped                           Typed
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Real  float64
	Bool  bool
	Ref   int
	List  []Value
	Typed *Segment
}

// Segment is a type name with its parameter list. Simple instances have one
// segment, complex instances have several, and typed parameters such as
// IFCLABEL('x') carry one as a Value.
type Segment struct {
	Type   string
	Params []Value
}

// Unset returns the $ marker.
func Unset() Value { return Value{Kind: ValueUnset} }

// Derived returns the * marker.
func Derived() Value { return Value{Kind: ValueDerived} }

// String returns a string value.
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// Integer returns an integer value.
func Integer(n int64) Value { return Value{Kind: ValueInteger, Int: n} }

// Real returns a real value.
func Real(f float64) Value { return Value{Kind: ValueReal, Real: f} }

// Boolean returns .T. or .F.
func Boolean(b bool) Value { return Value{Kind: ValueBoolean, Bool: b} }

// Enum returns an enumeration literal without its dots.
func Enum(name string) Value { return Value{Kind: ValueEnum, Str: name} }

// Binary returns a binary literal (hex digits, leading pad digit included).
func Binary(hex string) Value { return Value{Kind: ValueBinary, Str: hex} }

// Ref returns a reference to entity id.
func Ref(id int) Value { return Value{Kind: ValueRef, Ref: id} }

// List returns an aggregate of the given values.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: ValueList, List: items}
}

// Typed returns a typed parameter such as IFCLABEL('x').
func Typed(name string, params ...Value) Value {
	if params == nil {
		params = []Value{}
	}
	return Value{Kind: ValueTyped, Typed: &Segment{Type: name, Params: params}}
}

// Equal reports whether two values are structurally equal. Reals compare by
// numeric value, not by spelling.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueUnset, ValueDerived:
		return true
	case ValueString, ValueEnum, ValueBinary:
		return v.Str == o.Str
	case ValueInteger:
		return v.Int == o.Int
	case ValueReal:
		return v.Real == o.Real
	case ValueBoolean:
		return v.Bool == o.Bool
	case ValueRef:
		return v.Ref == o.Ref
	case ValueList:
		return valuesEqual(v.List, o.List)
	case ValueTyped:
		return v.Typed.Type == o.Typed.Type && valuesEqual(v.Typed.Params, o.Typed.Params)
	default:
		return false
	}
}

func valuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Path locates a value inside an entity record: the segment index and the
// 0-based index at each nesting level.
type Path struct {
	Segment int
	Indices []int
}

// RefVisitor is called for every reference found by WalkRefs.
type RefVisitor func(target int, path Path)

// WalkRefs calls fn for every reference in params, descending into lists and
// typed parameters. segment is recorded in each reported Path.
func WalkRefs(segment int, params []Value, fn RefVisitor) {
	walkRefs(segment, params, nil, fn)
}

func walkRefs(segment int, params []Value, prefix []int, fn RefVisitor) {
	for i, v := range params {
		idx := append(append([]int(nil), prefix...), i)
		switch v.Kind {
		case ValueRef:
			fn(v.Ref, Path{Segment: segment, Indices: idx})
		case ValueList:
			walkRefs(segment, v.List, idx, fn)
		case ValueTyped:
			walkRefs(segment, v.Typed.Params, idx, fn)
		case ValueUnset, ValueDerived, ValueString, ValueInteger, ValueReal,
			ValueBoolean, ValueEnum, ValueBinary:
			// scalars carry no references
		}
	}
}
