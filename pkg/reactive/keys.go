package reactive

import "reflect"

// specialKey is the type of the reserved key sentinels. A distinct type
// keeps them from colliding with ordinary string field keys like "length".
type specialKey string

const (
	// IterateKey is the reserved key representing "the act of iterating the
	// whole subject". Producers track it for Len/Keys/Range style reads on
	// associative subjects; structural changes (key added or removed) trigger
	// its subscribers even though no specific pre-existing key changed.
	IterateKey specialKey = "iterate"

	// LengthKey is the reserved key for a sequence subject's length. It plays
	// the IterateKey role for sequences: appends and removals trigger it, and
	// an explicit truncation write on it fans out to dropped indices.
	LengthKey specialKey = "length"
)

// ChangeKind tags a reported mutation.
type ChangeKind uint8

const (
	// KindAdd reports a key that did not previously exist.
	KindAdd ChangeKind = iota + 1

	// KindSet reports a new value for an existing key.
	KindSet

	// KindDelete reports removal of an existing key.
	KindDelete

	// KindClear reports that the subject's whole contents were wiped.
	KindClear
)

// String returns a human-readable name for the change kind.
func (k ChangeKind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindSet:
		return "set"
	case KindDelete:
		return "delete"
	case KindClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Op tags the read operation reported to Track. It only affects diagnostics
// (OnTrack hooks and observers); linkage is identical for all ops.
type Op uint8

const (
	// OpGet is a value read of a specific key.
	OpGet Op = iota + 1

	// OpHas is an existence check of a specific key.
	OpHas

	// OpIterate is a whole-subject read (length, key set, range).
	OpIterate
)

// String returns a human-readable name for the operation.
func (o Op) String() string {
	switch o {
	case OpGet:
		return "get"
	case OpHas:
		return "has"
	case OpIterate:
		return "iterate"
	default:
		return "unknown"
	}
}

// SubjectKind classifies a subject's shape for trigger fan-out.
type SubjectKind uint8

const (
	// SubjectObject is a fixed-shape subject (struct-like). Structural
	// changes fan out to IterateKey subscribers.
	SubjectObject SubjectKind = iota

	// SubjectSequence is an index-keyed subject. Structural changes fan out
	// to LengthKey subscribers, and length truncation wakes subscribers of
	// dropped indices.
	SubjectSequence

	// SubjectAssociative is a map-like subject. In addition to the object
	// rules, a plain set on an existing key wakes iteration subscribers,
	// because map iteration observes values as well as the key set.
	SubjectAssociative
)

// Classifier lets a subject report its own kind. Subjects that do not
// implement it are classified by reflection: slices and arrays are
// sequences, maps are associative, everything else is an object.
type Classifier interface {
	SubjectKind() SubjectKind
}

// classify resolves the kind of a subject for trigger fan-out.
func classify(subject any) SubjectKind {
	if c, ok := subject.(Classifier); ok {
		return c.SubjectKind()
	}

	rv := reflect.ValueOf(subject)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return SubjectObject
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return SubjectSequence
	case reflect.Map:
		return SubjectAssociative
	default:
		return SubjectObject
	}
}

// asIndex reports whether key is a numeric index and returns its value.
// Producers normally use int keys; the other widths are accepted so raw
// subjects driven directly against the engine behave the same.
func asIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case int32:
		return int(k), true
	case int64:
		return int(k), true
	case uint:
		return int(k), true
	case uint32:
		return int(k), true
	case uint64:
		return int(k), true
	default:
		return 0, false
	}
}
