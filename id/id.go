// Package id defines the opaque value representation shared by every column
// of a result: the 64-bit Id, the ResultType that governs how a column's Ids
// are decoded, and the handful of encode/decode helpers that used to live in
// the teacher's storage/ops.go as plain byte-slice codecs.
package id

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Id is an opaque 64-bit tag. Its meaning is fixed by the ResultType of the
// column it appears in: a vocabulary index (KB), a verbatim integer
// (VERBATIM), a float bit-packed into the low 32 bits (FLOAT), an index into
// a LocalVocab (STRING), a text-record handle (TEXT), or one of the two
// sentinels below.
type Id uint64

const (
	// Undefined marks the absence of a value in a PossiblyUndefined column.
	Undefined Id = Id(math.MaxUint64)
	// NoValue is returned by kernels that have nothing sensible to emit,
	// e.g. MIN/MAX over a STRING or TEXT column (spec.md §4.5).
	NoValue Id = Id(math.MaxUint64 - 1)
)

// ResultType governs how the AggregateEngine and IndexAdapter decode the Ids
// of a column.
type ResultType int

const (
	Verbatim ResultType = iota
	Float
	String
	Text
	KB
	Undef
)

func (t ResultType) String() string {
	switch t {
	case Verbatim:
		return "VERBATIM"
	case Float:
		return "FLOAT"
	case String:
		return "STRING"
	case Text:
		return "TEXT"
	case KB:
		return "KB"
	case Undef:
		return "UNDEF"
	default:
		return "UNKNOWN"
	}
}

// EncodeVerbatim packs a signed integer into an Id exactly as VERBATIM
// columns expect it: the raw bit pattern, no tagging.
func EncodeVerbatim(v int64) Id { return Id(uint64(v)) }

// DecodeVerbatim reverses EncodeVerbatim.
func DecodeVerbatim(v Id) int64 { return int64(uint64(v)) }

// EncodeFloat bit-copies f into the low 32 bits of an Id, preserving the
// source engine's memcpy-into-Id layout (spec.md §4.5, §9) so that any
// persisted or wire-serialized Id stream stays compatible.
func EncodeFloat(f float32) Id { return Id(uint64(math.Float32bits(f))) }

// DecodeFloat reverses EncodeFloat.
func DecodeFloat(v Id) float32 { return math.Float32frombits(uint32(v)) }

// Vocabulary-word prefixes used by the on-disk index to tag typed literals.
// These mirror the Index capability's VALUE_PREFIX / VALUE_FLOAT_PREFIX
// constants (spec.md §6): a KB word starting with ValueFloatPrefix encodes a
// numeric literal followed by one terminal byte; a word
// starting with ValuePrefix encodes some other typed literal.
const (
	ValuePrefix      = "\x01"
	ValueFloatPrefix = "\x02"
)

// StartsWith is the Index capability's startsWith test predicate (spec.md
// §6), kept as a named function rather than an inline strings.HasPrefix call
// so kernels read the same way the source engine's ad_utility::startsWith
// call sites do.
func StartsWith(s, prefix string) bool {
	return strings.HasPrefix(s, prefix)
}

// ConvertIndexWordToFloatValue reverses the on-disk float encoding: word is
// expected to have already had its leading ValueFloatPrefix byte and its
// terminal byte trimmed by the caller, leaving plain numeric text.
func ConvertIndexWordToFloatValue(word string) (float32, error) {
	f, err := strconv.ParseFloat(word, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "convert index word %q to float value", word)
	}
	return float32(f), nil
}

// ConvertIndexWordToValueLiteral strips the ValuePrefix marker from a
// vocabulary word so GROUP_CONCAT emits the literal's plain text rather than
// its on-disk encoding.
func ConvertIndexWordToValueLiteral(word string) string {
	return strings.TrimPrefix(word, ValuePrefix)
}
