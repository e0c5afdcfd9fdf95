// Package normalize converts values read from Google Ads query results into
// JSON-safe structures.
//
// Every value is first classified into one of a closed set of categories
// (see Category) and then converted:
//
//   - primitives (nil, booleans, numbers, strings) are returned unchanged
//   - enum members become their symbolic name
//   - protobuf messages are either walked field by field (Deep) or replaced
//     by their text representation (Shallow)
//   - mappings and sequences are converted element by element
//   - anything else is replaced by its default string representation
//
// Normalization never panics and never returns an error. Row builds a
// Normalized Row for a list of dotted attribute paths and verifies the
// result with a trial JSON encode, falling back to a degraded row of plain
// strings when the encode fails.
//
// A Normalizer holds no mutable state and is safe for concurrent use.
package normalize
