// Package schema declares the shape of a configuration tree: which keys exist,
// what type each scalar has, which defaults apply, and how lists and maps are
// made up.
//
// A Schema is plain data. It is built once, validated by New, and then shared
// read-only by any number of normalization calls. Serializer returns the tree
// of the serializer bundle; the debug flag feeds the default of
// metadata.debug.
package schema
