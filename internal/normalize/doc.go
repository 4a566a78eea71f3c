// Package normalize merges raw, loosely typed configuration trees against a
// schema.Schema and produces a fully defaulted, type-checked Tree.
//
// Every key is read into one of three states before anything else happens:
// not written (Unset), written as null (Null), or written with a value (Set).
// Null never survives into the result. A nullable scalar that is Null is
// treated exactly like Unset: it takes its default, or is left out when it has
// none. A list or map that is Null becomes an empty collection, and a nested
// node that is Null is filled with its defaults.
package normalize
