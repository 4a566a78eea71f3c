// Package resolve turns the metadata.directories entries of a normalized
// configuration into a mapping from namespace prefix to directory.
//
// A path may start with an alias token such as "@AppBundle". The token is
// replaced by the directory registered for that alias, and the remainder of
// the path is joined beneath it as written. A remainder that would climb out
// of the alias directory is an error. Relative alias directories and plain
// relative paths are both taken from the project directory.
package resolve
