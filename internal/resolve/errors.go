package resolve

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownAlias is matched by every *UnknownAlias via errors.Is.
	ErrUnknownAlias = errors.New("unknown alias")
	// ErrMissingDirectory is returned when the existence check is enabled
	// and a resolved directory is not there.
	ErrMissingDirectory = errors.New("metadata directory does not exist")
	// ErrOutsideAlias is returned when the part after "@Alias/" is absolute
	// or climbs above the alias root with "..".
	ErrOutsideAlias = errors.New("path leaves the alias root")
)

// UnknownAlias reports a directory path that references an alias token with
// no registration.
type UnknownAlias struct {
	Alias string
	// Known lists the registered aliases, sorted.
	Known []string
}

func (e *UnknownAlias) Error() string {
	return fmt.Sprintf("the alias %q is not registered; available aliases: %s", e.Alias, strings.Join(e.Known, ", "))
}

// Is makes errors.Is(err, ErrUnknownAlias) hold.
func (e *UnknownAlias) Is(target error) bool {
	return target == ErrUnknownAlias
}
