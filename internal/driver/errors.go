package driver

import (
	"errors"
	"fmt"

	"cbridge/internal/symbols"
)

// ErrNoOutput is returned when a module failed and its files are not written.
var ErrNoOutput = errors.New("no output written")

// FatalError stops the generation of one module. Its diagnostic has
// already been reported.
type FatalError struct {
	Module string
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Module, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsDuplicateSymbol reports a run stopped by a wrapper name clash.
func IsDuplicateSymbol(err error) bool {
	return errors.Is(err, symbols.ErrDuplicateSymbol)
}
