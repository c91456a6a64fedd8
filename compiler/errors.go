package compiler

import "fmt"

// CompilerInvariantError reports a compile-time inconsistency that parse-time
// validation should already have prevented (spec.md §4.3: "Failure semantics
// of the compiler are limited to programmer bugs... must abort the
// request"). Seeing one in production means the parser let something
// through it shouldn't have, not that the user's query was malformed.
type CompilerInvariantError struct {
	Detail string
}

func (e *CompilerInvariantError) Error() string {
	return fmt.Sprintf("compiler invariant violated: %s", e.Detail)
}
