package file

import "errors"

// ErrRangeNotSatisfiable signals a Range header that cannot be served from
// the file: malformed, or starting at or beyond the end of the file.
var ErrRangeNotSatisfiable = errors.New("range not satisfiable")
