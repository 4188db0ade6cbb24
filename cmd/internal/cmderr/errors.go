package cmderr

import (
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
)

// ExitErr specific error for ExitOnErr function that passes the exit code and error caused.
type ExitErr struct {
	Code  int
	Cause error
}

func (x ExitErr) Error() string { return x.Cause.Error() }

func (x ExitErr) Unwrap() error { return x.Cause }

// Exit codes.
const (
	CodeInternal = 1
	CodeStore    = 2
)

// Format renders err for the user. Store failures are printed in
// `<kind> [<origin>] : <message> (in <operation>)` form, anything else is
// reported as internal error.
func Format(err error) string {
	var e *recerr.Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return "Internal Error : " + err.Error()
}

// ExitOnErr writes error to os.Stderr and calls os.Exit with passed exit code,
// CodeStore for store failures or CodeInternal otherwise.
// Does nothing if err is nil.
func ExitOnErr(err error) {
	if err != nil {
		var e ExitErr
		if !errors.As(err, &e) {
			e.Code = CodeInternal
			if errors.As(err, new(*recerr.Error)) {
				e.Code = CodeStore
			}
		}
		fmt.Fprintln(os.Stderr, Format(err))
		os.Exit(e.Code)
	}
}
