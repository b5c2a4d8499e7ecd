package argparser

import (
	"fmt"
	"strconv"

	"github.com/pborman/getopt/v2"
)

// Parse runs optSet over args, accumulating errors instead of
// terminating on the first one, and hands back whatever positional
// parameters remain after option extraction.
func Parse(args []string, optSet *getopt.Set) (remaining []string, argErrs []error) {

	if err := optSet.Getopt(args, nil); err != nil {
		argErrs = append(argErrs, err)
	}

	return optSet.Args(), argErrs
}

// CheckIntOptionRange validates that an already-parsed integer option
// falls within [min:max], keyed by its long name for the error message.
func CheckIntOptionRange(optSet *getopt.Set, longName string, min, max int64) (argErrs []error) {

	var opt getopt.Option
	optSet.VisitAll(func(o getopt.Option) {
		if o.LongName() == longName {
			opt = o
		}
	})
	if opt == nil {
		return []error{fmt.Errorf("unknown option '%s' submitted for range validation", longName)}
	}

	actual, err := strconv.ParseInt(opt.Value().String(), 10, 64)
	if err != nil {
		return []error{err}
	}

	if actual < min || actual > max {
		argErrs = append(argErrs, fmt.Errorf(
			"value '%d' supplied for %s out of range [%d:%d]",
			actual,
			longName,
			min, max,
		))
	}

	return
}
