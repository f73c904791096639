package cli

import (
	"flag"
	"strconv"
)

// optionalString records whether a flag was given at all, so an explicit
// empty value differs from an absent one.
type optionalString struct {
	val *string
}

func (o *optionalString) String() string {
	if o == nil || o.val == nil {
		return ""
	}
	return *o.val
}

func (o *optionalString) Set(s string) error {
	o.val = &s
	return nil
}

type optionalInt struct {
	val *int
}

func (o *optionalInt) String() string {
	if o == nil || o.val == nil {
		return ""
	}
	return strconv.Itoa(*o.val)
}

func (o *optionalInt) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	o.val = &n
	return nil
}

// counter counts repeated boolean flags such as -v -v
type counter struct {
	n    *int
	step int
}

func (c counter) String() string {
	if c.n == nil {
		return "0"
	}
	return strconv.Itoa(*c.n)
}

func (c counter) Set(string) error {
	*c.n += c.step
	return nil
}

func (c counter) IsBoolFlag() bool { return true }

// stringFlag registers one value under a long and a short name
func stringFlag(fs *flag.FlagSet, long, short, usage string) *optionalString {
	v := &optionalString{}
	fs.Var(v, long, usage)
	if short != "" {
		fs.Var(v, short, usage)
	}
	return v
}

func intFlag(fs *flag.FlagSet, long, short, usage string) *optionalInt {
	v := &optionalInt{}
	fs.Var(v, long, usage)
	if short != "" {
		fs.Var(v, short, usage)
	}
	return v
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments. Everything after "--" is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		consumed := len(args) - len(rest)
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}
