package main

import (
	"flag"
	"fmt"
	"strconv"
)

// uint64Flag adapts a *uint64 to flag.Value, since the standard flag
// package has no Uint64Var.
type uint64Flag struct {
	p *uint64
}

func (v uint64Flag) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatUint(*v.p, 10)
}

func (v uint64Flag) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uint64 value %q", s)
	}
	*v.p = n
	return nil
}

func uint64Var(fs *flag.FlagSet, p *uint64, name string, value uint64, usage string) {
	*p = value
	fs.Var(uint64Flag{p: p}, name, usage)
}
