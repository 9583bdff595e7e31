package main

import (
	"strings"

	"github.com/spf13/pflag"
)

// splitKnownFlags separates a wrapper's own flags from the arguments meant
// for the wrapped tool. Only long flags registered in fs, or a bare
// registered shorthand such as "-p", are taken; everything else is forwarded
// in its original order. A "--" ends wrapper parsing and is dropped.
func splitKnownFlags(fs *pflag.FlagSet, args []string) (own, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i+1:]...)
			break
		}

		flag := lookupFlag(fs, arg)
		if flag == nil {
			rest = append(rest, arg)
			continue
		}
		own = append(own, arg)
		if flag.NoOptDefVal == "" && !strings.Contains(arg, "=") && i+1 < len(args) {
			i++
			own = append(own, args[i])
		}
	}
	return own, rest
}

func lookupFlag(fs *pflag.FlagSet, arg string) *pflag.Flag {
	switch {
	case strings.HasPrefix(arg, "--") && len(arg) > 2:
		name, _, _ := strings.Cut(arg[2:], "=")
		return fs.Lookup(name)
	case len(arg) == 2 && arg[0] == '-' && arg[1] != '-':
		return fs.ShorthandLookup(arg[1:])
	}
	return nil
}
