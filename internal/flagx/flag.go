// Package flagx lets several packages read their own flags from os.Args
// without one flag.Parse call rejecting flags it does not know.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs keeps only the allowed flags from args, each with its value.
// A value is either attached ("-c=conf.json") or the next argument when
// that does not start with '-'. A flag written with two dashes matches its
// single-dash name.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}
	isAllowed := func(name string) bool {
		if _, ok := allowed[name]; ok {
			return true
		}
		_, ok := allowed[strings.TrimPrefix(name, "-")]
		return ok && strings.HasPrefix(name, "--")
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if name, _, ok := strings.Cut(arg, "="); ok {
			if isAllowed(name) {
				filtered = append(filtered, arg)
			}
			continue
		}

		if !isAllowed(arg) {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// PathFlag returns the value of the string flag -short / -long from args,
// ignoring everything else. The last occurrence wins; absent is "".
func PathFlag(args []string, short, long string) string {
	var v string

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&v, long, "", "")
	fs.StringVar(&v, short, "", "")
	_ = fs.Parse(FilterArgs(args, []string{"-" + short, "-" + long}))

	return v
}

// JsonConfigFlags returns the config file given via -c or -config.
func JsonConfigFlags() string {
	return PathFlag(os.Args[1:], "c", "config")
}

// EnvFileFlag returns the dotenv file given via -e or -env.
func EnvFileFlag() string {
	return PathFlag(os.Args[1:], "e", "env")
}
