// Package flagx contains small helpers for parsing a subset of the
// command line without tripping over flags owned by other packages.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns only the arguments that belong to the allowed flags,
// keeping their values.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -d dsn
//  2. Flag and value combined with '=':      --dsn=postgres://...
//
// args is usually os.Args[1:]; allowed lists the recognized flag names
// including the leading dashes (e.g. []string{"-d", "--dsn"}).
func FilterArgs(args []string, allowed []string) []string {
	keep := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		keep[name] = struct{}{}
	}

	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "-flag=value" form: keep the whole token when the name matches.
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := keep[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		// "-flag value" form: keep the flag and, when the next token does
		// not look like another flag, its value too.
		if _, ok := keep[arg]; ok {
			out = append(out, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				out = append(out, args[i+1])
				i++
			}
		}
	}

	return out
}

// EnvFileFlag extracts the path given via -env or -envfile, if any.
// Only these two flags are inspected; everything else is ignored so the
// lookup is safe to run before the main flag set is defined.
func EnvFileFlag() string {
	var path string

	args := FilterArgs(os.Args[1:], []string{"-env", "-envfile"})

	fs := flag.NewFlagSet("envfile", flag.ContinueOnError)
	fs.StringVar(&path, "envfile", "", "path to a .env file")
	fs.StringVar(&path, "env", "", "path to a .env file (short)")
	_ = fs.Parse(args)

	return path
}
