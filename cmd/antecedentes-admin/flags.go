// ABOUTME: Subcommand flag parsing for --flag value, --flag=value and boolean switches
// ABOUTME: Positional arguments are kept in order; unknown flags are rejected

package main

import (
	"fmt"
	"strconv"
	"strings"
)

type flags struct {
	values map[string]string
	bools  map[string]bool
	args   []string
}

// parseFlags splits args into flag values and positionals. valued flags take
// a value; switches do not.
func parseFlags(args []string, valued, switches []string) (*flags, error) {
	f := &flags{values: map[string]string{}, bools: map[string]bool{}}

	takesValue := make(map[string]bool, len(valued)+len(switches))
	for _, n := range valued {
		takesValue[n] = true
	}
	for _, n := range switches {
		takesValue[n] = false
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") || arg == "--" {
			if arg == "--" {
				f.args = append(f.args, args[i+1:]...)
				break
			}
			f.args = append(f.args, arg)
			continue
		}

		name, value, inline := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		needsValue, known := takesValue[name]
		if !known {
			return nil, fmt.Errorf("unknown flag: --%s", name)
		}
		if !needsValue {
			if inline {
				return nil, fmt.Errorf("--%s does not take a value", name)
			}
			f.bools[name] = true
			continue
		}
		if !inline {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--%s requires a value", name)
			}
			value = args[i+1]
			i++
		}
		f.values[name] = value
	}
	return f, nil
}

// get returns the value of a valued flag.
func (f *flags) get(name string) string { return f.values[name] }

// has reports whether a valued flag was given, even empty.
func (f *flags) has(name string) bool {
	_, ok := f.values[name]
	return ok
}

func (f *flags) bool(name string) bool { return f.bools[name] }

// id parses positional i as a positive entity id.
func (f *flags) id(i int, what string) (int64, error) {
	if i >= len(f.args) {
		return 0, fmt.Errorf("missing %s", what)
	}
	return parseID(f.args[i], what)
}

// ids parses every positional from i on as ids.
func (f *flags) ids(from int, what string) ([]int64, error) {
	if from >= len(f.args) {
		return nil, fmt.Errorf("missing %s", what)
	}
	out := make([]int64, 0, len(f.args)-from)
	for _, s := range f.args[from:] {
		id, err := parseID(s, what)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// page returns --page, defaulting to 1.
func (f *flags) page() (int, error) {
	s := f.get("page")
	if s == "" {
		return 1, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 {
		return 0, fmt.Errorf("invalid page: %s", s)
	}
	return p, nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %s", what, s)
	}
	return id, nil
}

// stripVerbose removes -v/--verbose wherever it appears before the command.
func stripVerbose(args []string) ([]string, bool) {
	verbose := false
	for len(args) > 0 && (args[0] == "-v" || args[0] == "--verbose") {
		verbose = true
		args = args[1:]
	}
	return args, verbose
}
