// Copyright 2024 The accountcache Authors
// This file is part of the accountcache library.
//
// The accountcache library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The accountcache library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the accountcache library. If not, see <http://www.gnu.org/licenses/>.

package flags

import (
	"fmt"
	"os"
	"strings"

	"github.com/accountcache/accountcache/internal/version"
	"github.com/urfave/cli/v2"
)

// NewApp creates an app with sane defaults.
func NewApp(usage string) *cli.App {
	git, _ := version.VCS()
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = version.WithCommit(git.Commit, git.Date)
	app.Usage = usage
	app.Copyright = "Copyright 2024 The accountcache Authors"
	return app
}

// Merge merges the given flag slices.
func Merge(groups ...[]cli.Flag) []cli.Flag {
	var ret []cli.Flag
	for _, group := range groups {
		ret = append(ret, group...)
	}
	return ret
}

// MigrateGlobalFlags makes flags given before a subcommand visible to it.
//
// urfave/cli reads a flag from the innermost context that defines it, so a
// command repeating a global flag would only ever see its own default. Every
// command action is wrapped to copy values set on a parent context (on the
// command line or through CheckEnvVars) into the command's context first.
// Values given to the command itself are left alone.
func MigrateGlobalFlags(app *cli.App) {
	var iterate func(cs []*cli.Command, fn func(*cli.Command))
	iterate = func(cs []*cli.Command, fn func(*cli.Command)) {
		for _, cmd := range cs {
			fn(cmd)
			iterate(cmd.Subcommands, fn)
		}
	}
	iterate(app.Commands, func(cmd *cli.Command) {
		if cmd.Action == nil {
			return
		}
		action := cmd.Action
		cmd.Action = func(ctx *cli.Context) error {
			doMigrateFlags(ctx)
			return action(ctx)
		}
	})
}

func doMigrateFlags(ctx *cli.Context) {
	local := make(map[string]bool)
	for _, name := range ctx.LocalFlagNames() {
		local[name] = true
	}
	for _, f := range ctx.Command.Flags {
		name := f.Names()[0]
		if local[name] {
			continue
		}
		for _, parent := range ctx.Lineage()[1:] {
			if !parent.IsSet(name) {
				continue
			}
			// Slice values are re-joined so the slice flag splits them
			// back into the same elements.
			if values := parent.StringSlice(name); len(values) > 0 {
				ctx.Set(name, strings.Join(values, ","))
			} else {
				ctx.Set(name, parent.String(name))
			}
			break
		}
	}
}

// CheckEnvVars iterates over all the environment variables and checks if any of
// them look like a CLI flag but are not consumed. Each flag can be set through
// an environment variable named <prefix>_<FLAG_NAME>, with dots and dashes
// replaced by underscores.
func CheckEnvVars(ctx *cli.Context, flags []cli.Flag, prefix string) error {
	known := make(map[string]string)
	for _, f := range flags {
		for _, name := range f.Names() {
			known[envName(prefix, name)] = name
		}
	}
	keyvals := os.Environ()
	for _, keyval := range keyvals {
		key, value, _ := strings.Cut(keyval, "=")
		if !strings.HasPrefix(key, prefix+"_") {
			continue
		}
		name, ok := known[key]
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown environment variable %s, ignoring\n", key)
			continue
		}
		if ctx.IsSet(name) {
			continue
		}
		if err := ctx.Set(name, value); err != nil {
			return fmt.Errorf("environment variable %s: %w", key, err)
		}
	}
	return nil
}

func envName(prefix, flag string) string {
	name := strings.ToUpper(flag)
	name = strings.NewReplacer(".", "_", "-", "_").Replace(name)
	return prefix + "_" + name
}
