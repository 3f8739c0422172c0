// Copyright 2024 The accountcache Authors
// This file is part of accountcache.
//
// accountcache is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// accountcache is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with accountcache. If not, see <http://www.gnu.org/licenses/>.

// acache is a command-line front end for the bounded account cache.
package main

import (
	"fmt"
	"os"

	"github.com/accountcache/accountcache/cmd/utils"
	"github.com/accountcache/accountcache/internal/debug"
	"github.com/accountcache/accountcache/internal/flags"
	"github.com/urfave/cli/v2"
)

const (
	clientIdentifier = "acache" // Client identifier used in version output
)

var app = flags.NewApp("the account cache command line interface")

func init() {
	// Initialize the CLI app
	app.Action = acache
	app.Commands = []*cli.Command{
		// See cachecmd.go:
		topCommand,
		getCommand,
		// See stresscmd.go:
		stressCommand,
		// See config.go:
		dumpConfigCommand,
		// See misccmd.go:
		versionCommand,
	}
	app.Flags = flags.Merge(
		configFlags,
		utils.CacheFlags,
		debug.Flags,
	)

	flags.MigrateGlobalFlags(app)

	app.Before = func(ctx *cli.Context) error {
		if err := flags.CheckEnvVars(ctx, app.Flags, "ACACHE"); err != nil {
			return err
		}
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		utils.Fatalf("%v", err)
	}
}

// acache is the main entry point into the system if no special subcommand is
// run. It builds a cache from the configuration, preloads the seed accounts
// and reports the richest accounts along with the cache counters.
func acache(ctx *cli.Context) error {
	if args := ctx.Args().Slice(); len(args) > 0 {
		return fmt.Errorf("invalid command: %s", args[0])
	}
	cache, _, err := makeCache(ctx)
	if err != nil {
		return err
	}
	printRanking(ctx.App.Writer, cache.Top3AccountsByBalance())
	printStats(ctx.App.Writer, cache.Stats())
	return nil
}
