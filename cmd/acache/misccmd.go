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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/accountcache/accountcache/internal/version"
	"github.com/urfave/cli/v2"
)

var versionCommand = &cli.Command{
	Action:    printVersion,
	Name:      "version",
	Usage:     "Print version numbers",
	ArgsUsage: " ",
	Description: `
The output of this command is supposed to be machine-readable.
`,
}

func printVersion(ctx *cli.Context) error {
	git, _ := version.VCS()
	vsn, _ := version.Info()
	arch, goos, goVersion := version.Platform()

	w := ctx.App.Writer
	fmt.Fprintln(w, strings.ToUpper(clientIdentifier[:1])+clientIdentifier[1:])
	fmt.Fprintln(w, "Version:", version.WithMeta)
	if git.Commit != "" {
		fmt.Fprintln(w, "Git Commit:", git.Commit)
	}
	if git.Date != "" {
		fmt.Fprintln(w, "Git Commit Date:", git.Date)
	}
	if vsn != "" {
		fmt.Fprintln(w, "Build:", vsn)
	}
	fmt.Fprintln(w, "Architecture:", arch)
	fmt.Fprintln(w, "Go Version:", goVersion)
	fmt.Fprintln(w, "Operating System:", goos)
	fmt.Fprintf(w, "GOPATH=%s\n", os.Getenv("GOPATH"))
	return nil
}
