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
	"io"
	"strconv"

	"github.com/accountcache/accountcache/cmd/utils"
	"github.com/accountcache/accountcache/core/accountcache"
	"github.com/accountcache/accountcache/core/types"
	"github.com/accountcache/accountcache/internal/flags"
	"github.com/urfave/cli/v2"
)

var (
	topCommand = &cli.Command{
		Action:    rankAccounts,
		Name:      "top",
		Usage:     "Rank the resident accounts by balance",
		ArgsUsage: "",
		Flags:     flags.Merge(configFlags, utils.CacheFlags, []cli.Flag{utils.TopCountFlag}),
		Description: `
The top command preloads the configured accounts and prints the richest
resident ones, highest balance first. Equal balances are listed by ascending
account ID. Ranking never refreshes an account or counts as a hit.`,
	}
	getCommand = &cli.Command{
		Action:    lookupAccounts,
		Name:      "get",
		Usage:     "Look up accounts by ID",
		ArgsUsage: "<id> [<id>...]",
		Flags:     flags.Merge(configFlags, utils.CacheFlags),
		Description: `
The get command preloads the configured accounts and then looks up every
given ID in order. Each successful lookup refreshes the account and counts
as a hit.`,
	}
)

func rankAccounts(ctx *cli.Context) error {
	cache, _, err := makeCache(ctx)
	if err != nil {
		return err
	}
	printRanking(ctx.App.Writer, cache.TopAccountsByBalance(ctx.Int(utils.TopCountFlag.Name)))
	return nil
}

func lookupAccounts(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return fmt.Errorf("this command requires at least one argument")
	}
	ids := make([]uint64, 0, ctx.NArg())
	for _, arg := range ctx.Args().Slice() {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid account id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	cache, _, err := makeCache(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if acc, ok := cache.GetAccountByID(id); ok {
			fmt.Fprintf(ctx.App.Writer, "%d\t%d\n", acc.ID, acc.Balance)
		} else {
			fmt.Fprintf(ctx.App.Writer, "%d\tabsent\n", id)
		}
	}
	fmt.Fprintf(ctx.App.Writer, "hits\t%d\n", cache.GetAccountByIDHitCount())
	return nil
}

func printRanking(w io.Writer, accounts []types.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(w, "no resident accounts")
		return
	}
	for i, acc := range accounts {
		fmt.Fprintf(w, "%d.\t%d\t%d\n", i+1, acc.ID, acc.Balance)
	}
}

func printStats(w io.Writer, stats accountcache.Stats) {
	fmt.Fprintf(w, "entries=%d capacity=%d hits=%d misses=%d evictions=%d\n",
		stats.Entries, stats.Capacity, stats.Hits, stats.Misses, stats.Evictions)
}
