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

// Package utils contains internal helper functions for accountcache commands.
package utils

import (
	"fmt"
	"time"

	"github.com/accountcache/accountcache/common/mclock"
	"github.com/accountcache/accountcache/core/accountcache"
	"github.com/accountcache/accountcache/core/types"
	"github.com/accountcache/accountcache/internal/flags"
	"github.com/accountcache/accountcache/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// Cache settings
	CapacityFlag = &cli.IntFlag{
		Name:     "cache.capacity",
		Usage:    "Maximum number of resident accounts before the least recently used one is evicted",
		Value:    accountcache.Defaults.Capacity,
		Category: flags.CacheCategory,
	}
	HoldTimeFlag = &cli.DurationFlag{
		Name:     "debug.holdtime",
		Usage:    "Stretch every cache critical section by the given duration (e.g. 500ms), to make lock ordering observable",
		Category: flags.CacheCategory,
	}

	// Seeding
	AccountFlag = &cli.StringSliceFlag{
		Name:     "account",
		Usage:    "Account to preload as <id>:<balance>, may be repeated",
		Category: flags.SeedCategory,
	}

	// Queries
	TopCountFlag = &cli.IntFlag{
		Name:     "top.count",
		Usage:    "Number of accounts to rank",
		Value:    3,
		Category: flags.CacheCategory,
	}

	// Stress testing
	StressReadersFlag = &cli.IntFlag{
		Name:     "stress.readers",
		Usage:    "Number of concurrent reader goroutines",
		Value:    8,
		Category: flags.StressCategory,
	}
	StressWritersFlag = &cli.IntFlag{
		Name:     "stress.writers",
		Usage:    "Number of concurrent writer goroutines",
		Value:    2,
		Category: flags.StressCategory,
	}
	StressOpsFlag = &cli.IntFlag{
		Name:     "stress.ops",
		Usage:    "Number of operations issued by every goroutine",
		Value:    10000,
		Category: flags.StressCategory,
	}
	StressKeysFlag = &cli.Uint64Flag{
		Name:     "stress.keys",
		Usage:    "Size of the account ID space the workload draws from",
		Value:    4096,
		Category: flags.StressCategory,
	}
	StressRateFlag = &cli.Float64Flag{
		Name:     "stress.rate",
		Usage:    "Maximum operations per second issued by every goroutine (0 = unlimited)",
		Category: flags.StressCategory,
	}
)

// CacheFlags are the flags shared by every command that builds a cache.
var CacheFlags = []cli.Flag{
	CapacityFlag,
	HoldTimeFlag,
	AccountFlag,
}

// SetCacheConfig applies cache related command line flags to the config.
func SetCacheConfig(ctx *cli.Context, cfg *accountcache.Config) {
	if ctx.IsSet(CapacityFlag.Name) {
		cfg.Capacity = ctx.Int(CapacityFlag.Name)
	}
	if hold := ctx.Duration(HoldTimeFlag.Name); hold > 0 {
		log.Warn("Stretching cache critical sections", "holdtime", hold)
		cfg.SectionHook = HoldHook(mclock.System{}, hold)
	}
}

// HoldHook returns a section hook that keeps every critical section busy for
// the given duration.
func HoldHook(clock mclock.Clock, hold time.Duration) accountcache.SectionHook {
	return func(op accountcache.Op) {
		log.Debug("Holding cache section", "op", op, "exclusive", op.Exclusive(), "holdtime", hold)
		clock.Sleep(hold)
	}
}

// StressLimiter returns the per-goroutine pacing limiter configured with
// --stress.rate.
func StressLimiter(ctx *cli.Context) (*rate.Limiter, error) {
	r := ctx.Float64(StressRateFlag.Name)
	switch {
	case r < 0:
		return nil, fmt.Errorf("--%s must not be negative", StressRateFlag.Name)
	case r == 0:
		return rate.NewLimiter(rate.Inf, 0), nil
	default:
		return rate.NewLimiter(rate.Limit(r), 1), nil
	}
}

// SeedAccounts parses the accounts given with --account.
func SeedAccounts(ctx *cli.Context) ([]types.Account, error) {
	var accounts []types.Account
	for _, s := range ctx.StringSlice(AccountFlag.Name) {
		acc, err := types.ParseAccount(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q: %w", AccountFlag.Name, s, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}
