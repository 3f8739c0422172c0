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
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/accountcache/accountcache/cmd/utils"
	"github.com/accountcache/accountcache/common/mclock"
	"github.com/accountcache/accountcache/core/accountcache"
	"github.com/accountcache/accountcache/core/types"
	"github.com/accountcache/accountcache/internal/flags"
	"github.com/accountcache/accountcache/log"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// rankEvery is how often a reader issues a ranking instead of a lookup.
const rankEvery = 16

var stressCommand = &cli.Command{
	Action: stress,
	Name:   "stress",
	Usage:  "Hammer the cache with concurrent readers and writers",
	Flags: flags.Merge(configFlags, utils.CacheFlags, []cli.Flag{
		utils.StressReadersFlag,
		utils.StressWritersFlag,
		utils.StressOpsFlag,
		utils.StressKeysFlag,
		utils.StressRateFlag,
	}),
	Description: `
The stress command runs reader and writer goroutines against one cache.
Writers upsert random accounts, readers look up random IDs and every
so often rank the richest accounts. Afterwards the run is checked: the
capacity bound must hold, every resident account must have been written and
the hit counter must match the successful lookups. The cache metrics are
printed in the Prometheus text format.`,
}

func stress(ctx *cli.Context) error {
	var (
		readers = ctx.Int(utils.StressReadersFlag.Name)
		writers = ctx.Int(utils.StressWritersFlag.Name)
		ops     = ctx.Int(utils.StressOpsFlag.Name)
		keys    = ctx.Uint64(utils.StressKeysFlag.Name)
	)
	if readers < 0 || writers < 0 || ops < 0 {
		return errors.New("stress parameters must not be negative")
	}
	if keys == 0 {
		return fmt.Errorf("--%s must be positive", utils.StressKeysFlag.Name)
	}
	pace, err := utils.StressLimiter(ctx)
	if err != nil {
		return err
	}
	// Every goroutine is paced on its own.
	newLimiter := func() *rate.Limiter {
		return rate.NewLimiter(pace.Limit(), pace.Burst())
	}
	cache, cfg, err := makeCache(ctx)
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(accountcache.NewCollector(cache))

	written := mapset.NewSet[uint64]()
	for _, acc := range cfg.Seed {
		written.Add(acc.ID)
	}
	var (
		hits  atomic.Uint64
		start = mclock.Now()
	)
	g, gctx := errgroup.WithContext(ctx.Context)
	for w := 0; w < writers; w++ {
		rng := rand.New(rand.NewSource(int64(w) + 1))
		limiter := newLimiter()
		g.Go(func() error {
			for i := 0; i < ops; i++ {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				acc := types.NewAccount(rng.Uint64()%keys, rng.Int63n(2_000_000)-1_000_000)
				written.Add(acc.ID)
				cache.PutAccount(acc)
			}
			return nil
		})
	}
	for r := 0; r < readers; r++ {
		rng := rand.New(rand.NewSource(int64(writers+r) + 1))
		limiter := newLimiter()
		g.Go(func() error {
			for i := 0; i < ops; i++ {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				if i%rankEvery == rankEvery-1 {
					if err := checkRanking(cache.Top3AccountsByBalance()); err != nil {
						return err
					}
					continue
				}
				if _, ok := cache.GetAccountByID(rng.Uint64() % keys); ok {
					hits.Add(1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := mclock.Now().Sub(start)

	if err := verifyStress(cache, written, hits.Load()); err != nil {
		return err
	}
	log.Info("Stress run complete", "readers", readers, "writers", writers, "ops", ops,
		"keys", keys, "elapsed", elapsed)

	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(ctx.App.Writer, mf); err != nil {
			return err
		}
	}
	return nil
}

// checkRanking validates the shape of a top-three ranking.
func checkRanking(top []types.Account) error {
	if len(top) > 3 {
		return fmt.Errorf("ranking returned %d accounts", len(top))
	}
	if !sort.IsSorted(types.AccountsByBalance(top)) {
		return fmt.Errorf("ranking out of order: %v", top)
	}
	return nil
}

// verifyStress checks the cache state left behind by a stress run.
func verifyStress(cache *accountcache.AccountCache, written mapset.Set[uint64], hits uint64) error {
	stats := cache.Stats()
	if stats.Entries > stats.Capacity {
		return fmt.Errorf("capacity exceeded: %d resident, capacity %d", stats.Entries, stats.Capacity)
	}
	if stats.Hits != hits {
		return fmt.Errorf("hit counter mismatch: cache reports %d, observed %d", stats.Hits, hits)
	}
	resident := mapset.NewSet[uint64]()
	for _, acc := range cache.TopAccountsByBalance(stats.Entries) {
		resident.Add(acc.ID)
	}
	if !resident.IsSubset(written) {
		return fmt.Errorf("resident accounts never written: %v", resident.Difference(written).ToSlice())
	}
	return nil
}
