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

package accountcache

import (
	"strings"
	"testing"

	"github.com/accountcache/accountcache/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := newTestCache(t, 2)
	c.PutAccount(types.NewAccount(1, 100))
	c.PutAccount(types.NewAccount(2, 200))
	c.PutAccount(types.NewAccount(3, 300))
	c.GetAccountByID(3)
	c.GetAccountByID(3)
	c.GetAccountByID(1)

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(c))

	expected := `
# HELP accountcache_capacity Maximum number of resident accounts
# TYPE accountcache_capacity gauge
accountcache_capacity 2
# HELP accountcache_entries Number of accounts currently resident
# TYPE accountcache_entries gauge
accountcache_entries 2
# HELP accountcache_evictions_total Total number of accounts evicted to make room for new ones
# TYPE accountcache_evictions_total counter
accountcache_evictions_total 1
# HELP accountcache_hits_total Total number of account lookups served from the cache
# TYPE accountcache_hits_total counter
accountcache_hits_total 2
# HELP accountcache_misses_total Total number of account lookups for non-resident accounts
# TYPE accountcache_misses_total counter
accountcache_misses_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))
}

func TestCollectorRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(newTestCache(t, 8)))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 5)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, name := range []string{
		"accountcache_hits_total",
		"accountcache_misses_total",
		"accountcache_evictions_total",
		"accountcache_entries",
		"accountcache_capacity",
	} {
		require.True(t, names[name], "missing %s", name)
	}
	require.Equal(t, 5, testutil.CollectAndCount(NewCollector(newTestCache(t, 1))))
}
