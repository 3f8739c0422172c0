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
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accountcache"

var (
	hitsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "hits_total"),
		"Total number of account lookups served from the cache", nil, nil)
	missesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "misses_total"),
		"Total number of account lookups for non-resident accounts", nil, nil)
	evictionsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "evictions_total"),
		"Total number of accounts evicted to make room for new ones", nil, nil)
	entriesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "entries"),
		"Number of accounts currently resident", nil, nil)
	capacityDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "capacity"),
		"Maximum number of resident accounts", nil, nil)
)

// Collector exports the counters of an account cache to Prometheus. Values are
// read from a single Stats snapshot on every scrape.
type Collector struct {
	cache *AccountCache
}

// NewCollector creates a collector reporting on the given cache.
func NewCollector(cache *AccountCache) *Collector {
	return &Collector{cache: cache}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- hitsDesc
	ch <- missesDesc
	ch <- evictionsDesc
	ch <- entriesDesc
	ch <- capacityDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.cache.Stats()

	ch <- prometheus.MustNewConstMetric(hitsDesc, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(missesDesc, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(evictionsDesc, prometheus.CounterValue, float64(stats.Evictions))
	ch <- prometheus.MustNewConstMetric(entriesDesc, prometheus.GaugeValue, float64(stats.Entries))
	ch <- prometheus.MustNewConstMetric(capacityDesc, prometheus.GaugeValue, float64(stats.Capacity))
}
