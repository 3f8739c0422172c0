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

package mclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAbsTime(t *testing.T) {
	var base AbsTime = 1000
	assert.Equal(t, AbsTime(1000+int64(time.Second)), base.Add(time.Second))
	assert.Equal(t, time.Second, base.Add(time.Second).Sub(base))
}

func TestSystemMonotonic(t *testing.T) {
	var clock Clock = System{}
	start := clock.Now()
	clock.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, clock.Now().Sub(start), time.Millisecond)
}

func TestSimulated(t *testing.T) {
	var clock Simulated
	clock.Sleep(2 * time.Second)
	clock.Run(time.Second)
	clock.Sleep(time.Millisecond)

	assert.Equal(t, AbsTime(3*time.Second+time.Millisecond), clock.Now())
	assert.Equal(t, []time.Duration{2 * time.Second, time.Millisecond}, clock.Sleeps())
}
