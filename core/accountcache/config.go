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
	"errors"
	"fmt"
)

// ErrInvalidCapacity is returned when a cache is configured without room for
// at least one account.
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// Op names a critical section of the cache.
type Op string

const (
	OpGetAccount  Op = "getAccountById"
	OpPutAccount  Op = "putAccount"
	OpTopAccounts Op = "topAccountsByBalance"
	OpHitCount    Op = "getAccountByIdHitCount"
	OpStats       Op = "stats"
)

// Exclusive reports whether the section runs under the exclusive lock.
func (op Op) Exclusive() bool {
	return op == OpPutAccount
}

// SectionHook is invoked inside every critical section, right after the lock
// has been taken. It exists for instrumentation: tests use it to stretch or
// block a section and observe how other callers are ordered around it.
type SectionHook func(op Op)

// Defaults contains the default settings for an account cache.
var Defaults = Config{
	Capacity: 1024,
}

// Config contains the settings of an account cache.
type Config struct {
	// Capacity is the maximum number of resident accounts before the least
	// recently used one is evicted.
	Capacity int

	// SectionHook, if set, runs inside each critical section.
	SectionHook SectionHook `toml:"-"`
}

// Validate checks the configuration for values the cache cannot work with.
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, c.Capacity)
	}
	return nil
}
