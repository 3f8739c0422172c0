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

import "github.com/urfave/cli/v2"

const (
	// CacheCategory groups the flags that shape the account cache.
	CacheCategory = "ACCOUNT CACHE"
	// SeedCategory groups the flags that preload accounts.
	SeedCategory = "ACCOUNT SEEDING"
	// StressCategory groups the flags of the concurrent workload generator.
	StressCategory = "STRESS TESTING"
	// LoggingCategory groups the flags that configure log output.
	LoggingCategory = "LOGGING AND DEBUGGING"
	// MiscCategory groups everything else.
	MiscCategory = "MISC"
)

func init() {
	cli.HelpFlag.(*cli.BoolFlag).Category = MiscCategory
	cli.VersionFlag.(*cli.BoolFlag).Category = MiscCategory
}
