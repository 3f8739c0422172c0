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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/accountcache/accountcache/cmd/utils"
	"github.com/accountcache/accountcache/core/accountcache"
	"github.com/accountcache/accountcache/core/types"
	"github.com/accountcache/accountcache/internal/flags"
	"github.com/accountcache/accountcache/log"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

var (
	dumpConfigCommand = &cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Export configuration values in a TOML format",
		ArgsUsage:   "<dumpfile (optional)>",
		Flags:       flags.Merge(configFlags, utils.CacheFlags),
		Description: `Export configuration values in TOML format (to stdout by default).`,
	}

	configFileFlag = &flags.PathFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.CacheCategory,
	}
	configFlags = []cli.Flag{configFileFlag}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type acacheConfig struct {
	Cache accountcache.Config
	Seed  []types.Account `toml:",omitempty"`
}

func loadConfig(file string, cfg *acacheConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// loadBaseConfig loads the acacheConfig based on the given command line
// parameters and config file.
func loadBaseConfig(ctx *cli.Context) (acacheConfig, error) {
	// Load defaults.
	cfg := acacheConfig{
		Cache: accountcache.Defaults,
	}
	// Load config file.
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	// Apply flags.
	utils.SetCacheConfig(ctx, &cfg.Cache)
	seed, err := utils.SeedAccounts(ctx)
	if err != nil {
		return cfg, err
	}
	cfg.Seed = append(cfg.Seed, seed...)
	return cfg, nil
}

// makeCache creates the account cache described by the configuration and
// preloads the seed accounts in order.
func makeCache(ctx *cli.Context) (*accountcache.AccountCache, acacheConfig, error) {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return nil, cfg, err
	}
	cache, err := accountcache.New(cfg.Cache)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to create account cache: %w", err)
	}
	for _, acc := range cfg.Seed {
		cache.PutAccount(acc)
	}
	if len(cfg.Seed) > 0 {
		log.Info("Seeded account cache", "accounts", len(cfg.Seed), "resident", cache.Len(), "capacity", cache.Capacity())
	}
	return cache, cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
