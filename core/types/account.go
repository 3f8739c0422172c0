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

// Package types contains the data types held by the account cache.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errAccountSyntax = errors.New("expect account in the form <id>:<balance>")

// Account is a balance record identified by a stable, unique ID.
// Accounts are handled by value: a copy handed out by the cache can never
// alter the cache's own record.
//
// Account 是由唯一 ID 标识的余额记录，按值传递。
type Account struct {
	ID      uint64 `json:"id"`
	Balance int64  `json:"balance"` // may be zero or negative 可以为零或负数
}

// NewAccount creates an account record.
func NewAccount(id uint64, balance int64) Account {
	return Account{ID: id, Balance: balance}
}

// String implements fmt.Stringer.
func (a Account) String() string {
	return fmt.Sprintf("%d:%d", a.ID, a.Balance)
}

// TerminalString implements log.TerminalStringer, formatting a string for console
// output during logging.
func (a Account) TerminalString() string {
	return fmt.Sprintf("#%d(%d)", a.ID, a.Balance)
}

// ParseAccount parses the <id>:<balance> notation used on the command line.
func ParseAccount(s string) (Account, error) {
	idPart, balPart, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Account{}, errAccountSyntax
	}
	id, err := strconv.ParseUint(strings.TrimSpace(idPart), 10, 64)
	if err != nil {
		return Account{}, fmt.Errorf("invalid account id %q: %w", idPart, err)
	}
	balance, err := strconv.ParseInt(strings.TrimSpace(balPart), 10, 64)
	if err != nil {
		return Account{}, fmt.Errorf("invalid balance %q: %w", balPart, err)
	}
	return NewAccount(id, balance), nil
}

// AccountsByBalance implements sort.Interface for []Account, ordering by balance
// descending. Equal balances are ordered by ascending ID so that rankings are
// deterministic.
// AccountsByBalance 按余额降序排序，余额相同时按 ID 升序。
type AccountsByBalance []Account

func (a AccountsByBalance) Len() int      { return len(a) }
func (a AccountsByBalance) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a AccountsByBalance) Less(i, j int) bool {
	if a[i].Balance != a[j].Balance {
		return a[i].Balance > a[j].Balance
	}
	return a[i].ID < a[j].ID
}
