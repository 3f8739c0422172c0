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

package types

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccount(t *testing.T) {
	tests := []struct {
		input string
		want  Account
		fail  bool
	}{
		{input: "1:1000", want: NewAccount(1, 1000)},
		{input: " 7 : -25 ", want: NewAccount(7, -25)},
		{input: "0:0", want: NewAccount(0, 0)},
		{input: "1000", fail: true},
		{input: "-1:5", fail: true},
		{input: "1:abc", fail: true},
		{input: ":", fail: true},
	}
	for _, tt := range tests {
		have, err := ParseAccount(tt.input)
		if tt.fail {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, have, "input %q", tt.input)
	}
}

func TestAccountsByBalance(t *testing.T) {
	accounts := []Account{
		NewAccount(1, 1000),
		NewAccount(2, -50),
		NewAccount(3, 5000),
		NewAccount(4, 1000),
		NewAccount(5, 0),
	}
	sort.Sort(AccountsByBalance(accounts))

	want := []Account{
		NewAccount(3, 5000),
		NewAccount(1, 1000),
		NewAccount(4, 1000),
		NewAccount(5, 0),
		NewAccount(2, -50),
	}
	assert.Equal(t, want, accounts)
}

func TestAccountString(t *testing.T) {
	a := NewAccount(42, -7)
	assert.Equal(t, "42:-7", a.String())
	assert.Equal(t, "#42(-7)", a.TerminalString())

	parsed, err := ParseAccount(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}
