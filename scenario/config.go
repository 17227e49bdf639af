// Copyright 2017 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// Package scenario holds the demo suites run by cmd/stmdemo (the stm
// package's own tests cover the same cases separately): the canonical orElse/retry cases from the
// runtime's reference semantics, plus a TOML-configurable bank transfer
// scenario that drives stm.Account.
package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
)

// tomlSettings mirrors the node configuration loader: TOML keys are taken
// verbatim as Go field names, and an unrecognized key is a hard error
// rather than silently ignored.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// BankConfig seeds the bank transfer scenario: a named set of accounts with
// starting balances (decimal strings, parsed into uint256.Int; the account
// cells hold int64, so values beyond int64 range are not representable), a
// spender and a payee, and the amount the spender tries to withdraw.
type BankConfig struct {
	Accounts map[string]string
	Spender  string
	Payee    string
	Amount   string
	Deposits []DepositConfig `toml:",omitempty"`
}

// DepositConfig describes one deposit a background task makes into Spender
// before it yields. A bank scenario whose deposits never cover Amount will
// park the spender task forever waiting for funds that never arrive; nothing
// checks for that case before the scenario runs.
type DepositConfig struct {
	Amount string
}

// Config is the top-level TOML document cmd/stmdemo loads.
type Config struct {
	Bank    BankConfig
	Verbose bool `toml:",omitempty"`
}

// DefaultConfig returns the bank scenario used when no config file is
// given: a spender with 8 units, a payee with 13, trying to withdraw 10,
// topped up by two deposits of 5; the withdrawal goes through once the
// first deposit lands.
func DefaultConfig() Config {
	return Config{
		Bank: BankConfig{
			Accounts: map[string]string{"spender": "8", "payee": "13"},
			Spender:  "spender",
			Payee:    "payee",
			Amount:   "10",
			Deposits: []DepositConfig{{Amount: "5"}, {Amount: "5"}},
		},
	}
}

// LoadConfig reads and decodes a TOML scenario file.
func LoadConfig(file string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(file)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return cfg, err
}

// DumpConfig renders cfg back to TOML, the same round-trip dumpconfig
// exercises for node configuration.
func DumpConfig(cfg Config, w io.Writer) error {
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
