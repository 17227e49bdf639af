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

package main

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/stmrun/stm/scenario"
	"github.com/stmrun/stm/stmlog"
)

// runConsole drops into an interactive "run <suite>" / "status" / "history" /
// "exit" prompt, the same shape as the reference client's JavaScript console
// minus the JS interpreter: there is no scripting language here, just a small,
// fixed command set over the scenario suites.
func runConsole(cfg scenario.Config) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	run := mapset.NewSet()
	fmt.Println("stmdemo console. commands: run orelse | run retry | run bank | status | history | exit")

	for {
		input, err := line.Prompt("stm> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == liner.ErrNotTerminalOutput {
				return nil
			}
			return err
		}
		line.AppendHistory(input)

		cmd := strings.TrimSpace(input)
		switch {
		case cmd == "exit" || cmd == "quit":
			return nil
		case cmd == "status":
			printStatus(run)
		case cmd == "history":
			printHistory()
		case strings.HasPrefix(cmd, "run "):
			name := strings.TrimSpace(strings.TrimPrefix(cmd, "run "))
			if !runNamedSuite(cfg, name, run) {
				fmt.Printf("unknown suite %q\n", name)
			}
		case cmd == "":
			// ignore blank lines
		default:
			fmt.Printf("unrecognized command %q\n", cmd)
		}
	}
}

func runNamedSuite(cfg scenario.Config, name string, run mapset.Set) bool {
	var cases []scenario.Case
	switch name {
	case "orelse", "orElse":
		cases = scenario.OrElseSuite()
	case "retry":
		cases = scenario.RetrySuite()
	case "bank":
		cases = scenario.BankSuite(cfg.Bank)
	default:
		return false
	}

	for _, c := range cases {
		result := c.Run()
		run.Add(name)
		if result.Passed {
			color.Green("  PASS  %-45s %s", result.Name, result.Detail)
		} else {
			color.Red("  FAIL  %-45s %s", result.Name, result.Detail)
		}
	}
	return true
}

func printHistory() {
	lines := stmlog.History()
	if len(lines) == 0 {
		fmt.Println("no log records yet this session (run --verbose for yield/fork/retry detail)")
		return
	}
	for _, l := range lines {
		fmt.Println(l)
	}
}

func printStatus(run mapset.Set) {
	if run.Cardinality() == 0 {
		fmt.Println("no suites run yet this session")
		return
	}
	fmt.Print("suites run this session: ")
	first := true
	for s := range run.Iter() {
		if !first {
			fmt.Print(", ")
		}
		fmt.Print(s)
		first = false
	}
	fmt.Println()
}
