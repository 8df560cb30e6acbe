/*
Copyright © 2025 the saltchem authors.
This file is part of saltchem.

saltchem is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

saltchem is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with saltchem.  If not, see <http://www.gnu.org/licenses/>.
*/

package thermochimica

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ondrejch/saltchem"
)

// fakeSolver writes a shell script that behaves like the solver: it
// prints progress and writes output to outPath with the temperature read
// from the deck. Decks containing uranium fail with an error message.
func fakeSolver(t *testing.T, dir, outPath string) string {
	if runtime.GOOS == "windows" {
		t.Skip("the fake solver is a shell script")
	}
	script := fmt.Sprintf(`#!/bin/sh
if grep -q "mass(92)" "$1"; then
  echo "Error: uranium is not allowed in this test"
  exit 0
fi
T=$(grep "^temperature  " "$1" | sed 's/.*= *//')
echo "Thermochimica calculation for $1"
cat > %s <<END
{"1": {"temperature": $T, "pressure": 1, "integral Gibbs energy": -1000,
  "solution phases": {"MSFL": {"moles": 1, "cations": {"Li[+]": {"mole fraction": 1}}}},
  "pure condensed phases": {}}}
END
`, outPath)
	path := filepath.Join(dir, "InputScriptMode")
	if err := ioutil.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

type warnCounter struct {
	mu sync.Mutex
	n  int
}

func (w *warnCounter) Levels() []logrus.Level { return []logrus.Level{logrus.WarnLevel} }
func (w *warnCounter) Fire(*logrus.Entry) error {
	w.mu.Lock()
	w.n++
	w.mu.Unlock()
	return nil
}

func TestRunAllAndLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "saltchem_run")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	c := testConfig()
	c.SolverOutput = filepath.Join(dir, "thermoout.json")
	c.Binary = fakeSolver(t, dir, c.SolverOutput)
	c.Temperature = "950"

	runDir := filepath.Join(dir, "run")
	tbl := saltchem.NewTable()
	for ts := saltchem.Timestep(0); ts < 4; ts++ {
		tbl.Vector[ts] = map[string]saltchem.VectorEntry{"li": {MolePercent: 50}, "f": {MolePercent: 50}}
	}
	tbl.Vector[3]["u"] = saltchem.VectorEntry{MolePercent: 1}
	decks, err := c.WriteDecks(runDir, tbl, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	r := NewRunner(c)
	r.Log = quietLogger()
	r.Wait = 2 * time.Second
	errs := r.RunAll(context.Background(), decks, 3)
	if len(errs) != 1 {
		t.Fatalf("errors: %v", errs)
	}
	if _, ok := errs[3].(*SolverError); !ok {
		t.Errorf("timestep 3 error: %v", errs[3])
	}
	for ts := saltchem.Timestep(0); ts < 3; ts++ {
		b, err := ioutil.ReadFile(strings.TrimSuffix(decks[ts], ".ti") + ".log")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(b), "STDOUT:\nThermochimica calculation") {
			t.Errorf("log: %s", b)
		}
	}

	l := NewLoader(c)
	l.Log = quietLogger()
	cond, err := l.Load(context.Background(), runDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(cond) != 4 {
		t.Errorf("timesteps: %v", saltchem.SortedTimesteps(cond))
	}
	states := cond.States()
	if len(states) != 3 {
		t.Errorf("loaded states: %d", len(states))
	}
	for ts, s := range states {
		if s.Temperature != 950 {
			t.Errorf("timestep %v: temperature %g", ts, s.Temperature)
		}
	}
	if s := cond[3].States; len(s) != 0 {
		t.Errorf("failed timestep should be empty: %v", s)
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := &Runner{Binary: "/nonexistent/InputScriptMode", Log: quietLogger()}
	if _, err := r.Run(context.Background(), "deck.ti"); err == nil {
		t.Error("expected an error")
	}
}

func TestRunAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{Binary: "/nonexistent/InputScriptMode", Log: quietLogger()}
	errs := r.RunAll(ctx, map[saltchem.Timestep]string{1: "a.ti", 2: "b.ti"}, 0)
	if len(errs) != 2 || errs[1] != context.Canceled {
		t.Errorf("errors: %v", errs)
	}
}

func TestLoadMalformed(t *testing.T) {
	dir, err := ioutil.TempDir("", "saltchem_load")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	write := func(name, content string) {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("timestep_1/other.json", `{"1": {"temperature": 800}}`)
	write("timestep_3/ThEIRNE_Cycle_t3.json", `{"1": `)
	write("timestep_4/ThEIRNE_Cycle_t4.log", "")
	write("notes/x.json", `{}`)

	l := NewLoader(testConfig())
	log, warn := quietLogger(), new(warnCounter)
	log.Hooks.Add(warn)
	l.Log = log
	cond, err := l.Load(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(cond) != 3 {
		t.Errorf("timesteps: %v", saltchem.SortedTimesteps(cond))
	}
	if s := cond.States(); len(s) != 1 || s[1].Temperature != 800 {
		t.Errorf("states: %v", s)
	}
	// Malformed output, missing output and the gap at timestep 2.
	if warn.n != 3 {
		t.Errorf("warnings: %d", warn.n)
	}
	if _, err := l.Load(context.Background(), filepath.Join(dir, "none")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestRunIgnoresOldDeckOutput(t *testing.T) {
	dir, err := ioutil.TempDir("", "saltchem_stale")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// The solver writes its output somewhere other than next to the deck,
	// so only output left from an earlier run could satisfy the runner.
	c := testConfig()
	c.Binary = fakeSolver(t, dir, filepath.Join(dir, "elsewhere.json"))
	deck, err := c.WriteCompositionDeck(dir, "flibe", saltchem.Composition{"li": 2, "f": 2})
	if err != nil {
		t.Fatal(err)
	}
	old := OutputPath(deck)
	if err := ioutil.WriteFile(old, []byte(`{"1": {"temperature": 1}}`), 0644); err != nil {
		t.Fatal(err)
	}

	r := &Runner{Binary: c.Binary, Wait: 100 * time.Millisecond, Log: quietLogger()}
	if _, err := r.Run(context.Background(), deck); err == nil {
		t.Error("old output should not be taken as the result of this run")
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("old output should be removed: %v", err)
	}
}
