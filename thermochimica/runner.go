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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"

	"github.com/ondrejch/saltchem"
)

// DefaultWait is how long a Runner waits for solver output to appear
// after the solver exits.
const DefaultWait = 10 * time.Second

// A Runner executes the solver on decks.
type Runner struct {
	// Binary is the solver executable.
	Binary string

	// SolverOutput is the fixed path the solver writes its output to. When
	// set, runs are serialized because each run overwrites the same file.
	// When empty, the output is expected at OutputPath(deck).
	SolverOutput string

	// Wait is the longest time to wait for output after the solver exits.
	Wait time.Duration

	Log logrus.FieldLogger

	mu sync.Mutex
}

// NewRunner returns a runner configured from c.
func NewRunner(c *Config) *Runner {
	return &Runner{
		Binary:       c.Binary,
		SolverOutput: c.SolverOutput,
		Wait:         DefaultWait,
		Log:          logrus.StandardLogger(),
	}
}

// SolverError reports an error message printed by the solver.
type SolverError struct {
	Deck    string
	Message string
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("thermochimica: solver error for %s: %s", e.Deck, e.Message)
}

func (r *Runner) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// Run runs the solver on the deck at path and moves the solver output to
// OutputPath(deck), which it returns. The solver runs in the directory of
// the deck, and its standard output and error are written to a log file
// next to the deck.
func (r *Runner) Run(ctx context.Context, deck string) (string, error) {
	if r.SolverOutput != "" {
		r.mu.Lock()
		defer r.mu.Unlock()
		// Output left over from an earlier run must not be mistaken for
		// this one.
		if err := os.Remove(r.SolverOutput); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("thermochimica: problem removing old solver output: %w", err)
		}
	}
	if _, err := os.Stat(r.Binary); err != nil {
		return "", fmt.Errorf("thermochimica: solver binary not found: %w", err)
	}
	dst := OutputPath(deck)
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("thermochimica: problem removing old solver output: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.Binary, filepath.Base(deck))
	cmd.Dir = filepath.Dir(deck)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	start := time.Now()
	runErr := cmd.Run()

	logPath := strings.TrimSuffix(deck, filepath.Ext(deck)) + ".log"
	if err := writeRunLog(logPath, stdout.Bytes(), stderr.Bytes()); err != nil {
		return "", err
	}
	r.log().WithFields(logrus.Fields{
		"deck":     deck,
		"duration": time.Since(start),
	}).Debug("solver finished")

	if runErr != nil {
		return "", fmt.Errorf("thermochimica: running %s: %w", deck, runErr)
	}
	if msg := solverErrorLine(&stdout); msg != "" {
		return "", &SolverError{Deck: deck, Message: msg}
	}

	src := r.SolverOutput
	if src == "" {
		src = dst
	}
	if err := r.waitFor(ctx, src); err != nil {
		return "", fmt.Errorf("thermochimica: no solver output for %s: %w", deck, err)
	}
	if src != dst {
		if err := moveFile(src, dst); err != nil {
			return "", err
		}
	}
	return dst, nil
}

// solverErrorLine returns the first line of solver output that reports an
// error.
func solverErrorLine(r io.Reader) string {
	s := bufio.NewScanner(r)
	for s.Scan() {
		if strings.Contains(s.Text(), "Error") {
			return strings.TrimSpace(s.Text())
		}
	}
	return ""
}

func writeRunLog(path string, stdout, stderr []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("thermochimica: problem creating run log: %w", err)
	}
	w := bufio.NewWriter(f)
	w.WriteString("STDOUT:\n")
	w.Write(stdout)
	w.WriteString("\nSTDERR:\n")
	w.Write(stderr)
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("thermochimica: problem writing run log: %w", err)
	}
	return f.Close()
}

// waitFor waits with exponential backoff until path exists.
func (r *Runner) waitFor(ctx context.Context, path string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxElapsedTime = r.Wait
	if b.MaxElapsedTime <= 0 {
		b.MaxElapsedTime = DefaultWait
	}
	err := backoff.RetryNotify(
		func() error {
			if ctx.Err() != nil {
				return nil
			}
			_, err := os.Stat(path)
			return err
		},
		b,
		func(err error, d time.Duration) {
			r.log().WithField("path", path).Debugf("waiting %v for solver output", d)
		},
	)
	if err != nil {
		return err
	}
	return ctx.Err()
}

// moveFile renames src to dst, copying when they are on different file
// systems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("thermochimica: problem moving solver output: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("thermochimica: problem moving solver output: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("thermochimica: problem moving solver output: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// RunAll runs the solver on every deck using the given number of worker
// goroutines, or GOMAXPROCS workers if workers < 1. Decks run in no
// particular order. The errors of failed timesteps are returned keyed by
// timestep; a failed timestep does not stop the others. Cancelling ctx
// stops new decks from being started.
func (r *Runner) RunAll(ctx context.Context, decks map[saltchem.Timestep]string, workers int) map[saltchem.Timestep]error {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	ts := saltchem.SortedTimesteps(decks)
	errs := make(map[saltchem.Timestep]error)
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(workers)
	for p := 0; p < workers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := p; i < len(ts); i += workers {
				t := ts[i]
				var err error
				if err = ctx.Err(); err == nil {
					_, err = r.Run(ctx, decks[t])
				}
				if err != nil {
					r.log().WithField("timestep", t).Error(err)
					mu.Lock()
					errs[t] = err
					mu.Unlock()
					continue
				}
				r.log().WithField("timestep", t).Info("solver run complete")
			}
		}(p)
	}
	wg.Wait()
	return errs
}
