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
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"

	"github.com/ondrejch/saltchem"
	"github.com/ondrejch/saltchem/internal/hash"
)

// A Loader reads solver output from the timestep directories of a run.
// Files are parsed concurrently, and repeated requests for the same file
// are served from memory.
type Loader struct {
	Config *Config
	Log    logrus.FieldLogger

	// CacheSize is the number of parsed files kept in memory.
	CacheSize int

	cacheInit sync.Once
	cache     *requestcache.Cache
}

// NewLoader returns a loader for runs configured by c.
func NewLoader(c *Config) *Loader {
	return &Loader{Config: c, Log: logrus.StandardLogger(), CacheSize: 100}
}

func (l *Loader) log() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}

// dirPattern returns a regular expression matching timestep directory
// names, with the timestep as the first submatch.
func (l *Loader) dirPattern() *regexp.Regexp {
	t := regexp.QuoteMeta(l.Config.DirTemplate)
	t = strings.Replace(t, regexp.QuoteMeta("{timestep}"), `(\d+)`, 1)
	return regexp.MustCompile("^" + t + "$")
}

// fileVersion identifies the content of a file on disk.
type fileVersion struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// File parses the solver output file at path. A file that has changed
// since it was last parsed is parsed again.
func (l *Loader) File(ctx context.Context, path string) (*saltchem.SolverOutput, error) {
	l.cacheInit.Do(func() {
		n := l.CacheSize
		if n < 1 {
			n = 1
		}
		l.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			b, err := ioutil.ReadFile(request.(fileVersion).Path)
			if err != nil {
				return nil, err
			}
			return saltchem.ParseSolverOutput(b)
		}, runtime.GOMAXPROCS(-1), requestcache.Deduplicate(), requestcache.Memory(n))
	})
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	v := fileVersion{Path: path, Size: fi.Size(), ModTime: fi.ModTime()}
	r, err := l.cache.NewRequest(ctx, v, hash.Hash(v)).Result()
	if err != nil {
		return nil, err
	}
	return r.(*saltchem.SolverOutput), nil
}

// outputFile returns the output file in the directory of timestep ts:
// the deck's output if it exists and otherwise the first JSON file.
func (l *Loader) outputFile(dir string, ts saltchem.Timestep) (string, bool) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return "", false
	}
	want := filepath.Base(OutputPath(l.Config.DeckPath("", ts)))
	var first string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		if f.Name() == want {
			return filepath.Join(dir, want), true
		}
		if first == "" {
			first = f.Name()
		}
	}
	if first == "" {
		return "", false
	}
	return filepath.Join(dir, first), true
}

// Load reads the solver output of every timestep directory under root.
// Timesteps whose output is missing or malformed are logged and included
// with no states. Gaps in the timestep sequence are logged as warnings.
func (l *Loader) Load(ctx context.Context, root string) (saltchem.Condensed, error) {
	entries, err := ioutil.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("thermochimica: problem reading output directory: %w", err)
	}
	re := l.dirPattern()
	type job struct {
		ts   saltchem.Timestep
		path string
	}
	var jobs []job
	o := make(saltchem.Condensed)
	for _, e := range entries {
		m := re.FindStringSubmatch(e.Name())
		if !e.IsDir() || m == nil {
			continue
		}
		ts, err := saltchem.ParseTimestep(m[1])
		if err != nil {
			continue
		}
		o[ts] = &saltchem.SolverOutput{States: map[int]*saltchem.SolverState{}}
		path, ok := l.outputFile(filepath.Join(root, e.Name()), ts)
		if !ok {
			l.log().WithField("timestep", ts).Warn("no solver output found")
			continue
		}
		jobs = append(jobs, job{ts: ts, path: path})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ts < jobs[j].ts })

	var wg sync.WaitGroup
	var mu sync.Mutex
	wg.Add(len(jobs))
	for _, j := range jobs {
		go func(j job) {
			defer wg.Done()
			out, err := l.File(ctx, j.path)
			if err != nil {
				l.log().WithFields(logrus.Fields{
					"timestep": j.ts,
					"file":     j.path,
				}).Warnf("skipping solver output: %v", err)
				return
			}
			mu.Lock()
			o[j.ts] = out
			mu.Unlock()
		}(j)
	}
	wg.Wait()

	if missing := saltchem.MissingTimesteps(saltchem.SortedTimesteps(o)); len(missing) > 0 {
		l.log().WithField("timesteps", missing).Warn("timestep sequence has gaps")
	}
	l.log().WithFields(logrus.Fields{
		"directory": root,
		"timesteps": len(o),
		"loaded":    len(o.States()),
	}).Info("loaded solver output")
	return o, nil
}
