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

package saltchemutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/ondrejch/saltchem"
	"github.com/ondrejch/saltchem/thermochimica"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// checkInputFile expands any environment variables in f and makes sure
// that it exists.
func checkInputFile(name, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("saltchem: you need to specify the %s configuration variable", name)
	}
	f = thermochimica.ExpandPath(f)
	if _, err := os.Stat(f); err != nil {
		return f, fmt.Errorf("saltchem: problem with %s file: %v", name, err)
	}
	return f, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(name, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("saltchem: you need to specify the %s configuration variable", name)
	}
	f = thermochimica.ExpandPath(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("saltchem: the %s directory doesn't exist: %v", name, err)
	}
	return f, nil
}

// checkOutputDir expands any environment variables in d and creates the
// directory if it doesn't exist.
func checkOutputDir(name, d string) (string, error) {
	if d == "" {
		return "", fmt.Errorf("saltchem: you need to specify the %s configuration variable", name)
	}
	d = thermochimica.ExpandPath(d)
	if err := os.MkdirAll(d, 0755); err != nil {
		return d, fmt.Errorf("saltchem: problem creating %s directory: %v", name, err)
	}
	return d, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return thermochimica.ExpandPath(logFile)
}

// startLog directs the standard logger to w and to logFile at the given
// level. The returned function closes the log file.
func startLog(w io.Writer, logFile, level string) (func() error, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("saltchem: invalid LogLevel: %v", err)
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, fmt.Errorf("saltchem: problem creating log file: %v", err)
	}
	logrus.SetOutput(io.MultiWriter(w, f))
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	logrus.SetLevel(lvl)
	return func() error {
		logrus.SetOutput(w)
		return f.Close()
	}, nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// ThermochimicaConfig returns the solver settings held in cfg.
func ThermochimicaConfig(cfg *viper.Viper) (*thermochimica.Config, error) {
	scale, err := cast.ToFloat64E(cfg.Get("Thermochimica.Scale"))
	if err != nil {
		return nil, fmt.Errorf("saltchem: invalid Thermochimica.Scale: %v", err)
	}
	c := &thermochimica.Config{
		Name:         cast.ToString(cfg.Get("Thermochimica.Name")),
		Temperature:  cast.ToString(cfg.Get("Thermochimica.Temperature")),
		Pressure:     cast.ToString(cfg.Get("Thermochimica.Pressure")),
		DataFile:     thermochimica.ExpandPath(cfg.GetString("Thermochimica.DataFile")),
		Binary:       thermochimica.ExpandPath(cfg.GetString("Thermochimica.Binary")),
		SolverOutput: thermochimica.ExpandPath(cfg.GetString("Thermochimica.SolverOutput")),
		Scale:        scale,
		DirTemplate:  cfg.GetString("Thermochimica.DirTemplate"),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// solverWait returns the Thermochimica.Wait setting.
func solverWait(cfg *viper.Viper) (time.Duration, error) {
	d, err := cast.ToDurationE(cfg.Get("Thermochimica.Wait"))
	if err != nil {
		return 0, fmt.Errorf("saltchem: invalid Thermochimica.Wait: %v", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("saltchem: Thermochimica.Wait must be positive, not %v", d)
	}
	return d, nil
}

// classifier returns the phase classifier described by cfg.
func classifier(cfg *viper.Viper) *saltchem.Classifier {
	c := saltchem.NewClassifier()
	if s := cast.ToStringSlice(cfg.Get("SaltPhases")); len(s) > 0 {
		c.SaltPhases = s
	}
	c.UnknownAsSolid = cast.ToBool(cfg.Get("UnknownAsSolid"))
	return c
}

// materials returns the named reference compositions, each normalized
// and weighted by its share.
func materials(names []string, weights []float64, uf4MolPct, uf3ToUF4 float64) (saltchem.Composition, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("saltchem: no materials specified")
	}
	if len(weights) != 0 && len(weights) != len(names) {
		return nil, fmt.Errorf("saltchem: %d material weights given for %d materials", len(weights), len(names))
	}
	o := make(saltchem.Composition)
	for i, n := range names {
		var c saltchem.Composition
		switch strings.ToLower(n) {
		case "flibeu":
			c = saltchem.FLiBeU(uf4MolPct, uf3ToUF4)
		case "ss316":
			c = saltchem.SS316().Normalize()
		default:
			return nil, fmt.Errorf("saltchem: unknown material %q; valid options are 'flibeu' and 'ss316'", n)
		}
		w := 1.0
		if len(weights) > 0 {
			w = weights[i]
		}
		for el, v := range c {
			c[el] = v * w
		}
		o = o.Add(c)
	}
	return o, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		o := make(map[string]string)
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&o); err != nil {
			return nil, fmt.Errorf("saltchem: problem parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("saltchem: invalid type for %s: %#v", varName, i)
	}
}
