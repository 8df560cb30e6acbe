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
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/ondrejch/saltchem"
	"github.com/ondrejch/saltchem/thermochimica"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to saltchem.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to the log file. If it is empty, a log
              file is created next to the command output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages: one of debug,
              info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "NuclideVector",
			usage: `
              NuclideVector is the path to the JSON file holding the isotope
              atom densities of each timestep.`,
			defaultVal: "nuclide_vector.json",
			flagsets:   []*pflag.FlagSet{nuclidesCmd.Flags()},
		},
		{
			name: "Elements",
			usage: `
              Elements restricts the element table to the listed elements.
              If it is empty, all elements are kept.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{nuclidesCmd.Flags()},
		},
		{
			name: "ElementTable",
			usage: `
              ElementTable is the path to the element table: element atom
              densities and mole percents with the isotope contributions to
              each element.`,
			defaultVal: "element_vector.json",
			flagsets:   []*pflag.FlagSet{nuclidesCmd.Flags(), surrogatesCmd.Flags(), nuclideSaltCmd.Flags()},
		},
		{
			name: "PeriodicTable",
			usage: `
              PeriodicTable is the path to a periodic table in CSV format
              with Symbol and Surrogate columns.`,
			defaultVal: "periodic_table.csv",
			flagsets:   []*pflag.FlagSet{candidatesCmd.Flags()},
		},
		{
			name: "Match",
			usage: `
              Match specifies whether to choose a surrogate for each element
              of PeriodicTable that is not its own surrogate, by comparing
              standard potentials, electronegativity and melting point.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{candidatesCmd.Flags()},
		},
		{
			name: "MatchedTable",
			usage: `
              MatchedTable is the path where the periodic table with the
              chosen surrogates and their Match_Quality is written when
              Match is set.`,
			defaultVal: "periodic_table_matched.csv",
			flagsets:   []*pflag.FlagSet{candidatesCmd.Flags()},
		},
		{
			name: "Candidates",
			usage: `
              Candidates is the path to the surrogate candidate configuration
              in JSON, TOML or CSV format.`,
			defaultVal: "surrogates_and_candidates.json",
			flagsets:   []*pflag.FlagSet{candidatesCmd.Flags(), surrogatesCmd.Flags()},
		},
		{
			name: "SurrogateTable",
			usage: `
              SurrogateTable is the path to the surrogate table: surrogate
              atom densities and mole percents with the contributions of
              their candidate elements.`,
			defaultVal: "surrogate_vector.json",
			flagsets:   []*pflag.FlagSet{surrogatesCmd.Flags(), deckCmd.PersistentFlags(), decoupleCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory holding one subdirectory per
              timestep with the solver deck and output.`,
			shorthand:  "o",
			defaultVal: "thermochimica",
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags(), condenseCmd.Flags()},
		},
		{
			name: "Thermochimica.Name",
			usage: `
              Thermochimica.Name is the base name of the deck files.`,
			defaultVal: thermochimica.DefaultName,
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags(), condenseCmd.Flags()},
		},
		{
			name: "Thermochimica.Temperature",
			usage: `
              Thermochimica.Temperature is the temperature in K, either a single
              value or a range given as start:stop:step.`,
			defaultVal: thermochimica.DefaultTemperature,
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags(), condenseCmd.Flags()},
		},
		{
			name: "Thermochimica.Pressure",
			usage: `
              Thermochimica.Pressure is the pressure in atm.`,
			defaultVal: thermochimica.DefaultPressure,
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags(), condenseCmd.Flags()},
		},
		{
			name: "Thermochimica.DataFile",
			usage: `
              Thermochimica.DataFile is the path to the thermodynamic database.`,
			defaultVal: thermochimica.DefaultDataFile,
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags(), condenseCmd.Flags()},
		},
		{
			name: "Thermochimica.Binary",
			usage: `
              Thermochimica.Binary is the path to the solver executable.`,
			defaultVal: thermochimica.DefaultBinary,
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags(), condenseCmd.Flags()},
		},
		{
			name: "Thermochimica.SolverOutput",
			usage: `
              Thermochimica.SolverOutput is the fixed path that the solver
              writes its JSON output to. If it is empty, the output is expected
              next to each deck.`,
			defaultVal: thermochimica.DefaultSolverOutput,
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags(), condenseCmd.Flags()},
		},
		{
			name: "Thermochimica.Scale",
			usage: `
              Thermochimica.Scale multiplies element mole percents to get the
              deck amounts in moles (amount = Scale × mole percent / 100).`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags(), condenseCmd.Flags()},
		},
		{
			name: "Thermochimica.DirTemplate",
			usage: `
              Thermochimica.DirTemplate names the directory of each timestep.
              {timestep} is replaced by the timestep.`,
			defaultVal: thermochimica.DefaultDirTemplate,
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags(), condenseCmd.Flags()},
		},
		{
			name: "Thermochimica.Wait",
			usage: `
              Thermochimica.Wait is how long to wait for solver output after
              the solver exits.`,
			defaultVal: thermochimica.DefaultWait.String(),
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags()},
		},
		{
			name: "run",
			usage: `
              run specifies whether to run the solver on the decks after
              writing them.`,
			shorthand:  "r",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of solver runs to carry out at once. The
              default (0) uses one per processor.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{deckCmd.PersistentFlags()},
		},
		{
			name: "Materials",
			usage: `
              Materials lists the reference materials to equilibrate together:
              flibeu and/or ss316.`,
			defaultVal: []string{"flibeu"},
			flagsets:   []*pflag.FlagSet{compositionCmd.Flags()},
		},
		{
			name: "MaterialWeights",
			usage: `
              MaterialWeights gives the relative amount of each material in
              Materials. If it is empty, materials are weighted equally.`,
			defaultVal: "[]",
			flagsets:   []*pflag.FlagSet{compositionCmd.Flags()},
		},
		{
			name: "UF4MolePercent",
			usage: `
              UF4MolePercent is the uranium fluoride content of the FLiBe-U
              salt in mol%.`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{compositionCmd.Flags()},
		},
		{
			name: "UF3ToUF4",
			usage: `
              UF3ToUF4 is the UF3/UF4 ratio of the FLiBe-U salt.`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{compositionCmd.Flags()},
		},
		{
			name: "CondensedFile",
			usage: `
              CondensedFile is the path to the condensed report holding the
              solver output of all timesteps.`,
			defaultVal: "condensed.json",
			flagsets:   []*pflag.FlagSet{condenseCmd.Flags(), redoxCmd.Flags(), phasesCmd.Flags()},
		},
		{
			name: "PhaseDir",
			usage: `
              PhaseDir is the directory to write the salt, gas and solid phase
              files to. If it is empty, phase files are not written.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{condenseCmd.Flags()},
		},
		{
			name: "SaltPhases",
			usage: `
              SaltPhases lists solution phase names that are classified as salt
              in addition to names containing salt, liquid or melt.`,
			defaultVal: saltchem.DefaultSaltPhases,
			flagsets:   []*pflag.FlagSet{condenseCmd.Flags(), phasesCmd.Flags()},
		},
		{
			name: "UnknownAsSolid",
			usage: `
              UnknownAsSolid specifies whether solution phases that are neither
              gas nor salt are classified as solid instead of causing an error.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{condenseCmd.Flags(), phasesCmd.Flags()},
		},
		{
			name: "Kind",
			usage: `
              Kind is the kind of the phases to decouple: salt, gas or solid.`,
			shorthand:  "k",
			defaultVal: "salt",
			flagsets:   []*pflag.FlagSet{decoupleCmd.Flags()},
		},
		{
			name: "PhaseFile",
			usage: `
              PhaseFile is the path to the input phase file.`,
			defaultVal: "salt_phases.json",
			flagsets:   []*pflag.FlagSet{decoupleCmd.Flags(), nuclideSaltCmd.Flags()},
		},
		{
			name: "DecoupledFile",
			usage: `
              DecoupledFile is the path to write the decoupled phases to.`,
			defaultVal: "decoupled.json",
			flagsets:   []*pflag.FlagSet{decoupleCmd.Flags(), nuclideSaltCmd.Flags()},
		},
		{
			name: "Precision",
			usage: `
              Precision is the arithmetic used when redistributing quantities:
              decimal or float64.`,
			defaultVal: "decimal",
			flagsets:   []*pflag.FlagSet{decoupleCmd.Flags(), nuclideSaltCmd.Flags()},
		},
		{
			name: "ReportDir",
			usage: `
              ReportDir is the directory to write report tables and plots to.`,
			defaultVal: "report",
			flagsets:   []*pflag.FlagSet{redoxCmd.Flags(), phasesCmd.Flags()},
		},
		{
			name: "SaltPhase",
			usage: `
              SaltPhase is the name of the salt solution phase whose cations
              determine the redox ratios. The phases command reports the cation
              composition of every solution phase whose name starts with it.`,
			defaultVal: "MSFL",
			flagsets:   []*pflag.FlagSet{redoxCmd.Flags(), phasesCmd.Flags()},
		},
		{
			name: "DerivedColumns",
			usage: `
              DerivedColumns maps names of additional redox table columns to
              expressions of the existing columns, for example
              {"log ratio": "log10([UF3/UF4 Ratio])"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{redoxCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SALTCHEM")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(v)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(nuclidesCmd)
	Root.AddCommand(candidatesCmd)
	Root.AddCommand(surrogatesCmd)
	Root.AddCommand(deckCmd)
	deckCmd.AddCommand(compositionCmd)
	Root.AddCommand(condenseCmd)
	Root.AddCommand(decoupleCmd)
	Root.AddCommand(nuclideSaltCmd)
	Root.AddCommand(redoxCmd)
	Root.AddCommand(phasesCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("saltchem: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// withLog runs f with the standard logger writing both to the command
// output and to a log file. The log file is LogFile if it is set and
// otherwise derived from output.
func withLog(cmd *cobra.Command, output string, f func() error) error {
	closeLog, err := startLog(cmd.OutOrStdout(), checkLogFile(Cfg.GetString("LogFile"), output), Cfg.GetString("LogLevel"))
	if err != nil {
		return err
	}
	err = f()
	if cerr := closeLog(); err == nil {
		err = cerr
	}
	return err
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "saltchem",
	Short: "Surrogate decoupling for molten-salt equilibrium calculations.",
	Long: `saltchem maps molten-salt fuel compositions from a depletion code onto the
reduced set of surrogate elements used by the Thermochimica equilibrium solver,
prepares and runs solver decks, and maps the solver results back onto real
elements and isotopes. Use the subcommands specified below to access the
functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SALTCHEM_var' where 'var' is the
name of the variable to be set. File paths may contain environment variables.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of saltchem.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "saltchem v%s\n", saltchem.Version)
	},
	DisableAutoGenTag: true,
}

var nuclidesCmd = &cobra.Command{
	Use:   "nuclides",
	Short: "Aggregate isotopes into elements.",
	Long: `nuclides sums the isotope atom densities of each timestep in the NuclideVector
file into element totals and mole percents, records the share of each isotope
in its element, and writes the result to ElementTable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := checkInputFile("NuclideVector", Cfg.GetString("NuclideVector"))
		if err != nil {
			return err
		}
		out, err := checkOutputFile("ElementTable", Cfg.GetString("ElementTable"))
		if err != nil {
			return err
		}
		include := expandStringSlice(cast.ToStringSlice(Cfg.Get("Elements")))
		return withLog(cmd, out, func() error { return Nuclides(in, include, out) })
	},
	DisableAutoGenTag: true,
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Create a surrogate candidate configuration.",
	Long: `candidates builds the surrogate candidate configuration from the Surrogate
column of the PeriodicTable CSV file and writes it as JSON to Candidates.
If Match is set, surrogates are first chosen for the elements that are not
their own surrogate, and the completed table is written to MatchedTable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := checkInputFile("PeriodicTable", Cfg.GetString("PeriodicTable"))
		if err != nil {
			return err
		}
		out, err := checkOutputFile("Candidates", Cfg.GetString("Candidates"))
		if err != nil {
			return err
		}
		if Cfg.GetBool("Match") {
			matched, err := checkOutputFile("MatchedTable", Cfg.GetString("MatchedTable"))
			if err != nil {
				return err
			}
			return withLog(cmd, out, func() error { return MatchCandidates(in, matched, out) })
		}
		return withLog(cmd, out, func() error { return CandidatesFromCSV(in, out) })
	},
	DisableAutoGenTag: true,
}

var surrogatesCmd = &cobra.Command{
	Use:   "surrogates",
	Short: "Aggregate elements into surrogates.",
	Long: `surrogates sums the element amounts in ElementTable onto the surrogates
configured in Candidates, records the contribution of each element to its
surrogate, and writes the result to SurrogateTable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		elements, err := checkInputFile("ElementTable", Cfg.GetString("ElementTable"))
		if err != nil {
			return err
		}
		cand, err := checkInputFile("Candidates", Cfg.GetString("Candidates"))
		if err != nil {
			return err
		}
		out, err := checkOutputFile("SurrogateTable", Cfg.GetString("SurrogateTable"))
		if err != nil {
			return err
		}
		return withLog(cmd, out, func() error { return Surrogates(elements, cand, out) })
	},
	DisableAutoGenTag: true,
}

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Write solver decks.",
	Long: `deck writes a Thermochimica input deck for every timestep of SurrogateTable
into the timestep directories under OutputDir. With --run, the solver is then
run on every deck, and its output is stored next to the deck.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ThermochimicaConfig(Cfg)
		if err != nil {
			return err
		}
		wait, err := solverWait(Cfg)
		if err != nil {
			return err
		}
		in, err := checkInputFile("SurrogateTable", Cfg.GetString("SurrogateTable"))
		if err != nil {
			return err
		}
		dir, err := checkOutputDir("OutputDir", Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		run := Cfg.GetBool("run")
		workers := Cfg.GetInt("Workers")
		return withLog(cmd, filepath.Join(dir, "deck.log"), func() error {
			return Decks(context.Background(), c, in, dir, run, workers, wait)
		})
	},
	DisableAutoGenTag: true,
}

var compositionCmd = &cobra.Command{
	Use:   "composition",
	Short: "Write a solver deck for reference materials.",
	Long: `composition writes a single Thermochimica input deck to OutputDir for a mixture
of reference materials: a FLiBe-U fuel salt with the given UF4 content and
UF3/UF4 ratio, and 316 stainless steel. With --run, the solver is run on it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ThermochimicaConfig(Cfg)
		if err != nil {
			return err
		}
		wait, err := solverWait(Cfg)
		if err != nil {
			return err
		}
		dir, err := checkOutputDir("OutputDir", Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		var weights []float64
		if err := json.Unmarshal([]byte(cast.ToString(Cfg.Get("MaterialWeights"))), &weights); err != nil {
			w, cerr := cast.ToSliceE(Cfg.Get("MaterialWeights"))
			if cerr != nil {
				return fmt.Errorf("saltchem: invalid MaterialWeights: %v", err)
			}
			for _, x := range w {
				f, err := cast.ToFloat64E(x)
				if err != nil {
					return fmt.Errorf("saltchem: invalid MaterialWeights: %v", err)
				}
				weights = append(weights, f)
			}
		}
		comp, err := materials(cast.ToStringSlice(Cfg.Get("Materials")), weights,
			Cfg.GetFloat64("UF4MolePercent"), Cfg.GetFloat64("UF3ToUF4"))
		if err != nil {
			return err
		}
		run := Cfg.GetBool("run")
		return withLog(cmd, filepath.Join(dir, c.Name+".log"), func() error {
			return CompositionDeck(context.Background(), c, comp, dir, c.Name, run, wait)
		})
	},
	DisableAutoGenTag: true,
}

var condenseCmd = &cobra.Command{
	Use:   "condense",
	Short: "Collect solver output.",
	Long: `condense collects the solver output of every timestep directory under
OutputDir into CondensedFile, and splits the phases present at each timestep
into salt, gas and solid phase files in PhaseDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ThermochimicaConfig(Cfg)
		if err != nil {
			return err
		}
		dir, err := checkInputFile("OutputDir", Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		out, err := checkOutputFile("CondensedFile", Cfg.GetString("CondensedFile"))
		if err != nil {
			return err
		}
		phaseDir := Cfg.GetString("PhaseDir")
		if phaseDir != "" {
			if phaseDir, err = checkOutputDir("PhaseDir", phaseDir); err != nil {
				return err
			}
		}
		cl := classifier(Cfg)
		return withLog(cmd, out, func() error {
			return Condense(context.Background(), c, dir, out, phaseDir, cl)
		})
	},
	DisableAutoGenTag: true,
}

var decoupleCmd = &cobra.Command{
	Use:   "decouple",
	Short: "Map surrogate phase compositions onto real elements.",
	Long: `decouple redistributes the surrogate quantities of the phases of the given
Kind in PhaseFile onto the real elements that each surrogate stands for,
in proportion to their contributions in SurrogateTable, and writes the result
to DecoupledFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := saltchem.ParsePhaseKind(Cfg.GetString("Kind"))
		if err != nil {
			return err
		}
		p, err := saltchem.ParsePrecision(Cfg.GetString("Precision"))
		if err != nil {
			return err
		}
		in, err := checkInputFile("PhaseFile", Cfg.GetString("PhaseFile"))
		if err != nil {
			return err
		}
		table, err := checkInputFile("SurrogateTable", Cfg.GetString("SurrogateTable"))
		if err != nil {
			return err
		}
		out, err := checkOutputFile("DecoupledFile", Cfg.GetString("DecoupledFile"))
		if err != nil {
			return err
		}
		return withLog(cmd, out, func() error { return Decouple(kind, p, in, table, out) })
	},
	DisableAutoGenTag: true,
}

var nuclideSaltCmd = &cobra.Command{
	Use:   "nuclidesalt",
	Short: "Map decoupled salt compositions onto isotopes.",
	Long: `nuclidesalt redistributes the element ion quantities of the decoupled salt
phases in PhaseFile onto isotopes, in proportion to the isotope contributions
in ElementTable, and writes the result to DecoupledFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := saltchem.ParsePrecision(Cfg.GetString("Precision"))
		if err != nil {
			return err
		}
		in, err := checkInputFile("PhaseFile", Cfg.GetString("PhaseFile"))
		if err != nil {
			return err
		}
		iso, err := checkInputFile("ElementTable", Cfg.GetString("ElementTable"))
		if err != nil {
			return err
		}
		out, err := checkOutputFile("DecoupledFile", Cfg.GetString("DecoupledFile"))
		if err != nil {
			return err
		}
		return withLog(cmd, out, func() error { return NuclideSalt(p, in, iso, out) })
	},
	DisableAutoGenTag: true,
}

var redoxCmd = &cobra.Command{
	Use:   "redox",
	Short: "Compute redox ratios.",
	Long: `redox computes the UF3/UF4 and Cr2+/Cr3+ ratios of the salt phase at every
timestep in CondensedFile and writes tables, a summary, plots and a workbook
to ReportDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := checkInputFile("CondensedFile", Cfg.GetString("CondensedFile"))
		if err != nil {
			return err
		}
		dir, err := checkOutputDir("ReportDir", Cfg.GetString("ReportDir"))
		if err != nil {
			return err
		}
		derived, err := GetStringMapString("DerivedColumns", Cfg)
		if err != nil {
			return err
		}
		saltPhase := Cfg.GetString("SaltPhase")
		return withLog(cmd, filepath.Join(dir, "redox.log"), func() error {
			return Redox(in, dir, saltPhase, derived)
		})
	},
	DisableAutoGenTag: true,
}

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Report phase amounts and Gibbs energies.",
	Long: `phases writes the integral Gibbs energy, the presence and amount of every
phase, the phase distribution of each phase kind and the cation composition of
the salt phases at every timestep in CondensedFile to ReportDir as tables,
plots and a workbook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := checkInputFile("CondensedFile", Cfg.GetString("CondensedFile"))
		if err != nil {
			return err
		}
		dir, err := checkOutputDir("ReportDir", Cfg.GetString("ReportDir"))
		if err != nil {
			return err
		}
		cl := classifier(Cfg)
		saltPhase := Cfg.GetString("SaltPhase")
		return withLog(cmd, filepath.Join(dir, "phases.log"), func() error {
			return Phases(in, dir, saltPhase, cl)
		})
	},
	DisableAutoGenTag: true,
}
