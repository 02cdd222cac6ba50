/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gomag/InputParameters"
	"github.com/notargets/gomag/magnetics"
	"github.com/notargets/gomag/utils"
)

type ForwardOptions struct {
	InputFile      string
	OutputFile     string // "-" writes to stdout
	Plot           bool
	Profile        string // cpu or mem
	Perf           bool
	ParallelDegree int // Overrides the deck when positive
}

// DataRecord is a row of the predicted data CSV file
type DataRecord struct {
	Receiver  int     `csv:"receiver"`
	Component string  `csv:"component"`
	X         float64 `csv:"x"`
	Y         float64 `csv:"y"`
	Z         float64 `csv:"z"`
	Value     float64 `csv:"value"`
}

// ForwardCmd represents the forward command
var ForwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Predict the data of a survey for a model described in a YAML input deck",
	Long: `
Builds the mesh, receivers and model described in the input deck, then writes the predicted
data, one row per datum in survey order.

gomag forward -I deck.yaml -o data.csv`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		opts := &ForwardOptions{
			InputFile:      viper.GetString("inputConditionsFile"),
			OutputFile:     viper.GetString("output"),
			Plot:           viper.GetBool("plot"),
			Profile:        viper.GetString("profile"),
			Perf:           viper.GetBool("perf"),
			ParallelDegree: viper.GetInt("parallelDegree"),
		}
		var deck *InputParameters.Deck
		if deck, err = processInput(opts); err != nil {
			return
		}
		switch opts.Profile {
		case "":
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
		default:
			return fmt.Errorf("unknown profile %q, use cpu or mem", opts.Profile)
		}
		run := func() error {
			return RunForward(deck, filepath.Dir(opts.InputFile), opts, os.Stdout)
		}
		if opts.Perf {
			return withInstructionCount(run)
		}
		return run()
	},
}

func init() {
	rootCmd.AddCommand(ForwardCmd)
	ForwardCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML input deck, see the example printed when it is missing")
	ForwardCmd.Flags().StringP("output", "o", "", "CSV file for the predicted data, - for stdout")
	ForwardCmd.Flags().BoolP("plot", "g", false, "plot each data block in the terminal")
	ForwardCmd.Flags().String("profile", "", "write a cpu or mem profile")
	ForwardCmd.Flags().Bool("perf", false, "count CPU instructions used by the simulation (linux)")
	ForwardCmd.Flags().IntP("parallelDegree", "p", 0, "number of workers, overrides the input deck")
	for _, name := range []string{"inputConditionsFile", "output", "plot", "profile", "perf", "parallelDegree"} {
		_ = viper.BindPFlag(name, ForwardCmd.Flags().Lookup(name))
	}
}

func processInput(opts *ForwardOptions) (deck *InputParameters.Deck, err error) {
	if len(opts.InputFile) == 0 {
		fmt.Printf("Example File:%s\n", InputParameters.ExampleDeck)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		return
	}
	var data []byte
	if data, err = os.ReadFile(opts.InputFile); err != nil {
		return
	}
	deck = &InputParameters.Deck{}
	if err = deck.Parse(data); err != nil {
		err = fmt.Errorf("parsing %s: %w", opts.InputFile, err)
		return
	}
	if verbose {
		deck.Print()
	}
	return
}

// RunForward simulates the deck and reports the data to w
func RunForward(deck *InputParameters.Deck, baseDir string, opts *ForwardOptions, w io.Writer) (err error) {
	var (
		p     *InputParameters.Problem
		sim   *magnetics.Simulation
		data  []float64
		start = time.Now()
	)
	if p, err = deck.Build(baseDir); err != nil {
		return
	}
	if opts.ParallelDegree > 0 {
		p.ParallelDegree = opts.ParallelDegree
	}
	if sim, err = magnetics.NewSimulation(p.Survey, p.Cells, p.ActiveMask, p.ModelType,
		p.ForwardOnly, p.ParallelDegree); err != nil {
		return
	}
	sim.SetLogger(logger)
	logger.Info("simulation ready",
		zap.String("title", p.Title),
		zap.Stringer("field", p.Survey.Field()),
		zap.Any("meshShape", p.Mesh.Shape()),
		zap.Int("nC", sim.NC()), zap.Int("nD", p.Survey.ND()),
		zap.String("blas", utils.BLASImplementation))
	if p.Remanence != nil && p.ModelType.ParamsPerCell() == 1 {
		logger.Warn("remanence is ignored by susceptibility models")
	}
	if data, err = sim.Predict(p.Model); err != nil {
		return
	}
	if utils.IsNan(data) {
		return fmt.Errorf("prediction for %q contains NaN values", p.Title)
	}
	logger.Info("prediction done", zap.Duration("elapsed", time.Since(start)))

	records := Records(p.Survey, data)
	if err = summarize(w, p.Survey, data, opts.Plot); err != nil {
		return
	}
	switch opts.OutputFile {
	case "":
	case "-":
		err = gocsv.Marshal(&records, w)
	default:
		err = writeRecords(opts.OutputFile, records)
	}
	return
}

// Records pairs each datum with its receiver, component and location
func Records(s *magnetics.Survey, data []float64) (records []*DataRecord) {
	records = make([]*DataRecord, 0, len(data))
	for _, blk := range s.Blocks() {
		locs := s.Receiver(blk.Receiver).Locations
		for k, il := range blk.Locations {
			records = append(records, &DataRecord{
				Receiver:  blk.Receiver,
				Component: blk.Component.String(),
				X:         locs[il][0],
				Y:         locs[il][1],
				Z:         locs[il][2],
				Value:     data[blk.Offset+k],
			})
		}
	}
	return
}

func writeRecords(path string, records []*DataRecord) (err error) {
	var f *os.File
	if f, err = os.Create(path); err != nil {
		return
	}
	if err = gocsv.MarshalFile(&records, f); err != nil {
		f.Close()
		return
	}
	return f.Close()
}

func summarize(w io.Writer, s *magnetics.Survey, data []float64, plot bool) (err error) {
	for _, blk := range s.Blocks() {
		vals := data[blk.Offset : blk.Offset+len(blk.Locations)]
		if len(vals) == 0 {
			continue
		}
		caption := fmt.Sprintf("receiver %d %v [%s]", blk.Receiver, blk.Component, blk.Component.Units())
		if _, err = fmt.Fprintf(w, "%-24s n = %6d, min = %12.5g, max = %12.5g\n",
			caption, len(vals), floats.Min(vals), floats.Max(vals)); err != nil {
			return
		}
		if plot && len(vals) > 1 {
			graph := asciigraph.Plot(vals,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(caption),
			)
			if _, err = fmt.Fprintf(w, "%s\n\n", graph); err != nil {
				return
			}
		}
	}
	return
}
