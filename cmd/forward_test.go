package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomag/InputParameters"
)

var testDeck = []byte(`
Title: Test Case
InducingField: {Intensity: 50000, Inclination: 90, Declination: 0}
ModelType: susceptibility
Mesh:
  Center: [0, 0, 0]
  Shape: [1, 1, 1]
  CellSize: [1, 1, 1]
Receivers:
  - Locations: [[0, 0, 10], [1, 0, 10], [2, 0, 10]]
    Components: [tmi, bz]
    Masks:
      bz: [true, false, false]
Model:
  Background: 0.01
`)

func TestRunForward(t *testing.T) {
	var (
		dir  = t.TempDir()
		out  = filepath.Join(dir, "data.csv")
		buf  bytes.Buffer
		deck InputParameters.Deck
	)
	require.NoError(t, deck.Parse(testDeck))
	require.NoError(t, RunForward(&deck, dir, &ForwardOptions{OutputFile: out, Plot: true}, &buf))
	assert.Contains(t, buf.String(), "receiver 0 tmi [nT]")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	var records []*DataRecord
	require.NoError(t, gocsv.UnmarshalFile(f, &records))
	require.Len(t, records, 4)
	assert.Equal(t, DataRecord{Receiver: 0, Component: "tmi", X: 0, Y: 0, Z: 10, Value: records[0].Value}, *records[0])
	assert.InDelta(t, 0.07957573414275063, records[0].Value, 1.e-12)
	assert.Greater(t, records[0].Value, records[1].Value)
	assert.Equal(t, "bz", records[3].Component)
	assert.InDelta(t, -0.07957573414275063, records[3].Value, 1.e-12)
}

func TestRunForwardStdout(t *testing.T) {
	var (
		buf  bytes.Buffer
		deck InputParameters.Deck
	)
	require.NoError(t, deck.Parse(testDeck))
	deck.ModelType = "vector"
	deck.ForwardOnly = true
	require.NoError(t, RunForward(&deck, ".", &ForwardOptions{OutputFile: "-", ParallelDegree: 2}, &buf))
	assert.Contains(t, buf.String(), "receiver,component,x,y,z,value")
}

func TestForwardCommand(t *testing.T) {
	var (
		dir  = t.TempDir()
		in   = filepath.Join(dir, "deck.yaml")
		out  = filepath.Join(dir, "data.csv")
		opts = &ForwardOptions{}
	)
	require.NoError(t, os.WriteFile(in, testDeck, 0644))
	rootCmd.SetArgs([]string{"forward", "-I", in, "-o", out})
	require.NoError(t, rootCmd.Execute())
	_, err := os.Stat(out)
	assert.NoError(t, err)

	_, err = processInput(opts)
	assert.Error(t, err)
	opts.InputFile = filepath.Join(dir, "missing.yaml")
	_, err = processInput(opts)
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.NoError(t, os.WriteFile(in, []byte("Title: [unclosed"), 0644))
	opts.InputFile = in
	_, err = processInput(opts)
	assert.Error(t, err)
}
