package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := getRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "export", "predict"})
}

func TestPredictCmd(t *testing.T) {
	root := getRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"predict", "--age", "30", "--height", "170", "--sex", "male"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "predicted PEFR: 576 L/min")
	assert.Contains(t, out.String(), "green zone:     >= 461")
	assert.Contains(t, out.String(), "orange zone:    >= 288")
}

func TestPredictCmd_PrefixAndMissingHeight(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printPrediction(&out, 30, 0, "female"))
	assert.Equal(t, "predicted PEFR: N/A (height required)\n", out.String())

	root := getRootCmd()
	out.Reset()
	root.SetOut(&out)
	root.SetArgs([]string{"predict", "--age", "30", "--height", "160", "--prefix", "นาง"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "predicted PEFR: 391 L/min")
}
