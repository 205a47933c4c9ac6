package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go-ml.dev/pkg/synthtrain/model"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
)

func Test_Configure(t *testing.T) {
	cfg, err := configure(options{preset: "quick", set: []string{"train_num_steps=7", "hidden_dim=16"}})
	assert.NilError(t, err)
	assert.Equal(t, cfg.TrainNumSteps, 7)
	assert.Equal(t, cfg.HiddenDim, 16)
	assert.Equal(t, cfg.SaveAndEvalEvery, 50)

	_, err = configure(options{set: []string{"train_num_steps"}})
	assert.Assert(t, xerrors.Is(err, model.ErrInvalidConfiguration))
	_, err = configure(options{preset: "missing"})
	assert.Assert(t, xerrors.Is(err, model.ErrInvalidConfiguration))
}

func Test_TrainCommand(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "trainer.yaml")
	assert.NilError(t, os.WriteFile(cfgFile, []byte(
		"data_folder: "+filepath.Join(dir, "data")+"\n"+
			"output_folder: "+filepath.Join(dir, "outputs")+"\n"+
			"synthetic_data_size: 200\n"+
			"train_num_steps: 12\n"+
			"save_and_eval_every: 5\n"+
			"hidden_dim: 8\n"), 0644))
	db := filepath.Join(dir, "run.db")

	root := rootCmd()
	root.SetArgs([]string{"train", "--config", cfgFile, "--sqlite", db})
	assert.NilError(t, root.Execute())

	root = rootCmd()
	root.SetArgs([]string{"train", "--config", cfgFile, "--sqlite", db, "--resume", "2"})
	assert.NilError(t, root.Execute())

	out := &bytes.Buffer{}
	root = rootCmd()
	root.SetOut(out)
	root.SetArgs([]string{"datasets"})
	assert.NilError(t, root.Execute())
	assert.Equal(t, out.String(), "nonlinear_additive\norange_skin_additive\n")
}
