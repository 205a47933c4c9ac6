package config

import (
	"os"
	"path/filepath"
	"testing"

	"go-ml.dev/pkg/synthtrain/model"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
	"gotest.tools/assert/cmp"
)

func Test_Default(t *testing.T) {
	c := Default()
	assert.NilError(t, c.Validate())
	i, err := c.TargetIndex()
	assert.NilError(t, err)
	assert.Equal(t, i, 1)
}

func Test_Validate(t *testing.T) {
	c := Default()
	c.TargetClass = "2"
	assert.Assert(t, xerrors.Is(c.Validate(), model.ErrInvalidConfiguration))
	c = Default()
	c.TrainSetRatio = 1
	assert.Assert(t, xerrors.Is(c.Validate(), model.ErrInvalidConfiguration))
	c = Default()
	c.SaveAndEvalEvery = 0
	assert.Assert(t, xerrors.Is(c.Validate(), model.ErrInvalidConfiguration))
}

func Test_ApplyParams(t *testing.T) {
	d := Default()
	c, err := Params{"train_num_steps": 10, "train_lr": 0.5, "use_cuda": 1, "adam_beta2": 0.999}.Apply(d)
	assert.NilError(t, err)
	assert.Equal(t, c.TrainNumSteps, 10)
	assert.Equal(t, c.LearningRate, 0.5)
	assert.Equal(t, c.UseCuda, true)
	assert.Equal(t, c.AdamBetas, [2]float64{0.9, 0.999})
	assert.Equal(t, d.TrainNumSteps, 1000)

	_, err = Params{"no_such_field": 1}.Apply(d)
	assert.Assert(t, xerrors.Is(err, model.ErrInvalidConfiguration))
	_, err = Params{"tgt_num_type": 1}.Apply(d)
	assert.Assert(t, xerrors.Is(err, model.ErrInvalidConfiguration))
}

func Test_Presets(t *testing.T) {
	for _, n := range Presets() {
		p, err := Preset(n)
		assert.NilError(t, err)
		c, err := p.Apply(Default())
		assert.NilError(t, err)
		assert.NilError(t, c.Validate(), n)
	}
	_, err := Preset("dentategyrus")
	assert.Assert(t, xerrors.Is(err, model.ErrInvalidConfiguration))
}

func Test_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trainer.yaml")
	assert.NilError(t, os.WriteFile(path, []byte(`
synthetic_dataset_name: orange_skin_additive
train_num_steps: 20
adam_betas: [0.8, 0.9]
num_type_list: ["neg", "pos", "other"]
tgt_num_type: pos
`), 0644))
	c, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, c.DatasetName, "orange_skin_additive")
	assert.Equal(t, c.TrainNumSteps, 20)
	assert.Equal(t, c.AdamBetas, [2]float64{0.8, 0.9})
	assert.Assert(t, cmp.DeepEqual(c.ClassNames, []string{"neg", "pos", "other"}))
	assert.Equal(t, c.TrainBatchSize, 64)
	i, err := c.TargetIndex()
	assert.NilError(t, err)
	assert.Equal(t, i, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Assert(t, xerrors.Is(err, model.ErrIOFailure))
}
