package trainer

import (
	"os"
	"path/filepath"
	"testing"

	"go-ml.dev/pkg/synthtrain/checkpoint"
	"go-ml.dev/pkg/synthtrain/config"
	"go-ml.dev/pkg/synthtrain/model"
	"go-ml.dev/pkg/synthtrain/tracker"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
)

func testConfig(t *testing.T) config.Config {
	c := config.Default()
	c.DataFolder = filepath.Join(t.TempDir(), "data")
	c.OutputFolder = filepath.Join(t.TempDir(), "outputs")
	c.DataSize = 100
	c.FeatureDim = 3
	c.TrainNumSteps = 25
	c.SaveAndEvalEvery = 10
	c.TrainBatchSize = 8
	c.EvalBatchSize = 8
	c.LearningRate = 1e-2
	c.HiddenDim = 8
	return c
}

func newTrainer(t *testing.T, c config.Config, seed int64, tr tracker.Tracker, st checkpoint.Store) *Trainer {
	m := model.NewMLP(c.FeatureDim, c.HiddenDim, len(c.ClassNames), seed)
	opt := model.NewAdam(m.Parameters(), c.LearningRate, c.AdamBetas)
	x, err := New(m, opt, c, tr, st)
	assert.NilError(t, err)
	return x
}

func Test_SplitSizes(t *testing.T) {
	x := newTrainer(t, testConfig(t), 0, &tracker.Memory{}, checkpoint.NewMemory())
	sp := x.Splits()
	assert.Equal(t, sp.Train.Len(), 64)
	assert.Equal(t, sp.Eval.Len(), 16)
	assert.Equal(t, sp.Test.Len(), 20)
	assert.Equal(t, x.Phase(), Idle)
}

func Test_Train(t *testing.T) {
	tr := &tracker.Memory{}
	st := checkpoint.NewMemory()
	x := newTrainer(t, testConfig(t), 0, tr, st)
	report, err := x.Train()
	assert.NilError(t, err)

	assert.Equal(t, x.GlobalStep(), 25)
	assert.Equal(t, x.Phase(), Finished)
	assert.Equal(t, report.Steps, 25)
	assert.Equal(t, report.Start, 0)

	train := tr.Section(TrainSection)
	assert.Equal(t, len(train), 25)
	for i, r := range train {
		assert.Equal(t, r.Step, i)
		_, ok := r.Scalars["loss"]
		assert.Assert(t, ok)
	}
	eval := tr.Section(EvalSection)
	assert.Equal(t, len(eval), 2)
	assert.Equal(t, eval[0].Step, 10)
	assert.Equal(t, eval[1].Step, 20)
	test := tr.Section(TestSection)
	assert.Equal(t, len(test), 1)
	assert.Equal(t, test[0].Scalars["acc_over_all"], report.Test.OverAll)

	names := []string{}
	for _, m := range st.Milestones() {
		names = append(names, m.String())
	}
	assert.DeepEqual(t, names, []string{"1", "2", "final"})
	s, err := st.Load(checkpoint.At(2))
	assert.NilError(t, err)
	assert.Equal(t, s.Step, 20)
	s, err = st.Load(checkpoint.Final)
	assert.NilError(t, err)
	assert.Equal(t, s.Step, 25)
	assert.Assert(t, s.Model.Equal(model.ParametersOf(x.Model())))

	assert.Equal(t, len(report.Evals), 2)
	best, ok := report.Best()
	assert.Assert(t, ok)
	assert.Assert(t, best.Step == 10 || best.Step == 20)
	assert.Assert(t, x.Model().Training())

	_, err = x.Step()
	assert.Assert(t, xerrors.Is(err, ErrFinished))
	assert.Equal(t, x.GlobalStep(), 25)
}

func Test_ResumeReproducesTrajectory(t *testing.T) {
	c := testConfig(t)
	full := &tracker.Memory{}
	st := checkpoint.NewMemory()
	a := newTrainer(t, c, 0, full, st)
	_, err := a.Train()
	assert.NilError(t, err)

	resumed := &tracker.Memory{}
	b := newTrainer(t, c, 77, resumed, checkpoint.NewMemory())
	assert.NilError(t, b.LoadState(mustLoad(t, st, checkpoint.At(1))))
	assert.Equal(t, b.GlobalStep(), 10)
	_, err = b.Train()
	assert.NilError(t, err)

	want := full.Section(TrainSection)[10:]
	got := resumed.Section(TrainSection)
	assert.Equal(t, len(got), len(want))
	for i := range got {
		assert.Equal(t, got[i].Step, want[i].Step)
		assert.Equal(t, got[i].Scalars["loss"], want[i].Scalars["loss"], "step %d", got[i].Step)
	}
	final := mustLoad(t, st, checkpoint.Final)
	assert.Assert(t, final.Model.Equal(b.State().Model))
	assert.Assert(t, final.Optimizer.Equal(b.State().Optimizer))
}

func mustLoad(t *testing.T, st checkpoint.Store, m checkpoint.Milestone) checkpoint.State {
	s, err := st.Load(m)
	assert.NilError(t, err)
	return s
}

func Test_ResumeFromFiles(t *testing.T) {
	c := testConfig(t)
	a := newTrainer(t, c, 0, nil, nil)
	_, err := a.Train()
	assert.NilError(t, err)
	for _, n := range []string{"model-1.pt", "model-2.pt", "model-final.pt"} {
		_, err := os.Stat(filepath.Join(c.OutputFolder, n))
		assert.NilError(t, err, n)
	}

	b := newTrainer(t, c, 5, &tracker.Memory{}, nil)
	assert.NilError(t, b.Resume(checkpoint.At(2)))
	assert.Equal(t, b.GlobalStep(), 20)
	err = b.Resume(checkpoint.At(9))
	assert.Assert(t, xerrors.Is(err, checkpoint.ErrNotFound))
}

func Test_LoadStateOutOfRange(t *testing.T) {
	x := newTrainer(t, testConfig(t), 0, &tracker.Memory{}, checkpoint.NewMemory())
	s := x.State()
	s.Step = 26
	assert.Assert(t, xerrors.Is(x.LoadState(s), model.ErrInvalidConfiguration))
}

type failingStore struct {
	*checkpoint.Memory
	at checkpoint.Milestone
}

func (f failingStore) Save(m checkpoint.Milestone, s checkpoint.State) error {
	if m == f.at {
		return model.Failure(model.ErrIOFailure, os.ErrPermission, "save %v", m)
	}
	return f.Memory.Save(m, s)
}

func Test_FailurePropagates(t *testing.T) {
	st := failingStore{checkpoint.NewMemory(), checkpoint.At(2)}
	x := newTrainer(t, testConfig(t), 0, &tracker.Memory{}, st)
	_, err := x.Train()
	assert.Assert(t, xerrors.Is(err, model.ErrIOFailure))
	assert.Equal(t, x.GlobalStep(), 20)
	assert.Equal(t, len(st.Milestones()), 1)
	s, err := st.Load(checkpoint.At(1))
	assert.NilError(t, err)
	assert.Equal(t, s.Step, 10)
}

func Test_InvalidConfiguration(t *testing.T) {
	c := testConfig(t)
	c.DatasetName = "unknown"
	m := model.NewMLP(3, 4, 2, 0)
	_, err := New(m, model.NewAdam(m.Parameters(), 1e-3, c.AdamBetas), c, nil, nil)
	assert.Assert(t, xerrors.Is(err, model.ErrInvalidConfiguration))

	c = testConfig(t)
	c.UseCuda = true
	_, err = New(m, model.NewAdam(m.Parameters(), 1e-3, c.AdamBetas), c, nil, nil)
	assert.Assert(t, xerrors.Is(err, model.ErrResourceExhaustion))
}
