/*
Package trainer drives training of a classifier on a synthetic dataset:
a fixed number of optimization steps with periodic evaluation and checkpointing
*/
package trainer

import (
	"fmt"
	"path/filepath"

	"go-ml.dev/pkg/synthtrain/checkpoint"
	"go-ml.dev/pkg/synthtrain/config"
	"go-ml.dev/pkg/synthtrain/dataset"
	"go-ml.dev/pkg/synthtrain/fu"
	"go-ml.dev/pkg/synthtrain/metrics"
	"go-ml.dev/pkg/synthtrain/model"
	"go-ml.dev/pkg/synthtrain/tracker"
	"golang.org/x/xerrors"
	"k8s.io/klog/v2"
)

// Sections of logged scalars
const (
	TrainSection = "num_type_cls_train"
	EvalSection  = "num_type_cls_eval"
	TestSection  = "num_type_cls_test"
)

// ErrFinished is reported by Step when the step counter reached train_num_steps
var ErrFinished = xerrors.New("training is finished")

/*
Phase of the training loop
*/
type Phase int

const (
	Idle Phase = iota
	Running
	Evaluating
	Finished
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Evaluating:
		return "evaluating"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

/*
Trainer is the training loop controller, it's the only writer of the model,
optimizer and step counter and is not safe for concurrent use
*/
type Trainer struct {
	cfg     config.Config
	model   model.Model
	opt     model.Optimizer
	device  model.Device
	tracker tracker.Tracker
	store   checkpoint.Store

	target int
	splits dataset.Splits
	stream *dataset.Stream
	eval   []dataset.Batch
	test   []dataset.Batch

	step  int
	phase Phase
}

/*
New builds datasets described by configuration and binds them to the model and optimizer.
Nil tracker logs to klog, nil store writes checkpoint files into the output folder.
*/
func New(m model.Model, opt model.Optimizer, cfg config.Config, tr tracker.Tracker, st checkpoint.Store) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target, err := cfg.TargetIndex()
	if err != nil {
		return nil, err
	}
	dev, err := model.NewDevice(cfg.UseCuda)
	if err != nil {
		return nil, err
	}
	folder := cfg.DataFolder
	if folder == "" {
		folder = fu.DataPath("synthetic")
	}
	splits, err := dataset.Build(dataset.Options{
		Folder:    folder,
		Name:      cfg.DatasetName,
		Size:      cfg.DataSize,
		Dim:       cfg.FeatureDim,
		Overwrite: cfg.OverwriteDataset,
		Ratio:     cfg.TrainSetRatio,
		Seed:      cfg.Seed,
	})
	if err != nil {
		return nil, err
	}
	stream, err := dataset.NewStream(splits.Train, cfg.TrainBatchSize, cfg.Seed)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		tr = tracker.Klog{}
	}
	if st == nil {
		st = checkpoint.Files{Folder: filepath.Clean(cfg.OutputFolder)}
	}
	return &Trainer{
		cfg:     cfg,
		model:   m,
		opt:     opt,
		device:  dev,
		tracker: tr,
		store:   st,
		target:  target,
		splits:  splits,
		stream:  stream,
		eval:    dataset.Batches(splits.Eval, cfg.EvalBatchSize),
		test:    dataset.Batches(splits.Test, cfg.EvalBatchSize),
	}, nil
}

func (t *Trainer) Config() config.Config   { return t.cfg }
func (t *Trainer) Splits() dataset.Splits  { return t.splits }
func (t *Trainer) GlobalStep() int         { return t.step }
func (t *Trainer) Phase() Phase            { return t.phase }
func (t *Trainer) Device() model.Device    { return t.device }
func (t *Trainer) Model() model.Model      { return t.model }
func (t *Trainer) Store() checkpoint.Store { return t.store }

// State is a deep copy of the step counter, model parameters and optimizer state
func (t *Trainer) State() checkpoint.State {
	return checkpoint.State{
		Step:      t.step,
		Model:     model.ParametersOf(t.model),
		Optimizer: t.opt.State(),
	}
}

/*
LoadState restores trainer state and rewinds the train stream to the
batch the restored run would consume next
*/
func (t *Trainer) LoadState(s checkpoint.State) error {
	if s.Step < 0 || s.Step > t.cfg.TrainNumSteps {
		return xerrors.Errorf("checkpoint step %d is out of [0,%d]: %w", s.Step, t.cfg.TrainNumSteps, model.ErrInvalidConfiguration)
	}
	if err := model.LoadParameters(t.model, s.Model); err != nil {
		return err
	}
	if err := t.opt.LoadState(s.Optimizer); err != nil {
		return err
	}
	t.step = s.Step
	t.stream.Seek(s.Step)
	t.phase = Idle
	return nil
}

// Resume loads state saved under the milestone
func (t *Trainer) Resume(m checkpoint.Milestone) error {
	s, err := t.store.Load(m)
	if err != nil {
		return err
	}
	if err = t.LoadState(s); err != nil {
		return err
	}
	klog.InfoS("training resumed", "milestone", m, "step", t.step)
	return nil
}

func (t *Trainer) save(m checkpoint.Milestone) error {
	if err := t.store.Save(m, t.State()); err != nil {
		return err
	}
	klog.V(1).InfoS("checkpoint saved", "milestone", m, "step", t.step)
	return nil
}

/*
Step runs one optimization iteration and returns its loss
*/
func (t *Trainer) Step() (float64, error) {
	if t.step >= t.cfg.TrainNumSteps {
		return 0, xerrors.Errorf("step %d of %d: %w", t.step, t.cfg.TrainNumSteps, ErrFinished)
	}
	b := t.stream.Next()
	x, err := t.device.Put(b.X)
	if err != nil {
		return 0, err
	}
	y, err := t.device.Put(b.Y)
	if err != nil {
		return 0, err
	}
	logits, err := t.model.Forward(x)
	if err != nil {
		return 0, err
	}
	loss, grad := model.CrossEntropy(logits, fu.Argmax(y))
	if err = t.model.Backward(grad); err != nil {
		return 0, err
	}
	if err = t.opt.Step(); err != nil {
		return 0, err
	}
	t.opt.ZeroGrad()
	if err = t.tracker.Log(TrainSection, t.step, map[string]float64{"loss": loss}); err != nil {
		return 0, err
	}
	t.step++
	return loss, nil
}

/*
Evaluate computes accuracy of the model on batches and switches the model back to training mode
*/
func (t *Trainer) Evaluate(batches []dataset.Batch) (metrics.Accuracy, error) {
	a, err := metrics.Evaluate(t.model, t.device, batches, &t.target)
	t.model.SetTraining(true)
	return a, err
}

/*
Train runs remaining iterations until the step counter reaches train_num_steps.
Every save_and_eval_every steps the model is evaluated on the eval partition and
the state is saved under milestone step/save_and_eval_every.
Finally the model is evaluated on the test partition and the state is saved under the final milestone.
*/
func (t *Trainer) Train() (*Report, error) {
	report := &Report{Start: t.step}
	t.model.SetTraining(true)
	t.phase = Running
	for t.step < t.cfg.TrainNumSteps {
		loss, err := t.Step()
		if err != nil {
			return nil, err
		}
		report.LastLoss = loss
		klog.V(2).InfoS("training", "step", t.step, "loss", fmt.Sprintf("%.4f", loss))
		if fu.DivisibleBy(t.step, t.cfg.SaveAndEvalEvery) {
			t.phase = Evaluating
			a, err := t.Evaluate(t.eval)
			if err != nil {
				return nil, err
			}
			if err = t.tracker.Log(EvalSection, t.step, a.Scalars()); err != nil {
				return nil, err
			}
			m := checkpoint.At(t.step / t.cfg.SaveAndEvalEvery)
			if err = t.save(m); err != nil {
				return nil, err
			}
			report.Evals = append(report.Evals, Eval{Step: t.step, Milestone: m, Accuracy: a})
			t.phase = Running
		}
	}
	t.phase = Evaluating
	a, err := t.Evaluate(t.test)
	if err != nil {
		return nil, err
	}
	if err = t.tracker.Log(TestSection, t.step, a.Scalars()); err != nil {
		return nil, err
	}
	if err = t.save(checkpoint.Final); err != nil {
		return nil, err
	}
	t.phase = Finished
	report.Steps = t.step
	report.Test = a
	klog.InfoS("synthetic classifier training complete", "steps", t.step,
		"acc_over_all", a.OverAll, "acc_over_tgt", a.OverTarget)
	return report, nil
}
