/*
Package config holds the immutable configuration of the synthetic data
classifier trainer and experiment presets applied on top of defaults
*/
package config

import (
	"go-ml.dev/pkg/synthtrain/model"
	"golang.org/x/xerrors"
)

/*
Config is the trainer configuration, it's passed by value and never changes after trainer construction
*/
type Config struct {
	// empty DataFolder means the go-ml datasets cache
	DataFolder       string     `mapstructure:"data_folder"`
	OutputFolder     string     `mapstructure:"output_folder"`
	DatasetName      string     `mapstructure:"synthetic_dataset_name"`
	OverwriteDataset bool       `mapstructure:"overwrite_synthetic_dataset"`
	LearningRate     float64    `mapstructure:"train_lr"`
	AdamBetas        [2]float64 `mapstructure:"adam_betas"`
	TrainNumSteps    int        `mapstructure:"train_num_steps"`
	TrainBatchSize   int        `mapstructure:"train_batch_size"`
	EvalBatchSize    int        `mapstructure:"eval_batch_size"`
	SaveAndEvalEvery int        `mapstructure:"save_and_eval_every"`
	ClassNames       []string   `mapstructure:"num_type_list"`
	TargetClass      string     `mapstructure:"tgt_num_type"`
	DataSize         int        `mapstructure:"synthetic_data_size"`
	FeatureDim       int        `mapstructure:"synthetic_data_feature_dim"`
	TrainSetRatio    float64    `mapstructure:"train_set_ratio"`
	HiddenDim        int        `mapstructure:"hidden_dim"`
	UseCuda          bool       `mapstructure:"use_cuda"`
	Seed             int64      `mapstructure:"seed"`
}

func Default() Config {
	return Config{
		OutputFolder:     "outputs",
		DatasetName:      "nonlinear_additive",
		LearningRate:     1e-4,
		AdamBetas:        [2]float64{0.9, 0.99},
		TrainNumSteps:    1000,
		TrainBatchSize:   64,
		EvalBatchSize:    64,
		SaveAndEvalEvery: 1000,
		ClassNames:       []string{"0", "1"},
		TargetClass:      "1",
		DataSize:         10000,
		FeatureDim:       3,
		TrainSetRatio:    0.8,
		HiddenDim:        64,
		Seed:             2024,
	}
}

// TargetIndex is the position of the target class in the class list
func (c Config) TargetIndex() (int, error) {
	for i, n := range c.ClassNames {
		if n == c.TargetClass {
			return i, nil
		}
	}
	return 0, xerrors.Errorf("target class %q is not in %v: %w", c.TargetClass, c.ClassNames, model.ErrInvalidConfiguration)
}

// Validate reports ErrInvalidConfiguration for values the trainer can't run with
func (c Config) Validate() error {
	invalid := func(field string, v interface{}) error {
		return xerrors.Errorf("bad %v value %v: %w", field, v, model.ErrInvalidConfiguration)
	}
	switch {
	case c.DatasetName == "":
		return invalid("synthetic_dataset_name", `""`)
	case c.LearningRate <= 0:
		return invalid("train_lr", c.LearningRate)
	case c.TrainNumSteps < 0:
		return invalid("train_num_steps", c.TrainNumSteps)
	case c.TrainBatchSize <= 0:
		return invalid("train_batch_size", c.TrainBatchSize)
	case c.EvalBatchSize <= 0:
		return invalid("eval_batch_size", c.EvalBatchSize)
	case c.SaveAndEvalEvery <= 0:
		return invalid("save_and_eval_every", c.SaveAndEvalEvery)
	case c.DataSize <= 0:
		return invalid("synthetic_data_size", c.DataSize)
	case c.FeatureDim <= 0:
		return invalid("synthetic_data_feature_dim", c.FeatureDim)
	case c.TrainSetRatio <= 0 || c.TrainSetRatio >= 1:
		return invalid("train_set_ratio", c.TrainSetRatio)
	case c.HiddenDim <= 0:
		return invalid("hidden_dim", c.HiddenDim)
	case len(c.ClassNames) < 2:
		return invalid("num_type_list", c.ClassNames)
	}
	_, err := c.TargetIndex()
	return err
}
