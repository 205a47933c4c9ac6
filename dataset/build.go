package dataset

import (
	"fmt"
	"math/rand"
	"os"

	"go-ml.dev/pkg/synthtrain/model"
	"go-ml.dev/pkg/zorros/zorros"
	"go-ml.dev/pkg/zorros/zlog"
	"k8s.io/klog/v2"
)

/*
Options describe which synthetic dataset to build and how to split it
*/
type Options struct {
	Folder    string  // cache folder
	Name      string  // synthetic dataset name
	Size      int     // rows count
	Dim       int     // features count
	Overwrite bool    // regenerate even if cache exists
	Ratio     float64 // train set ratio
	Seed      int64
}

func (o Options) CachePath() string {
	return CachePath(o.Folder, o.Name, o.Size, o.Dim)
}

/*
Materialize loads the dataset from cache or generates and caches it.
Concurrent builders of the same cache file are not synchronized.
*/
func Materialize(o Options) (*Synthetic, error) {
	if _, err := lookup(o.Name, o.Dim); err != nil {
		return nil, err
	}
	path := o.CachePath()
	_, statErr := os.Stat(path)
	if statErr == nil && !o.Overwrite {
		s, err := Load(path)
		if err != nil {
			return nil, err
		}
		if s.Len() != o.Size || s.Dim() != o.Dim {
			return nil, model.Failure(model.ErrIOFailure,
				zorros.Errorf("cached dataset is %dx%d", s.Len(), s.Dim()), "load %v", path)
		}
		klog.V(1).InfoS("synthetic dataset loaded from cache", "path", path)
		return s, nil
	}
	if statErr == nil {
		zlog.Warning(fmt.Sprintf("overwriting synthetic dataset %v", path))
	}
	s, err := Generate(o.Name, o.Size, o.Dim, rand.New(rand.NewSource(o.Seed)))
	if err != nil {
		return nil, err
	}
	if err = Save(path, s); err != nil {
		return nil, err
	}
	klog.V(1).InfoS("synthetic dataset generated", "path", path, "size", o.Size, "dim", o.Dim)
	return s, nil
}

// Build materializes the dataset and splits it into train, eval and test partitions
func Build(o Options) (Splits, error) {
	s, err := Materialize(o)
	if err != nil {
		return Splits{}, err
	}
	return Split(s, o.Ratio, o.Seed), nil
}
