package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/synthtrain/model"
	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/mat"
)

// CachePath is the cache file of dataset name with n rows and d features
func CachePath(folder, name string, n, d int) string {
	return filepath.Join(folder, fmt.Sprintf("%s_n%d_d%d.pt", name, n, d))
}

/*
Save writes features and labels as xz compressed gonum binary matrices.
The file appears only when completely written.
*/
func Save(path string, s *Synthetic) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return model.Failure(model.ErrIOFailure, err, "create folder for %v", path)
	}
	wh, err := iokit.File(path).Create()
	if err != nil {
		return model.Failure(model.ErrIOFailure, err, "create %v", path)
	}
	defer wh.End()
	xw, err := xz.NewWriter(wh)
	if err != nil {
		return model.Failure(model.ErrIOFailure, err, "compress %v", path)
	}
	for _, m := range []*mat.Dense{s.Features, s.Labels} {
		if _, err = m.MarshalBinaryTo(xw); err != nil {
			return model.Failure(model.ErrIOFailure, err, "write %v", path)
		}
	}
	if err = xw.Close(); err != nil {
		return model.Failure(model.ErrIOFailure, err, "write %v", path)
	}
	if err = wh.Commit(); err != nil {
		return model.Failure(model.ErrIOFailure, err, "commit %v", path)
	}
	return nil
}

// Load reads dataset written by Save
func Load(path string) (*Synthetic, error) {
	rd, err := iokit.File(path).Open()
	if err != nil {
		return nil, model.Failure(model.ErrIOFailure, err, "open %v", path)
	}
	defer rd.Close()
	xr, err := xz.NewReader(rd)
	if err != nil {
		return nil, model.Failure(model.ErrIOFailure, err, "decompress %v", path)
	}
	s := &Synthetic{Features: &mat.Dense{}, Labels: &mat.Dense{}}
	for _, m := range []*mat.Dense{s.Features, s.Labels} {
		if _, err = m.UnmarshalBinaryFrom(xr); err != nil {
			return nil, model.Failure(model.ErrIOFailure, err, "read %v", path)
		}
	}
	if r, c := s.Labels.Dims(); r != s.Len() || c != 2 {
		return nil, model.Failure(model.ErrIOFailure, zorros.Errorf("%dx%d labels for %d rows", r, c, s.Len()), "read %v", path)
	}
	return s, nil
}
