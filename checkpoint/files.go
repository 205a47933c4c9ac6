package checkpoint

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/synthtrain/model"
	"golang.org/x/xerrors"
)

/*
Files stores every milestone as xz compressed gob file model-<milestone>.pt in the folder
*/
type Files struct {
	Folder string
}

func (f Files) Path(m Milestone) string {
	return filepath.Join(f.Folder, fmt.Sprintf("model-%v.pt", m))
}

func (f Files) Save(m Milestone, s State) (err error) {
	path := f.Path(m)
	b, err := encode(s)
	if err != nil {
		return model.Failure(model.ErrIOFailure, err, "encode checkpoint %v", m)
	}
	if err = os.MkdirAll(f.Folder, 0755); err != nil {
		return model.Failure(model.ErrIOFailure, err, "create folder %v", f.Folder)
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
	if _, err = xw.Write(b); err != nil {
		return model.Failure(model.ErrIOFailure, err, "write %v", path)
	}
	if err = xw.Close(); err != nil {
		return model.Failure(model.ErrIOFailure, err, "write %v", path)
	}
	if err = wh.Commit(); err != nil {
		return model.Failure(model.ErrIOFailure, err, "commit %v", path)
	}
	return nil
}

func (f Files) Load(m Milestone) (s State, err error) {
	path := f.Path(m)
	if _, err = os.Stat(path); os.IsNotExist(err) {
		return s, xerrors.Errorf("milestone %v: %w", m, ErrNotFound)
	}
	rd, err := iokit.File(path).Open()
	if err != nil {
		return s, model.Failure(model.ErrIOFailure, err, "open %v", path)
	}
	defer rd.Close()
	xr, err := xz.NewReader(rd)
	if err != nil {
		return s, model.Failure(model.ErrIOFailure, err, "decompress %v", path)
	}
	b, err := ioutil.ReadAll(xr)
	if err != nil {
		return s, model.Failure(model.ErrIOFailure, err, "read %v", path)
	}
	if err = decode(b, &s); err != nil {
		err = model.Failure(model.ErrIOFailure, err, "decode %v", path)
	}
	return
}
