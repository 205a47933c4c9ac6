package fu

import (
	"go-ml.dev/pkg/iokit"
	"math"
	"path/filepath"
)

// DataPath resolves relative dataset folder against the go-ml cache
func DataPath(s string) string {
	if filepath.IsAbs(s) {
		return s
	}
	return iokit.CacheFile(filepath.Join("go-ml", "Datasets", s))
}

func nan() float64 { return math.NaN() }
