//go:build nohdf5
// +build nohdf5

package record

import (
	"github.com/aukilabs/go-tooling/pkg/errors"

	"diesel.com/drape/cloth"
)

//Writer is unavailable in builds without HDF5
type Writer struct{}

func Create(opts Options) (*Writer, error) {
	return nil, errors.New("built without HDF5 support").
		WithType(ErrTypeRecord).
		WithTag("path", opts.Path)
}

func (w *Writer) Frames() int {
	return 0
}

func (w *Writer) Written() int {
	return 0
}

func (w *Writer) Observe(sim *cloth.Simulation) error {
	return w.Write(sim)
}

func (w *Writer) Write(sim *cloth.Simulation) error {
	return errors.New("built without HDF5 support").
		WithType(ErrTypeRecord)
}

func (w *Writer) Close() error {
	return nil
}
