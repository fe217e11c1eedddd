//go:build !nohdf5
// +build !nohdf5

package record

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"gonum.org/v1/hdf5"

	"diesel.com/drape/cloth"
	"diesel.com/drape/utils"
)

//A dataset is one fixed size HDF5 dataset written frame by frame.
type dataset struct {
	name   string
	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
	dims   int
}

//Writer writes simulation frames into an HDF5 file.
type Writer struct {
	opts   Options
	file   *hdf5.File
	frames int
	frame  int

	positions  *dataset
	velocities *dataset
	time       *dataset
	wind       *dataset

	buf []float32
}

//Create creates the output file and its datasets.
func Create(opts Options) (*Writer, error) {
	if opts.Every < 1 {
		opts.Every = 1
	}
	if opts.Particles < 1 || opts.Ticks < 0 {
		return nil, errors.New("invalid recording size").
			WithType(ErrTypeRecord).
			WithTag("particles", opts.Particles).
			WithTag("ticks", opts.Ticks)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, wrap(err, "creating output directory failed", opts.Path)
	}

	file, err := hdf5.CreateFile(opts.Path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, wrap(err, "creating output file failed", opts.Path)
	}

	w := &Writer{
		opts:   opts,
		file:   file,
		frames: Frames(opts.Ticks, opts.Every),
	}

	if err := w.init(); err != nil {
		w.Close()
		return nil, wrap(err, "creating datasets failed", opts.Path)
	}

	logs.WithTag("path", opts.Path).
		WithTag("frames", w.frames).
		WithTag("particles", opts.Particles).
		Info("recording started")
	return w, nil
}

func (w *Writer) init() error {
	if err := saveConfig(w.file, w.opts.Attributes); err != nil {
		return err
	}

	n := w.opts.Particles
	frames := uint(w.frames)
	var err error
	if w.positions, err = newDataset(w.file, "positions", frames, float32(0), n, 3); err != nil {
		return err
	}
	if w.velocities, err = newDataset(w.file, "velocities", frames, float32(0), n, 3); err != nil {
		return err
	}
	if w.time, err = newDataset(w.file, "time", frames, float64(0)); err != nil {
		return err
	}
	if w.wind, err = newDataset(w.file, "wind", frames, float32(0)); err != nil {
		return err
	}
	return nil
}

//Frames is the total number of frames the file holds.
func (w *Writer) Frames() int {
	return w.frames
}

//Written is the number of frames written so far.
func (w *Writer) Written() int {
	return w.frame
}

//Observe records the simulation state when its tick count falls on the
//sampling interval. It is meant to be called before the first tick and after
//every tick.
func (w *Writer) Observe(sim *cloth.Simulation) error {
	if sim.Timer.Ticks%w.opts.Every != 0 {
		return nil
	}
	return w.Write(sim)
}

//Write appends the current simulation state as the next frame.
func (w *Writer) Write(sim *cloth.Simulation) error {
	if w.frame >= w.frames {
		return errors.New("recording is full").
			WithType(ErrTypeRecord).
			WithTag("frames", w.frames).
			WithTag("tick", sim.Timer.Ticks)
	}
	if sim.Cloth.Count != w.opts.Particles {
		return errors.New("particle count mismatch").
			WithType(ErrTypeRecord).
			WithTag("expected", w.opts.Particles).
			WithTag("particles", sim.Cloth.Count)
	}

	k := uint(w.frame)

	w.buf = utils.FlattenPositions(w.buf, sim.Cloth.Positions)
	if err := w.positions.write(k, &w.buf); err != nil {
		return w.writeError(err, "positions")
	}

	w.buf = utils.FlattenPositions(w.buf, sim.Cloth.Velocities)
	if err := w.velocities.write(k, &w.buf); err != nil {
		return w.writeError(err, "velocities")
	}

	t := sim.Timer.T
	if err := w.time.write(k, &t); err != nil {
		return w.writeError(err, "time")
	}

	wind := sim.Wind()
	if err := w.wind.write(k, &wind); err != nil {
		return w.writeError(err, "wind")
	}

	w.frame++
	return nil
}

func (w *Writer) writeError(err error, name string) error {
	return errors.New("writing frame failed").
		WithType(ErrTypeRecord).
		WithTag("dataset", name).
		WithTag("frame", w.frame).
		Wrap(err)
}

//Close closes the datasets and the file. Frames that were never written stay
//zero filled.
func (w *Writer) Close() (err error) {
	for _, d := range []*dataset{w.positions, w.velocities, w.time, w.wind} {
		if d != nil {
			checkClose(&err, d)
		}
	}
	checkClose(&err, w.file)

	if err != nil {
		return wrap(err, "closing output file failed", w.opts.Path)
	}
	logs.WithTag("path", w.opts.Path).
		WithTag("frames", w.frame).
		Info("recording closed")
	return nil
}

//newDataset creates a dataset of frames x dims values of the type of val.
func newDataset(file *hdf5.File, name string, frames uint, val interface{}, dims ...int) (d *dataset, err error) {
	dtype, err := hdf5.NewDatatypeFromValue(val)
	if err != nil {
		return nil, err
	}
	defer checkClose(&err, dtype)

	udims := make([]uint, len(dims)+1)
	udims[0] = frames
	for i, n := range dims {
		udims[i+1] = uint(n)
	}

	d = &dataset{name: name, dims: len(udims)}
	d.fspace, err = hdf5.CreateSimpleDataspace(udims, nil)
	if err != nil {
		return nil, err
	}

	start := make([]uint, len(udims))
	count := make([]uint, len(udims))
	copy(count, udims)
	count[0] = 1
	if err := d.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
		checkClose(&err, d.fspace)
		return nil, err
	}

	if len(dims) == 0 {
		d.mspace, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	} else {
		d.mspace, err = hdf5.CreateSimpleDataspace(udims[1:], nil)
	}
	if err != nil {
		checkClose(&err, d.fspace)
		return nil, err
	}

	d.dset, err = file.CreateDataset(name, dtype, d.fspace)
	if err != nil {
		checkClose(&err, d.fspace)
		checkClose(&err, d.mspace)
		return nil, err
	}
	return d, nil
}

//write stores data as frame k.
func (d *dataset) write(k uint, data interface{}) error {
	start := make([]uint, d.dims)
	start[0] = k
	if err := d.fspace.SetOffset(start); err != nil {
		return err
	}
	return d.dset.WriteSubset(data, d.mspace, d.fspace)
}

//Close closes the HDF5 dataset and dataspaces.
func (d *dataset) Close() error {
	if err := d.dset.Close(); err != nil {
		return err
	}
	if err := d.mspace.Close(); err != nil {
		return err
	}
	return d.fspace.Close()
}

//saveConfig creates a "config" dataset with a null dataspace whose attributes
//hold the given strings plus the creation time.
func saveConfig(file *hdf5.File, attributes map[string]string) (err error) {
	null, err := hdf5.CreateDataspace(hdf5.S_NULL)
	if err != nil {
		return err
	}
	defer checkClose(&err, null)

	anytype, err := hdf5.NewDatatypeFromValue(0)
	if err != nil {
		return err
	}
	defer checkClose(&err, anytype)

	dset, err := file.CreateDataset("config", anytype, null)
	if err != nil {
		return err
	}
	defer checkClose(&err, dset)

	dtype, err := hdf5.NewDatatypeFromValue("")
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	scalar, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer checkClose(&err, scalar)

	attrs := map[string]string{"created": time.Now().UTC().Format(time.RFC3339)}
	for k, v := range attributes {
		attrs[k] = v
	}

	for name, value := range attrs {
		attr, err := dset.CreateAttribute(name, dtype, scalar)
		if err != nil {
			return err
		}
		value := value
		werr := attr.Write(&value, dtype)
		cerr := attr.Close()
		if werr != nil {
			return werr
		}
		if cerr != nil {
			return cerr
		}
	}
	return nil
}

func wrap(err error, msg string, path string) error {
	return errors.New(msg).
		WithType(ErrTypeRecord).
		WithTag("path", path).
		Wrap(err)
}

//checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
