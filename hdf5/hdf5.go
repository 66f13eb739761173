// Package hdf5 records the trajectory of a net into an HDF5 file and replays it.
package hdf5

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/PrincetonUniversity/verletnet"
	"github.com/sbinet/go-hdf5"
	"gonum.org/v1/gonum/spatial/r2"
)

// A Dataset stipulates how to generate data and where to store them in the HDF5 file.
type Dataset struct {
	// Name the name of the dataset in the HDF5 file.
	Name string

	// Val is a value of the same concrete type as the underlying type of the data.
	Val interface{}

	// Dims are the dimensions of the data for a single step.
	Dims []int

	// Data is a function that produces the data
	// as a pointer to a slice of row-major concrete values.
	Data func(n *verletnet.Net) interface{}

	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
}

// Config holds the parameters of the HDF5 driver.
type Config struct {
	Output   string     // path of output file
	Steps    int        // total number of steps
	Step     func()     // go to next step
	Datasets []*Dataset // list of datasets

	// Attrs is a pointer to a struct whose fields are saved
	// as attributes of the "config" dataset. It may be nil.
	Attrs interface{}

	Progress io.Writer // receives a percentage while running, nil is silent
}

// Run runs a simulation and saves data to an HDF5 file.
// Each dataset is sampled before every step.
func Run(n *verletnet.Net, conf *Config) (err error) {
	if conf.Steps < 1 {
		return fmt.Errorf("hdf5: need at least one step, got %d", conf.Steps)
	}
	if err := os.MkdirAll(filepath.Dir(conf.Output), 0755); err != nil {
		return err
	}

	file, err := hdf5.CreateFile(conf.Output, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("hdf5: create %s: %w", conf.Output, err)
	}
	defer checkClose(&err, file)

	if err := saveConfig(file, conf.Attrs); err != nil {
		return err
	}

	for _, d := range conf.Datasets {
		if err := d.init(file, conf); err != nil {
			return fmt.Errorf("hdf5: dataset %s: %w", d.Name, err)
		}
		defer checkClose(&err, d)
	}

	for k := uint(0); k < uint(conf.Steps); k++ {
		// show progress as percentage
		if conf.Progress != nil {
			fmt.Fprintf(conf.Progress, "\r% 3d%%", 100*k/uint(conf.Steps))
		}

		for _, d := range conf.Datasets {
			start := make([]uint, len(d.Dims)+1)
			start[0] = k
			if err := d.fspace.SetOffset(start); err != nil {
				return err
			}
			if err := d.dset.WriteSubset(d.Data(n), d.mspace, d.fspace); err != nil {
				return fmt.Errorf("hdf5: write %s at step %d: %w", d.Name, k, err)
			}
		}

		conf.Step()
	}
	if conf.Progress != nil {
		fmt.Fprintf(conf.Progress, "\r100%%\n")
	}
	return nil
}

// PositionsDataset records the position of every point at every step.
// This is the dataset read back by Loader.
func PositionsDataset(n *verletnet.Net) *Dataset {
	return &Dataset{
		Name: "points",
		Val:  r2.Vec{},
		Dims: []int{len(n.Points)},
		Data: func(n *verletnet.Net) interface{} {
			p := n.Positions()
			return &p
		},
	}
}

// MotionDataset records the largest displacement of a point during the previous step.
func MotionDataset() *Dataset {
	return &Dataset{
		Name: "motion",
		Val:  0.0,
		Data: func(n *verletnet.Net) interface{} {
			m := n.Motion()
			return &m
		},
	}
}

// saveConfig creates a "config" dataset with a null dataspace whose attributes
// reflect the whole configuration plus some other appropriate metadata.
func saveConfig(file *hdf5.File, attrs interface{}) (err error) {
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

	scalar, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer checkClose(&err, scalar)

	now := time.Now().String()
	if err := writeAttr(dset, scalar, "Time", &now); err != nil {
		return err
	}

	if attrs == nil {
		return nil
	}
	v := reflect.ValueOf(attrs).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		if err := writeAttr(dset, scalar, f.Name, v.Field(i).Addr().Interface()); err != nil {
			return fmt.Errorf("hdf5: config attribute %s: %w", f.Name, err)
		}
	}
	return nil
}

// writeAttr writes the value pointed to by ptr as a scalar attribute of dset.
func writeAttr(dset *hdf5.Dataset, scalar *hdf5.Dataspace, name string, ptr interface{}) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(reflect.ValueOf(ptr).Elem().Interface())
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	attr, err := dset.CreateAttribute(name, dtype, scalar)
	if err != nil {
		return err
	}
	defer checkClose(&err, attr)

	return attr.Write(ptr, dtype)
}

// init creates a dataset holding one row of Dims per step, with the file
// space selecting a single step and the memory space matching what Data returns.
// A dataset without Dims, like motion, stores one scalar per step.
func (d *Dataset) init(file *hdf5.File, conf *Config) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(d.Val)
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	udims := make([]uint, len(d.Dims)+1)
	udims[0] = uint(conf.Steps)
	for i, n := range d.Dims {
		udims[i+1] = uint(n)
	}

	d.fspace, err = hdf5.CreateSimpleDataspace(udims, nil)
	if err != nil {
		return err
	}

	start := make([]uint, len(udims))
	count := make([]uint, len(udims))
	copy(count, udims)
	count[0] = 1

	if err := d.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	if len(d.Dims) == 0 {
		d.mspace, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	} else {
		d.mspace, err = hdf5.CreateSimpleDataspace(udims[1:], nil)
	}
	if err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	d.dset, err = file.CreateDataset(d.Name, dtype, d.fspace)
	if err != nil {
		checkClose(&err, d.fspace)
		checkClose(&err, d.mspace)
	}

	return err
}

// Close releases the dataset and both its dataspaces, reporting the first error.
func (d *Dataset) Close() (err error) {
	checkClose(&err, d.dset)
	checkClose(&err, d.mspace)
	checkClose(&err, d.fspace)
	return err
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
