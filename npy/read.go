package npy

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sbinet/npyio"
)

// Archive is an open .npz file.
type Archive struct {
	Path  string
	rc    *zip.ReadCloser
	files map[string]*zip.File
}

// OpenArchive opens the .npz archive at path. Entry names are exposed without
// their .npy suffix.
func OpenArchive(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	files := make(map[string]*zip.File, len(rc.File))
	for _, f := range rc.File {
		files[strings.TrimSuffix(f.Name, Suffix)] = f
	}
	return &Archive{Path: path, rc: rc, files: files}, nil
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	return a.rc.Close()
}

// Keys returns the sorted entry names.
func (a *Archive) Keys() []string {
	keys := make([]string, 0, len(a.files))
	for k := range a.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether the archive contains name.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[strings.TrimSuffix(name, Suffix)]
	return ok
}

// Uint8s decodes a uint8 entry.
func (a *Archive) Uint8s(name string) ([]uint8, []int, error) {
	var data []uint8
	shape, err := a.decode(name, func(r *npyio.Reader) error {
		var err error
		data, err = decodeUint8s(r)
		return err
	})
	return data, shape, err
}

// Float64s decodes a numeric entry, widening it to float64.
func (a *Archive) Float64s(name string) ([]float64, []int, error) {
	var data []float64
	shape, err := a.decode(name, func(r *npyio.Reader) error {
		var err error
		data, err = decodeFloat64s(r)
		return err
	})
	return data, shape, err
}

func (a *Archive) decode(name string, fn func(*npyio.Reader) error) ([]int, error) {
	f, ok := a.files[strings.TrimSuffix(name, Suffix)]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, a.Path)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %q in %s: %w", name, a.Path, err)
	}
	defer rc.Close()

	r, err := newReader(rc)
	if err != nil {
		return nil, fmt.Errorf("entry %q in %s: %w", name, a.Path, err)
	}
	if err := fn(r); err != nil {
		return nil, fmt.Errorf("entry %q in %s: %w", name, a.Path, err)
	}
	return append([]int(nil), r.Header.Descr.Shape...), nil
}

// LoadUint8s reads a uint8 .npy file.
func LoadUint8s(path string) ([]uint8, []int, error) {
	var data []uint8
	shape, err := loadFile(path, func(r *npyio.Reader) error {
		var err error
		data, err = decodeUint8s(r)
		return err
	})
	return data, shape, err
}

// LoadFloat64s reads a numeric .npy file, widening it to float64.
func LoadFloat64s(path string) ([]float64, []int, error) {
	var data []float64
	shape, err := loadFile(path, func(r *npyio.Reader) error {
		var err error
		data, err = decodeFloat64s(r)
		return err
	})
	return data, shape, err
}

// LoadDtype returns the type descriptor and shape stored in a .npy header.
func LoadDtype(path string) (Dtype, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	r, err := newReader(f)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	return Dtype(r.Header.Descr.Type), r.Header.Descr.Shape, nil
}

func loadFile(path string, fn func(*npyio.Reader) error) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := newReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := fn(r); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return append([]int(nil), r.Header.Descr.Shape...), nil
}

func newReader(rd io.Reader) (*npyio.Reader, error) {
	r, err := npyio.NewReader(rd)
	if err != nil {
		return nil, err
	}
	if r.Header.Descr.Fortran {
		return nil, fmt.Errorf("fortran-ordered arrays are not supported")
	}
	return r, nil
}

func decodeUint8s(r *npyio.Reader) ([]uint8, error) {
	switch r.Header.Descr.Type {
	case "|u1", "<u1", "u1":
		var v []uint8
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("expected uint8 data, got dtype %q", r.Header.Descr.Type)
	}
}

func decodeFloat64s(r *npyio.Reader) ([]float64, error) {
	switch r.Header.Descr.Type {
	case "<f8":
		var v []float64
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return v, nil
	case "<f4":
		return widen[float32](r)
	case "<i8":
		return widen[int64](r)
	case "<i4":
		return widen[int32](r)
	case "<i2":
		return widen[int16](r)
	case "|i1", "<i1":
		return widen[int8](r)
	case "<u8":
		return widen[uint64](r)
	case "<u4":
		return widen[uint32](r)
	case "<u2":
		return widen[uint16](r)
	case "|u1", "<u1":
		return widen[uint8](r)
	default:
		return nil, fmt.Errorf("unsupported numeric dtype %q", r.Header.Descr.Type)
	}
}

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32
}

func widen[T number](r *npyio.Reader) ([]float64, error) {
	var v []T
	if err := r.Read(&v); err != nil {
		return nil, err
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out, nil
}
