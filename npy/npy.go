// Package npy reads and writes NumPy array files.
//
// Arrays are written in the .npy v1.0 layout with a 64-byte aligned header,
// so outputs are byte stable across runs. Archives (.npz) are plain zip files of .npy entries, stored
// uncompressed like np.savez. Decoding is delegated to github.com/sbinet/npyio.
package npy

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Dtype is a NumPy type descriptor string.
type Dtype string

const (
	Uint8   Dtype = "|u1"
	Float32 Dtype = "<f4"
	Float64 Dtype = "<f8"
)

// Suffix is the file extension np.save appends.
const Suffix = ".npy"

const headerAlign = 64

var magic = []byte{0x93, 'N', 'U', 'M', 'P', 'Y', 0x01, 0x00}

// ErrNotFound is returned when an archive has no entry with the requested name.
var ErrNotFound = errors.New("npy: entry not found")

// DtypeOf returns the descriptor matching the element type of data.
func DtypeOf(data any) (Dtype, error) {
	switch data.(type) {
	case []uint8:
		return Uint8, nil
	case []float32:
		return Float32, nil
	case []float64:
		return Float64, nil
	default:
		return "", fmt.Errorf("npy: unsupported element type %T", data)
	}
}

// Header renders the header dictionary for an array, padded with spaces and
// terminated by a newline.
func Header(dtype Dtype, shape []int) string {
	var b strings.Builder
	b.WriteString("{'descr': '")
	b.WriteString(string(dtype))
	b.WriteString("', 'fortran_order': False, 'shape': ")
	b.WriteString(formatShape(shape))
	b.WriteString(", }")

	hlen := b.Len() + 1
	pad := headerAlign - (len(magic)+2+hlen)%headerAlign
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteByte('\n')
	return b.String()
}

func formatShape(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return "(" + strconv.Itoa(shape[0]) + ",)"
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// NumElements returns the product of the dimensions in shape.
func NumElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Write encodes data as a C-ordered array of the given shape.
func Write(w io.Writer, shape []int, data any) error {
	dtype, err := DtypeOf(data)
	if err != nil {
		return err
	}
	if n := dataLen(data); n != NumElements(shape) {
		return fmt.Errorf("npy: shape %v needs %d elements, got %d", shape, NumElements(shape), n)
	}

	bw := bufio.NewWriter(w)
	header := Header(dtype, shape)
	if _, err := bw.Write(magic); err != nil {
		return err
	}
	var hlen [2]byte
	binary.LittleEndian.PutUint16(hlen[:], uint16(len(header)))
	if _, err := bw.Write(hlen[:]); err != nil {
		return err
	}
	if _, err := bw.WriteString(header); err != nil {
		return err
	}
	switch v := data.(type) {
	case []uint8:
		_, err = bw.Write(v)
	default:
		err = binary.Write(bw, binary.LittleEndian, v)
	}
	if err != nil {
		return fmt.Errorf("npy: write data: %w", err)
	}
	return bw.Flush()
}

func dataLen(data any) int {
	switch v := data.(type) {
	case []uint8:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	}
	return -1
}

// Save writes an array to path, creating parent directories. The file is
// written next to its destination and renamed into place.
func Save(path string, shape []int, data any) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", path, err)
	}
	return writeAtomic(path, func(w io.Writer) error {
		return Write(w, shape, data)
	})
}

func writeAtomic(path string, fn func(io.Writer) error) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return 0, fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := fn(tmp); err != nil {
		cleanup()
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	info, err := tmp.Stat()
	if err != nil {
		cleanup()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("rename into %s: %w", path, err)
	}
	return info.Size(), nil
}
