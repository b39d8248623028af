// Package render turns allocator state into bitmaps: one pixel column per
// heap byte, the same row repeated Height times.
package render

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"

	"github.com/pavanmanishd/myheap"
)

const (
	// DefaultHeight is the number of times a row is replicated.
	DefaultHeight = 10

	DefaultChunksFile = "heap_chunks_dump.bmp"
	DefaultDataFile   = "heap_data_dump.bmp"
)

// Chunk colors. Boundaries mark the first byte of each chunk.
var (
	AllocatedBoundary = color.RGBA{R: 128, A: 255}
	AllocatedBody     = color.RGBA{R: 255, A: 255}
	FreeBoundary      = color.RGBA{G: 128, A: 255}
	FreeBody          = color.RGBA{G: 255, A: 255}
	Unowned           = color.RGBA{A: 255}
)

// Enumerator is satisfied by *myheap.Allocator and *myheap.SafeAllocator.
type Enumerator interface {
	Enumerate() []myheap.ByteOwner
}

// Snapshotter is satisfied by *myheap.Allocator and *myheap.SafeAllocator.
type Snapshotter interface {
	Snapshot() []byte
}

// ChunkRow maps each byte owner to its chunk color.
func ChunkRow(owners []myheap.ByteOwner) []color.RGBA {
	row := make([]color.RGBA, len(owners))
	for i, o := range owners {
		row[i] = ownerColor(o)
	}
	return row
}

func ownerColor(o myheap.ByteOwner) color.RGBA {
	switch o.State {
	case myheap.StateAllocated:
		if o.Boundary {
			return AllocatedBoundary
		}
		return AllocatedBody
	case myheap.StateFree:
		if o.Boundary {
			return FreeBoundary
		}
		return FreeBody
	default:
		return Unowned
	}
}

// DataRow maps each byte to a gray pixel of the same intensity.
func DataRow(data []byte) []color.RGBA {
	row := make([]color.RGBA, len(data))
	for i, b := range data {
		row[i] = color.RGBA{R: b, G: b, B: b, A: 255}
	}
	return row
}

// Replicate builds a len(row) x height image with row on every line.
// Heights below one are treated as one.
func Replicate(row []color.RGBA, height int) *image.RGBA {
	height = max(height, 1)
	img := image.NewRGBA(image.Rect(0, 0, len(row), height))
	for x, c := range row {
		img.SetRGBA(x, 0, c)
	}
	// Copy the first line into the others.
	line := img.Pix[:img.Stride]
	for y := 1; y < height; y++ {
		copy(img.Pix[y*img.Stride:], line)
	}
	return img
}

// EncodeBMP writes img to w as a 24-bit BMP.
func EncodeBMP(w io.Writer, img image.Image) error {
	return errors.Wrap(bmp.Encode(w, img), "encoding bitmap")
}

// WriteFile encodes img as BMP and atomically replaces path with it.
func WriteFile(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := EncodeBMP(&buf, img); err != nil {
		return err
	}
	return errors.Wrapf(renameio.WriteFile(path, buf.Bytes(), 0o644), "writing %s", path)
}

// DumpChunks writes the chunk bitmap of src to path.
func DumpChunks(path string, src Enumerator, height int) error {
	return WriteFile(path, Replicate(ChunkRow(src.Enumerate()), height))
}

// DumpData writes the raw data bitmap of src to path.
func DumpData(path string, src Snapshotter, height int) error {
	return WriteFile(path, Replicate(DataRow(src.Snapshot()), height))
}
