package datasets

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// strideRows keeps every skip-th row of a frame-major buffer.
func strideRows[T any](data []T, rowSize, frames, skip int) ([]T, int) {
	if skip <= 1 {
		return data, frames
	}
	kept := (frames + skip - 1) / skip
	out := make([]T, 0, kept*rowSize)
	for f := 0; f < frames; f += skip {
		out = append(out, data[f*rowSize:(f+1)*rowSize]...)
	}
	return out, kept
}

func strideImages(im Images, skip int) Images {
	im.Pix, im.Frames = strideRows(im.Pix, im.frameSize(), im.Frames, skip)
	return im
}

// CenterCrop crops every frame to a size x size window centered in the frame.
// Offsets round down, matching integer division of the leftover margin.
func CenterCrop(im Images, size int) (Images, error) {
	if size > im.Height || size > im.Width {
		return Images{}, fmt.Errorf("%w: %d > %dx%d", ErrCropTooLarge, size, im.Height, im.Width)
	}
	top := (im.Height - size) / 2
	left := (im.Width - size) / 2

	rowBytes := size * im.Channels
	out := Images{
		Frames:   im.Frames,
		Height:   size,
		Width:    size,
		Channels: im.Channels,
		Pix:      make([]uint8, im.Frames*size*rowBytes),
	}
	srcStride := im.Width * im.Channels
	for f := range im.Frames {
		src := im.Frame(f)
		dst := out.Frame(f)
		for y := range size {
			start := (top+y)*srcStride + left*im.Channels
			copy(dst[y*rowBytes:(y+1)*rowBytes], src[start:start+rowBytes])
		}
	}
	return out, nil
}

// Resize scales every frame to size x size with bilinear interpolation.
func Resize(im Images, size int) (Images, error) {
	switch im.Channels {
	case 1, 3, 4:
	default:
		return Images{}, fmt.Errorf("resize: unsupported channel count %d", im.Channels)
	}
	out := Images{
		Frames:   im.Frames,
		Height:   size,
		Width:    size,
		Channels: im.Channels,
		Pix:      make([]uint8, im.Frames*size*size*im.Channels),
	}
	for f := range im.Frames {
		resizeFrame(out.Frame(f), im.Frame(f), im.Height, im.Width, im.Channels, size)
	}
	return out, nil
}

func resizeFrame(dst, src []uint8, h, w, c, size int) {
	if c == 1 {
		in := &image.Gray{Pix: src, Stride: w, Rect: image.Rect(0, 0, w, h)}
		res := image.NewGray(image.Rect(0, 0, size, size))
		draw.BiLinear.Scale(res, res.Bounds(), in, in.Bounds(), draw.Src, nil)
		copy(dst, res.Pix)
		return
	}

	in := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range h * w {
		p := in.Pix[i*4 : i*4+4]
		copy(p, src[i*c:i*c+3])
		p[3] = 255
		if c == 4 {
			p[3] = src[i*c+3]
		}
	}
	res := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(res, res.Bounds(), in, in.Bounds(), draw.Src, nil)
	for i := range size * size {
		copy(dst[i*c:i*c+c], res.Pix[i*4:i*4+c])
	}
}
