// Package yuvreader reads raw planar I420 frames from a stream.
package yuvreader

import (
	"fmt"
	"io"

	"github.com/user/vp8session/pkg/codec"
)

// Reader produces one codec.Image per stored frame. The stream is a
// bare concatenation of I420 pictures with no per-frame framing, so
// the picture size fixes the frame size.
type Reader struct {
	r      io.Reader
	width  int
	height int

	frameSize int
}

// New creates a reader for width x height I420 frames.
func New(r io.Reader, width, height int) (*Reader, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("yuvreader: invalid picture size %dx%d", width, height)
	}
	return &Reader{
		r:         r,
		width:     width,
		height:    height,
		frameSize: frameSize(width, height),
	}, nil
}

// Next reads the next frame. It returns io.EOF at a clean end of
// stream and io.ErrUnexpectedEOF when the stream ends mid-frame.
func (r *Reader) Next() (*codec.Image, error) {
	buf := make([]byte, r.frameSize)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("yuvreader: truncated frame: %w", err)
		}
		return nil, err
	}

	ySize := r.width * r.height
	uvWidth := (r.width + 1) / 2
	uvHeight := (r.height + 1) / 2
	uvSize := uvWidth * uvHeight

	img := &codec.Image{
		Format:     codec.FormatI420,
		Width:      r.width,
		Height:     r.height,
		AllocWidth: r.width,
	}
	img.Planes[0] = buf[:ySize]
	img.Planes[1] = buf[ySize : ySize+uvSize]
	img.Planes[2] = buf[ySize+uvSize:]
	img.Strides[0] = r.width
	img.Strides[1] = uvWidth
	img.Strides[2] = uvWidth
	return img, nil
}

func frameSize(width, height int) int {
	uvWidth := (width + 1) / 2
	uvHeight := (height + 1) / 2
	return width*height + 2*uvWidth*uvHeight
}
