package codec

import "github.com/user/vp8session/pkg/ports"

// ImageFormat identifies the pixel layout of a raw image. Only planar
// 4:2:0 layouts are supported.
type ImageFormat int

const (
	// FormatI420 is planar Y, U, V.
	FormatI420 ImageFormat = iota
	// FormatYV12 is planar Y, V, U.
	FormatYV12
	// FormatVPXI420 is I420 in the codec-native color space.
	FormatVPXI420
	// FormatVPXYV12 is YV12 in the codec-native color space.
	FormatVPXYV12
)

// Image is one raw picture submitted for encoding: pixel planes with
// their strides and the declared format. Width and Height are the
// displayed dimensions; AllocWidth may include padding covered by the
// luma stride.
type Image struct {
	Format ImageFormat

	Width  int
	Height int

	// AllocWidth is the allocated luma row width. Zero means equal to
	// Width.
	AllocWidth int

	Planes  [3][]byte // Y, U, V
	Strides [3]int    // luma, chroma, chroma
}

// ValidateImage checks an image against the session's configured
// dimensions.
func ValidateImage(img *Image, width, height int) error {
	switch img.Format {
	case FormatI420, FormatYV12, FormatVPXI420, FormatVPXYV12:
	default:
		return fieldErr("image format", "invalid; only YV12 and I420 images are supported")
	}
	if img.Width != width || img.Height != height {
		return fieldErr("image size", "must match encoder init configuration size")
	}
	return nil
}

// ToFrameBuffer maps an image onto the engine-facing buffer layout.
// Chroma dimensions round up; the border is derived from the slack
// between the luma stride and the allocated width.
func ToFrameBuffer(img *Image) *ports.FrameBuffer {
	allocWidth := img.AllocWidth
	if allocWidth == 0 {
		allocWidth = img.Width
	}
	return &ports.FrameBuffer{
		Y: img.Planes[0],
		U: img.Planes[1],
		V: img.Planes[2],

		YWidth:   img.Width,
		YHeight:  img.Height,
		UVWidth:  (1 + img.Width) / 2,
		UVHeight: (1 + img.Height) / 2,

		YStride:  img.Strides[0],
		UVStride: img.Strides[1],

		Border: (img.Strides[0] - allocWidth) / 2,

		AlternateColorSpace: img.Format == FormatVPXI420 || img.Format == FormatVPXYV12,
	}
}
