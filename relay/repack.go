package relay

import (
	"fmt"

	"github.com/opd-ai/echobot/limits"
	"github.com/opd-ai/echobot/media"
)

// Repack copies the visible area of each plane of f into tightly packed
// buffers: height rows of width bytes for Y, and height/2 rows of width/2
// bytes for U and V. Strides are taken by magnitude. It fails if a stride is
// narrower than its plane's width or a plane is too short for its rows.
func Repack(f media.VideoFrame) (y, u, v []byte, err error) {
	width := int(f.Width)
	height := int(f.Height)
	if err := limits.ValidateVideoDimensions(width, height); err != nil {
		return nil, nil, nil, err
	}

	yStride := abs(f.YStride)
	uStride := abs(f.UStride)
	vStride := abs(f.VStride)
	chromaWidth := width / 2
	chromaHeight := height / 2

	if yStride < width || uStride < chromaWidth || vStride < chromaWidth {
		return nil, nil, nil, fmt.Errorf("%w: stride narrower than width (y=%d u=%d v=%d width=%d)",
			limits.ErrFrameGeometry, yStride, uStride, vStride, width)
	}
	if err := limits.ValidatePlane(f.Y, height, yStride, width); err != nil {
		return nil, nil, nil, fmt.Errorf("y plane: %w", err)
	}
	if err := limits.ValidatePlane(f.U, chromaHeight, uStride, chromaWidth); err != nil {
		return nil, nil, nil, fmt.Errorf("u plane: %w", err)
	}
	if err := limits.ValidatePlane(f.V, chromaHeight, vStride, chromaWidth); err != nil {
		return nil, nil, nil, fmt.Errorf("v plane: %w", err)
	}

	y = packPlane(f.Y, height, yStride, width)
	u = packPlane(f.U, chromaHeight, uStride, chromaWidth)
	v = packPlane(f.V, chromaHeight, vStride, chromaWidth)
	return y, u, v, nil
}

func packPlane(src []byte, rows, stride, width int) []byte {
	dst := make([]byte, rows*width)
	for row := 0; row < rows; row++ {
		copy(dst[row*width:(row+1)*width], src[row*stride:row*stride+width])
	}
	return dst
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
