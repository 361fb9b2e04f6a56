package detector

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes a JPEG, PNG, GIF (first frame), BMP or WebP image into
// an RGB Frame. When maxSide > 0 the image is downscaled so neither side
// exceeds it; the source dimensions are kept on the Frame for box scaling.
func DecodeImage(r io.Reader, maxSide int) (Frame, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return Frame{}, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Frame{}, errors.New("decode image: empty image")
	}
	f := Frame{SourceWidth: b.Dx(), SourceHeight: b.Dy(), Format: format}
	if maxSide > 0 && (b.Dx() > maxSide || b.Dy() > maxSide) {
		img = resize.Thumbnail(uint(maxSide), uint(maxSide), img, resize.Bilinear)
	}
	f.Width, f.Height, f.Pix = toRGB(img)
	return f, nil
}

// toRGB flattens img into packed 3-channel bytes. Alpha is dropped without
// darkening the colour channels.
func toRGB(img image.Image) (int, int, []uint8) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	pix := make([]uint8, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			pix = append(pix, row[x], row[x+1], row[x+2])
		}
	}
	return w, h, pix
}
