package model

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

var (
	ErrDecode    = errors.New("decode failure")
	ErrInference = errors.New("inference failure")
)

// Normalization constants the checkpoint was trained with. Changing them
// silently degrades accuracy.
var (
	Mean = [3]float32{0.485, 0.456, 0.406}
	Std  = [3]float32{0.229, 0.224, 0.225}
)

const maxPixels = 50_000_000

// DecodeImage decodes JPEG, PNG or GIF bytes.
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty image", ErrDecode)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, "", fmt.Errorf("%w: unsupported dimensions %dx%d", ErrDecode, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// Preprocess converts img into a 1x3xSxS CHW tensor: RGB, resized without
// keeping the aspect ratio, scaled to [0,1] and normalized per channel.
func Preprocess(img image.Image, size int) []float32 {
	rgb := toNRGBA(img)
	resized := resize.Resize(uint(size), uint(size), rgb, resize.Bilinear)

	bounds := resized.Bounds()
	plane := size * size
	out := make([]float32, 3*plane)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := y*size + x
			out[i] = (float32(c.R)/255 - Mean[0]) / Std[0]
			out[plane+i] = (float32(c.G)/255 - Mean[1]) / Std[1]
			out[2*plane+i] = (float32(c.B)/255 - Mean[2]) / Std[2]
		}
	}
	return out
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
