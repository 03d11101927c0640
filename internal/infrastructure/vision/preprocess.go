package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"golang.org/x/image/draw"

	"ecosort/internal/domain/port"
)

const (
	// DefaultMaxSide максимальная сторона изображения для отправки в модель
	DefaultMaxSide = 1024
	// DefaultJPEGQuality качество JPEG при кодировании
	DefaultJPEGQuality = 85
)

// Preprocessor приводит изображение к RGB, уменьшает и кодирует в JPEG.
type Preprocessor struct {
	MaxSide int
	Quality int
}

// NewPreprocessor создаёт препроцессор с параметрами по умолчанию.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		MaxSide: DefaultMaxSide,
		Quality: DefaultJPEGQuality,
	}
}

// Prepare возвращает JPEG, у которого ни одна сторона не превышает MaxSide.
// Альфа-канал отбрасывается, а не смешивается с фоном.
func (p *Preprocessor) Prepare(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}

	rgb := ToRGB(img)
	w, h := FitWithin(rgb.Bounds().Dx(), rgb.Bounds().Dy(), p.MaxSide)
	var out image.Image = rgb
	if w != rgb.Bounds().Dx() || h != rgb.Bounds().Dy() {
		resized := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(resized, resized.Bounds(), rgb, rgb.Bounds(), draw.Src, nil)
		out = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// FitWithin вычисляет размер с сохранением пропорций, вписанный в квадрат maxSide.
// Изображения меньше квадрата не увеличиваются.
func FitWithin(width, height, maxSide int) (int, int) {
	if maxSide <= 0 || (width <= maxSide && height <= maxSide) {
		return width, height
	}
	if width >= height {
		return maxSide, max(1, height*maxSide/width)
	}
	return max(1, width*maxSide/height), maxSide
}

// ToRGB копирует изображение в непрозрачный RGBA с началом координат в нуле.
// Цвет берётся без предварительного умножения на альфу, альфа становится 255.
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			srcRow := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			dstRow := dst.Pix[dst.PixOffset(0, y):]
			for x := 0; x < b.Dx(); x++ {
				i := x * 4
				dstRow[i], dstRow[i+1], dstRow[i+2], dstRow[i+3] = srcRow[i], srcRow[i+1], srcRow[i+2], 0xff
			}
		}
		return dst
	}

	// Непрозрачные источники (JPEG, кадры камеры) копируются целиком
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}

var _ port.ImageEncoder = (*Preprocessor)(nil)
