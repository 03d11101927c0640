package vision

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"ecosort/internal/domain/entity"
	"ecosort/internal/domain/port"
)

const (
	defaultThickness = 3
	labelPadding     = 4
)

// Annotator рисует рамки и подписи детекций цветом категории.
type Annotator struct {
	Thickness      int
	ShowConfidence bool // дописывать уверенность к подписи
	face           font.Face
}

// AnnotatorOption настройка аннотатора
type AnnotatorOption func(*Annotator)

// WithConfidence добавляет "(NN%)" к подписи объекта.
func WithConfidence() AnnotatorOption {
	return func(a *Annotator) { a.ShowConfidence = true }
}

// NewAnnotator создаёт аннотатор со встроенным растровым шрифтом.
func NewAnnotator(opts ...AnnotatorOption) *Annotator {
	a := &Annotator{
		Thickness: defaultThickness,
		face:      basicfont.Face7x13,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Annotate рисует детекции на копии изображения; исходник не изменяется.
func (a *Annotator) Annotate(img image.Image, detections []entity.Detection) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	for _, det := range detections {
		rect := det.Box.Rect(b.Dx(), b.Dy())
		col := det.Category.Guidance().Color
		a.drawOutline(dst, rect, col)
		a.drawLabel(dst, rect.Min, a.labelText(det), col)
	}

	return dst
}

func (a *Annotator) labelText(det entity.Detection) string {
	label := det.Label
	if label == "" {
		label = "Object"
	}
	if a.ShowConfidence {
		return fmt.Sprintf("%s (%d%%)", label, det.Confidence)
	}
	return label
}

func (a *Annotator) drawOutline(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	src := image.NewUniform(col)
	t := a.Thickness
	for _, strip := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), // верх
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), // низ
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), // лево
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), // право
	} {
		draw.Draw(dst, strip.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

// drawLabel рисует подпись над рамкой, а если сверху нет места, то внутри неё.
func (a *Annotator) drawLabel(dst *image.RGBA, at image.Point, text string, col color.RGBA) {
	metrics := a.face.Metrics()
	textW := font.MeasureString(a.face, text).Ceil()
	textH := metrics.Height.Ceil()

	top := at.Y - textH - 2*labelPadding
	if top < 0 {
		top = at.Y
	}
	bg := image.Rect(at.X, top, at.X+textW+2*labelPadding, top+textH+2*labelPadding)
	draw.Draw(dst, bg.Intersect(dst.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: a.face,
		Dot:  fixed.P(at.X+labelPadding, top+labelPadding+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
}

var _ port.Annotator = (*Annotator)(nil)
