package export

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/phpdave11/gofpdf"
)

// A4 portrait, millimetres.
const (
	pageW = 210.0
	pageH = 297.0
)

func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export: encode png: %w", err)
	}
	return nil
}

// WritePDF scales img to the A4 page width and cuts it into page-high bands,
// one band per page.
func WritePDF(w io.Writer, img image.Image) error {
	pdf, err := paginate(img)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}

func paginate(img image.Image) (*gofpdf.Fpdf, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("export: empty image")
	}

	bandPx := int(float64(b.Dx()) * pageH / pageW)
	if bandPx < 1 {
		bandPx = 1
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for n, y := 0, b.Min.Y; y < b.Max.Y; n, y = n+1, y+bandPx {
		band := image.Rect(b.Min.X, y, b.Max.X, min(y+bandPx, b.Max.Y))

		var buf bytes.Buffer
		if err := png.Encode(&buf, crop(img, band)); err != nil {
			return nil, fmt.Errorf("export: encode band %d: %w", n, err)
		}

		name := fmt.Sprintf("band-%d", n)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		h := pageW * float64(band.Dy()) / float64(band.Dx())
		pdf.ImageOptions(name, 0, 0, pageW, h, false, opts, 0, "")
	}
	return pdf, pdf.Error()
}

func crop(img image.Image, r image.Rectangle) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}
