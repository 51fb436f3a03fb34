// Package export captures a rendered table page as an image and writes it
// out as PNG or as a paginated A4 PDF.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	ErrNoColumns = errors.New("export: table has no columns")
	ErrTooLarge  = errors.New("export: table too large to render")
)

const (
	padX     = 8
	padY     = 5
	maxPixel = 16384
)

var (
	ink      = color.Black
	rule     = color.RGBA{0xbd, 0xbd, 0xbd, 0xff}
	headerBg = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

// RenderTable draws title, a shaded header row and one line per row onto a
// white canvas. An empty rows slice yields a header-only image.
func RenderTable(title string, headers []string, rows [][]string) (image.Image, error) {
	if len(headers) == 0 {
		return nil, ErrNoColumns
	}
	face := basicfont.Face7x13
	charW := face.Advance
	lineH := face.Height + 2*padY

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for n, row := range rows {
		if len(row) != len(headers) {
			return nil, fmt.Errorf("export: row %d has %d cells, want %d", n, len(row), len(headers))
		}
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	colX := make([]int, len(headers)+1)
	for i, w := range widths {
		colX[i+1] = colX[i] + w*charW + 2*padX
	}
	width := max(colX[len(headers)], utf8.RuneCountInString(title)*charW+2*padX) + 1
	top := 0
	if title != "" {
		top = lineH
	}
	height := top + lineH*(len(rows)+1) + 1
	if width > maxPixel || height > maxPixel {
		return nil, ErrTooLarge
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, top, colX[len(headers)], top+lineH), image.NewUniform(headerBg), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: face}
	text := func(s string, x, y int) {
		d.Dot = fixed.P(x+padX, y+padY+face.Ascent)
		d.DrawString(s)
	}

	if title != "" {
		text(title, 0, 0)
	}
	for i, h := range headers {
		text(h, colX[i], top)
	}
	for r, row := range rows {
		y := top + lineH*(r+1)
		for i, cell := range row {
			text(cell, colX[i], y)
		}
	}

	// Grid.
	right := colX[len(headers)]
	for r := 0; r <= len(rows)+1; r++ {
		y := top + lineH*r
		draw.Draw(img, image.Rect(0, y, right+1, y+1), image.NewUniform(rule), image.Point{}, draw.Src)
	}
	for _, x := range colX {
		draw.Draw(img, image.Rect(x, top, x+1, height), image.NewUniform(rule), image.Point{}, draw.Src)
	}

	return img, nil
}
