package pdfstamp

import (
	"fmt"
	"strconv"
	"strings"

	"certdocs/internal/config"
)

type pageKind int

const (
	pageFirst pageKind = iota
	pageLast
	pageIndex
)

// PageSelector picks the page an overlay lands on.
type PageSelector struct {
	kind  pageKind
	index int
}

func FirstPage() PageSelector { return PageSelector{kind: pageFirst} }

func LastPage() PageSelector { return PageSelector{kind: pageLast} }

// Page selects a 1-based page number.
func Page(n int) PageSelector { return PageSelector{kind: pageIndex, index: n} }

// ParsePage accepts "first", "last" or a 1-based page number.
func ParsePage(s string) (PageSelector, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return FirstPage(), nil
	case "last":
		return LastPage(), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return PageSelector{}, fmt.Errorf("page must be first, last or a positive number, got %q", s)
	}
	return Page(n), nil
}

// resolve maps the selector onto a document with pageCount pages.
func (p PageSelector) resolve(pageCount int) int {
	switch p.kind {
	case pageLast:
		return pageCount
	case pageIndex:
		return p.index
	default:
		return 1
	}
}

func (p PageSelector) String() string {
	switch p.kind {
	case pageLast:
		return "last"
	case pageIndex:
		return strconv.Itoa(p.index)
	default:
		return "first"
	}
}

// Overlay is one image placed with its lower-left corner at (X, Y), in PDF
// points from the lower-left corner of the page, and scaled up or down to
// fit inside Width x Height with its aspect ratio kept.
type Overlay struct {
	Image  []byte
	Page   PageSelector
	X, Y   float64
	Width  float64
	Height float64
}

// FromPreset builds an overlay for image at a configured position.
func FromPreset(p config.OverlayPreset, image []byte) (Overlay, error) {
	page, err := ParsePage(p.Page)
	if err != nil {
		return Overlay{}, err
	}
	return Overlay{
		Image:  image,
		Page:   page,
		X:      p.X,
		Y:      p.Y,
		Width:  p.Width,
		Height: p.Height,
	}, nil
}
