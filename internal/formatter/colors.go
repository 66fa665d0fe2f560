package formatter

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/mcncl/psetkit/internal/psets"
)

// ColorAttr names a part of the rendered output
type ColorAttr int

const (
	AddressColor ColorAttr = iota
	SepColor
	AddedColor
	RemovedColor
	ChangedColor
	HeadingColor
)

// Colors holds the sprintf function used for each part of the output
type Colors struct {
	Default func(string, ...any) string
	Attrs   map[ColorAttr]func(string, ...any) string
	Kinds   map[psets.Kind]func(string, ...any) string
}

// NewColors returns the terminal palette. Colors are forced on, the caller
// decides whether to use them.
func NewColors() *Colors {
	colors := &Colors{
		Default: fmt.Sprintf,
		Attrs:   map[ColorAttr]func(string, ...any) string{},
		Kinds:   map[psets.Kind]func(string, ...any) string{},
	}
	colors.Attrs[AddressColor] = forced(color.New(color.FgCyan))
	colors.Attrs[SepColor] = forced(color.RGB(96, 96, 96))
	colors.Attrs[AddedColor] = forced(color.New(color.FgGreen))
	colors.Attrs[RemovedColor] = forced(color.New(color.FgRed))
	colors.Attrs[ChangedColor] = forced(color.New(color.FgYellow))
	colors.Attrs[HeadingColor] = forced(color.New(color.Bold))

	colors.Kinds[psets.KindPset] = forced(color.RGB(196, 96, 16))
	colors.Kinds[psets.KindPsetID] = forced(color.RGB(128, 168, 196))
	colors.Kinds[psets.KindValue] = forced(color.RGB(8, 196, 16))
	return colors
}

// NoColors returns a palette that leaves text untouched
func NoColors() *Colors {
	return &Colors{
		Default: fmt.Sprintf,
		Attrs:   map[ColorAttr]func(string, ...any) string{},
		Kinds:   map[psets.Kind]func(string, ...any) string{},
	}
}

func forced(c *color.Color) func(string, ...any) string {
	c.EnableColor()
	return c.SprintfFunc()
}

// Attr renders s with the color for attr
func (c *Colors) Attr(attr ColorAttr, s string) string {
	if f, ok := c.Attrs[attr]; ok {
		return f("%s", s)
	}
	return c.Default("%s", s)
}

// Kind renders s with the color for leaf kind k
func (c *Colors) Kind(k psets.Kind, s string) string {
	if f, ok := c.Kinds[k]; ok {
		return f("%s", s)
	}
	return c.Default("%s", s)
}
