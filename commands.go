package main

import (
	"fmt"

	"github.com/mcncl/psetkit/internal/analyzer"
	"github.com/mcncl/psetkit/internal/diff"
	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/formatter"
	"github.com/mcncl/psetkit/internal/patch"
	"github.com/mcncl/psetkit/internal/psets"
	"github.com/mcncl/psetkit/internal/query"
)

// ParseCmd validates a tree and prints its canonical wire form
type ParseCmd struct {
	Input string `arg:"" optional:"" help:"Input file. Reads stdin when omitted or '-'." type:"path"`
}

func (c *ParseCmd) Run(ctx *Context) error {
	p, err := ctx.readTree(c.Input)
	if err != nil {
		return err
	}
	return ctx.formatter().Document(ctx.Stdout, p)
}

// FlattenCmd prints the flattened view
type FlattenCmd struct {
	Input  string `arg:"" optional:"" help:"Input file. Reads stdin when omitted or '-'." type:"path"`
	Where  string `help:"Keep only leaves matching this expression, e.g. 'kind == \"pset\"'." short:"w"`
	Strict bool   `help:"Fail when two key paths flatten to the same address."`
}

func (c *FlattenCmd) Run(ctx *Context) error {
	p, err := ctx.readTree(c.Input)
	if err != nil {
		return err
	}
	cfg := ctx.Config

	if c.Strict || cfg.Flatten.Strict {
		report := analyzer.NewAnalyzerWithConfig(cfg).Analyze(p)
		if err := report.CheckCollisions(); err != nil {
			return err
		}
	}

	keep := []formatter.KeepFunc{
		func(cell formatter.Cell) (bool, error) {
			if cfg.ShouldSkipAddress(cell.Address) {
				ctx.Logger.Debug("excluded address", "addr", cell.Address)
				return false, nil
			}
			return true, nil
		},
	}
	if c.Where != "" {
		filter, err := query.Compile(c.Where)
		if err != nil {
			return err
		}
		keep = append(keep, func(cell formatter.Cell) (bool, error) {
			return filter.Match(cell.Path, cell.Address, cell.Value)
		})
	}

	cells, err := formatter.Collect(p, cfg.Flatten.Delimiter, keep...)
	if err != nil {
		return err
	}
	ctx.Logger.Debug("flattened tree", "cells", len(cells))
	return ctx.formatter().Flatten(ctx.Stdout, cells)
}

// TreeCmd prints the tree view
type TreeCmd struct {
	Input string `arg:"" optional:"" help:"Input file. Reads stdin when omitted or '-'." type:"path"`
}

func (c *TreeCmd) Run(ctx *Context) error {
	p, err := ctx.readTree(c.Input)
	if err != nil {
		return err
	}
	return ctx.formatter().Tree(ctx.Stdout, p)
}

// ItemsCmd prints the pairs of the root iterator
type ItemsCmd struct {
	Input string `arg:"" optional:"" help:"Input file. Reads stdin when omitted or '-'." type:"path"`
}

func (c *ItemsCmd) Run(ctx *Context) error {
	p, err := ctx.readTree(c.Input)
	if err != nil {
		return err
	}
	return ctx.formatter().Items(ctx.Stdout, p.Items())
}

// InspectCmd prints a structural report
type InspectCmd struct {
	Input string `arg:"" optional:"" help:"Input file. Reads stdin when omitted or '-'." type:"path"`
}

func (c *InspectCmd) Run(ctx *Context) error {
	p, err := ctx.readTree(c.Input)
	if err != nil {
		return err
	}
	report := analyzer.NewAnalyzerWithConfig(ctx.Config).Analyze(p)
	if len(report.Collisions) > 0 {
		ctx.Logger.Warn("ambiguous flattened addresses", "count", len(report.Collisions))
	}
	return ctx.formatter().Report(ctx.Stdout, report)
}

// DiffCmd compares two trees
type DiffCmd struct {
	Old        string `arg:"" help:"Original tree." type:"path"`
	New        string `arg:"" help:"Changed tree." type:"path"`
	Unified    bool   `help:"Print a line diff of the flattened views." short:"u"`
	MergePatch bool   `help:"Print the JSON Merge Patch that turns OLD into NEW." short:"m"`
}

func (c *DiffCmd) Run(ctx *Context) error {
	if c.Old == "-" && c.New == "-" {
		return errors.NewInputError("only one of OLD and NEW can be read from stdin", nil)
	}
	before, err := ctx.readTree(c.Old)
	if err != nil {
		return err
	}
	after, err := ctx.readTree(c.New)
	if err != nil {
		return err
	}

	out := ctx.formatter()
	delimiter := ctx.Config.Flatten.Delimiter
	switch {
	case c.MergePatch:
		// a merge patch is not a tree: its nulls are deletions
		mp, err := patch.CreateMerge(before, after)
		if err != nil {
			return err
		}
		return out.Value(ctx.Stdout, mp)
	case c.Unified:
		return out.Unified(ctx.Stdout, diff.Unified(before, after, delimiter))
	}
	return out.Changes(ctx.Stdout, diff.Compare(before, after, delimiter))
}

// PatchCmd applies a patch document to a tree
type PatchCmd struct {
	Input string `arg:"" optional:"" help:"Input file. Reads stdin when omitted or '-'." type:"path"`
	Patch string `help:"Patch document, JSON or YAML." short:"p" required:"" type:"existingfile"`
	Merge bool   `help:"Treat the patch as a JSON Merge Patch instead of a JSON Patch." short:"m"`
}

func (c *PatchCmd) Run(ctx *Context) error {
	p, err := ctx.readTree(c.Input)
	if err != nil {
		return err
	}
	doc, err := ctx.readDocument(c.Patch)
	if err != nil {
		return err
	}

	var patched psets.Psets
	if c.Merge {
		patched, err = patch.Merge(p, doc.Root)
	} else {
		patched, err = patch.Apply(p, doc.Root)
	}
	if err != nil {
		return err
	}
	return ctx.formatter().Document(ctx.Stdout, patched)
}

// VersionCmd prints the version
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "psetkit version %s\n", Version)
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
