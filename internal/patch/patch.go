// Package patch edits property set trees through their wire form with JSON
// Patch (RFC 6902) and JSON Merge Patch (RFC 7386) documents.
//
// The patched document is decoded again, so a patch can turn a nested node
// into a Pset or back. Object keys of the result come out sorted.
package patch

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/psets"
	"github.com/mcncl/psetkit/internal/value"
)

// Apply applies an RFC 6902 operation list to p.
func Apply(p psets.Psets, ops value.Value) (psets.Psets, error) {
	if ops.Kind() != value.KindArray {
		return psets.Psets{}, errors.NewPatchError(
			fmt.Sprintf("JSON patch must be an array of operations, got %s", ops.Kind()),
			errors.ErrInvalidPatch,
		)
	}
	opsJSON, err := ops.MarshalJSON()
	if err != nil {
		return psets.Psets{}, err
	}
	decoded, err := jsonpatch.DecodePatch(opsJSON)
	if err != nil {
		return psets.Psets{}, errors.NewPatchError(fmt.Sprintf("cannot decode JSON patch: %v", err), errors.ErrInvalidPatch)
	}

	doc, err := p.MarshalJSON()
	if err != nil {
		return psets.Psets{}, err
	}
	out, err := decoded.Apply(doc)
	if err != nil {
		return psets.Psets{}, errors.NewPatchError(fmt.Sprintf("cannot apply JSON patch: %v", err), errors.ErrInvalidPatch)
	}
	return decode(out)
}

// Merge applies an RFC 7386 merge patch to p.
func Merge(p psets.Psets, mergePatch value.Value) (psets.Psets, error) {
	patchJSON, err := mergePatch.MarshalJSON()
	if err != nil {
		return psets.Psets{}, err
	}
	doc, err := p.MarshalJSON()
	if err != nil {
		return psets.Psets{}, err
	}
	out, err := jsonpatch.MergePatch(doc, patchJSON)
	if err != nil {
		return psets.Psets{}, errors.NewPatchError(fmt.Sprintf("cannot apply merge patch: %v", err), errors.ErrInvalidPatch)
	}
	return decode(out)
}

// CreateMerge returns the merge patch that turns from into to.
func CreateMerge(from, to psets.Psets) (value.Value, error) {
	fromJSON, err := from.MarshalJSON()
	if err != nil {
		return value.Value{}, err
	}
	toJSON, err := to.MarshalJSON()
	if err != nil {
		return value.Value{}, err
	}
	out, err := jsonpatch.CreateMergePatch(fromJSON, toJSON)
	if err != nil {
		return value.Value{}, errors.NewPatchError(fmt.Sprintf("cannot create merge patch: %v", err), errors.ErrInvalidPatch)
	}
	return value.ParseJSON(out)
}

func decode(data []byte) (psets.Psets, error) {
	v, err := value.ParseJSON(data)
	if err != nil {
		return psets.Psets{}, err
	}
	p, err := psets.FromJSON(v)
	if err != nil {
		return psets.Psets{}, errors.NewPatchError(fmt.Sprintf("patched document is not a property set tree: %v", err), err)
	}
	return p, nil
}
