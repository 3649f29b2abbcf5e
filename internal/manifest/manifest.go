// Package manifest loads program manifests: CUE documents that name a world
// image, the rule images in priority order, and engine limits. The manifest
// is the on-disk program; images referenced by it are loaded separately.
package manifest

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// RuleRef names one rule and its before/after image paths, relative to the
// manifest file.
type RuleRef struct {
	Name   string
	Before string
	After  string
}

// Manifest is a compiled program manifest.
type Manifest struct {
	Name  string
	World string    // world image path, relative to the manifest
	Rules []RuleRef // declaration order, which is rule priority

	// Engine limits. Zero means the engine default.
	Ticks           int
	MatchBudget     int
	MaxApplications int
}

// Load reads and compiles a manifest file.
//
// The document must contain a program struct:
//
//	program: {
//		name:  "blinker"
//		world: "world.png"
//		ticks: 8
//		rules: [
//			{name: "swap", before: "swap-b.png", after: "swap-a.png"},
//		]
//	}
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	prog := v.LookupPath(cue.ParsePath("program"))
	if !prog.Exists() {
		return nil, &CompileError{Field: "program", Message: "program struct is required", Pos: v.Pos()}
	}
	return Compile(prog)
}

// Compile parses a CUE value holding the program struct.
func Compile(v cue.Value) (*Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	m := &Manifest{}

	name, err := requiredString(v, "name")
	if err != nil {
		return nil, err
	}
	m.Name = name

	world, err := requiredString(v, "world")
	if err != nil {
		return nil, err
	}
	m.World = world

	if m.Ticks, err = optionalInt(v, "ticks"); err != nil {
		return nil, err
	}
	if m.MatchBudget, err = optionalInt(v, "budget"); err != nil {
		return nil, err
	}
	if m.MaxApplications, err = optionalInt(v, "max_applications"); err != nil {
		return nil, err
	}

	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil, &CompileError{Field: "rules", Message: "at least one rule is required", Pos: v.Pos()}
	}
	iter, err := rulesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		ref, err := compileRuleRef(iter.Value())
		if err != nil {
			return nil, err
		}
		m.Rules = append(m.Rules, ref)
	}
	if len(m.Rules) == 0 {
		return nil, &CompileError{Field: "rules", Message: "at least one rule is required", Pos: rulesVal.Pos()}
	}
	return m, nil
}

func compileRuleRef(v cue.Value) (RuleRef, error) {
	var ref RuleRef
	var err error
	if ref.Name, err = requiredString(v, "name"); err != nil {
		return ref, err
	}
	if ref.Before, err = requiredString(v, "before"); err != nil {
		return ref, err
	}
	if ref.After, err = requiredString(v, "after"); err != nil {
		return ref, err
	}
	return ref, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if s == "" {
		return "", &CompileError{Field: field, Message: field + " must not be empty", Pos: fv.Pos()}
	}
	return s, nil
}

func optionalInt(v cue.Value, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	if n < 0 {
		return 0, &CompileError{Field: field, Message: field + " must not be negative", Pos: fv.Pos()}
	}
	return int(n), nil
}
