// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package scene loads the 3D model that is animated during replay.
package scene

import (
	"errors"
	"fmt"
)

// ErrNoGeometry is returned for an OBJ file without any face.
var ErrNoGeometry = errors.New("scene: model has no geometry")

// Color is a linear RGB triple in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Hex formats c as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Material is one newmtl block of an MTL file.
type Material struct {
	Name    string `json:"name"`
	Diffuse Color  `json:"diffuse"`
}

// Mesh is the faces of one o or g statement.
type Mesh struct {
	Name     string `json:"name"`
	Material string `json:"material"`
	Faces    int    `json:"faces"`
	Color    Color  `json:"color"`
	Emissive Color  `json:"emissive"`
}

// Bounds is the axis-aligned box around every vertex the faces use.
type Bounds struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// Model is a loaded OBJ with its materials.
type Model struct {
	Meshes    []Mesh              `json:"meshes"`
	Materials map[string]Material `json:"materials"`
	Vertices  int                 `json:"vertices"` // distinct vertices referenced by faces
	Faces     int                 `json:"faces"`
	Bounds    Bounds              `json:"bounds"`
}

// LoadResult is what a load produces: a model or the reason there is none.
type LoadResult struct {
	Model *Model
	Err   error
}

// OK reports whether the load succeeded.
func (r LoadResult) OK() bool {
	return r.Err == nil && r.Model != nil
}

var (
	highlight         = Color{R: 1}
	highlightEmissive = Color{R: 0.5}
	base              = Color{R: 1, G: 1}
	baseEmissive      = Color{R: 0.5, G: 0.5}
)

// Colorize paints every third mesh, counting from the first, red and the
// rest yellow. Material colours from the MTL file are overridden.
func (m *Model) Colorize() {
	for i := range m.Meshes {
		if (i+1)%3 == 1 {
			m.Meshes[i].Color, m.Meshes[i].Emissive = highlight, highlightEmissive
		} else {
			m.Meshes[i].Color, m.Meshes[i].Emissive = base, baseEmissive
		}
	}
}
