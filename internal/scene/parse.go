package scene

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/udhos/gwob"
)

var parserOptions = &gwob.ObjParserOptions{
	Logger: func(msg string) { log.Printf("scene: %s", msg) },
}

// ParseMTL reads the materials of an MTL file. Only the name and the
// diffuse (Kd) colour are kept.
func ParseMTL(r io.Reader) (map[string]Material, error) {
	lib, err := gwob.ReadMaterialLibFromReader(bufio.NewReader(r), parserOptions)
	if err != nil {
		return nil, fmt.Errorf("mtl: %w", err)
	}
	mats := make(map[string]Material, len(lib.Lib))
	for name, mt := range lib.Lib {
		mats[name] = Material{
			Name:    name,
			Diffuse: Color{R: float64(mt.Kd[0]), G: float64(mt.Kd[1]), B: float64(mt.Kd[2])},
		}
	}
	return mats, nil
}

// declSep joins the declaration number and the name of a tagged group.
const declSep = "|"

// declReader numbers every o and g statement as it is read, rewriting it
// to "g <n>|<name>". gwob also starts a group at usemtl; numbering keeps
// the groups of one declaration together so that a material change does
// not split a mesh.
type declReader struct {
	r     *bufio.Reader
	decls int
	faces int
}

func (d *declReader) ReadString(delim byte) (string, error) {
	line, err := d.r.ReadString(delim)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return line, err
	}
	switch fields[0] {
	case "o", "g":
		name := strings.Join(fields[1:], " ")
		line = "g " + strconv.Itoa(d.decls) + declSep + name + "\n"
		d.decls++
	case "f":
		d.faces++
	}
	return line, err
}

// declName strips the declaration number from a group name.
func declName(group string) string {
	if _, name, ok := strings.Cut(group, declSep); ok {
		return name
	}
	return group
}

// ParseOBJ reads the geometry of an OBJ file. There is one mesh per o or
// g statement; usemtl only sets the material of the current mesh, and a
// mesh without usemtl keeps the material in effect before it.
func ParseOBJ(r io.Reader, mats map[string]Material) (*Model, error) {
	dr := &declReader{r: bufio.NewReader(r)}
	obj, err := gwob.NewObjFromReader("model", dr, parserOptions)
	if dr.faces == 0 {
		return nil, ErrNoGeometry
	}
	if err != nil {
		return nil, fmt.Errorf("obj: %w", err)
	}

	m := &Model{Materials: mats}
	if m.Materials == nil {
		m.Materials = map[string]Material{}
	}

	var (
		lastGroup string
		lastMat   string
	)
	for _, g := range obj.Groups {
		if g.IndexCount == 0 {
			continue
		}
		tris := g.IndexCount / 3
		m.Faces += tris

		if len(m.Meshes) == 0 || g.Name != lastGroup {
			mat := g.Usemtl
			if mat == "" {
				mat = lastMat
			}
			mesh := Mesh{Name: declName(g.Name), Material: mat}
			if mt, ok := m.Materials[mat]; ok {
				mesh.Color = mt.Diffuse
			}
			m.Meshes = append(m.Meshes, mesh)
			lastGroup = g.Name
		}
		m.Meshes[len(m.Meshes)-1].Faces += tris
		if g.Usemtl != "" {
			lastMat = g.Usemtl
		}
	}
	if m.Faces == 0 {
		return nil, ErrNoGeometry
	}

	m.Vertices = obj.NumberOfElements()
	m.Bounds = bounds(obj)
	return m, nil
}

// bounds walks the position of every packed vertex.
func bounds(obj *gwob.Obj) Bounds {
	var b Bounds
	for i := range 3 {
		b.Min[i] = math.Inf(1)
		b.Max[i] = math.Inf(-1)
	}
	stride := obj.StrideSize / 4
	off := obj.StrideOffsetPosition / 4
	for e := 0; e+stride <= len(obj.Coord); e += stride {
		for i := range 3 {
			v := float64(obj.Coord[e+off+i])
			b.Min[i] = math.Min(b.Min[i], v)
			b.Max[i] = math.Max(b.Max[i], v)
		}
	}
	return b
}
