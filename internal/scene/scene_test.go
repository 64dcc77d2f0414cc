package scene

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testMTL = `# materials
newmtl shell
Kd 0.2 0.4 0.6
Ke 0 0 0

newmtl stem
Kd 0.1 0.1 0.1
`

const testOBJ = `mtllib apple.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 2
o body
usemtl shell
f 1 2 3
f 1 3 4
o stem
usemtl stem
f 1 2 3 4
o leaf
f 2 3 4
o seed
f 1 2 4
`

func writeFiles(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	mtl := filepath.Join(dir, "apple.mtl")
	obj := filepath.Join(dir, "apple.obj")
	if err := os.WriteFile(mtl, []byte(testMTL), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(obj, []byte(testOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	return mtl, obj
}

func TestParseMTL(t *testing.T) {
	mats, err := ParseMTL(strings.NewReader(testMTL))
	if err != nil {
		t.Fatalf("ParseMTL() error = %v", err)
	}
	if len(mats) != 2 {
		t.Fatalf("materials = %d, want 2", len(mats))
	}
	if got := mats["shell"].Diffuse; got != (Color{R: 0.2, G: 0.4, B: 0.6}) {
		t.Errorf("shell Kd = %+v", got)
	}
}

func TestParseOBJ(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(testOBJ), nil)
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}
	if m.Vertices != 4 {
		t.Errorf("vertices = %d, want 4", m.Vertices)
	}
	// the quad counts as two triangles
	if m.Faces != 6 {
		t.Errorf("faces = %d, want 6", m.Faces)
	}
	var names []string
	for _, mesh := range m.Meshes {
		names = append(names, mesh.Name)
	}
	if strings.Join(names, ",") != "body,stem,leaf,seed" {
		t.Errorf("meshes = %v", names)
	}
	if m.Meshes[2].Material != "stem" {
		t.Errorf("leaf material = %q, want inherited stem", m.Meshes[2].Material)
	}
	if m.Bounds.Max != [3]float64{1, 1, 2} || m.Bounds.Min != [3]float64{0, 0, 0} {
		t.Errorf("bounds = %+v", m.Bounds)
	}
}

func TestParseOBJNoGeometry(t *testing.T) {
	_, err := ParseOBJ(strings.NewReader("v 0 0 0\nv 1 1 1\n"), nil)
	if !errors.Is(err, ErrNoGeometry) {
		t.Errorf("ParseOBJ() error = %v, want ErrNoGeometry", err)
	}
}

// A material change inside an object keeps it one mesh, so the colouring
// of the objects after it is not shifted.
const multiMaterialOBJ = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
o A
usemtl shell
f 1 2 3
usemtl stem
f 1 3 4
o B
f 1 2 4
o C
f 2 3 4
o D
f 1 2 3
`

func TestParseOBJMaterialChangeKeepsMesh(t *testing.T) {
	mats, _ := ParseMTL(strings.NewReader(testMTL))
	m, err := ParseOBJ(strings.NewReader(multiMaterialOBJ), mats)
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}
	m.Colorize()

	want := []struct {
		name, material, color string
		faces                 int
	}{
		{"A", "shell", "#ff0000", 2},
		{"B", "stem", "#ffff00", 1},
		{"C", "stem", "#ffff00", 1},
		{"D", "stem", "#ff0000", 1},
	}
	if len(m.Meshes) != len(want) {
		t.Fatalf("meshes = %d, want %d", len(m.Meshes), len(want))
	}
	for i, w := range want {
		got := m.Meshes[i]
		if got.Name != w.name || got.Material != w.material || got.Color.Hex() != w.color || got.Faces != w.faces {
			t.Errorf("mesh %d = %s/%s/%s/%d faces, want %s/%s/%s/%d",
				i+1, got.Name, got.Material, got.Color.Hex(), got.Faces, w.name, w.material, w.color, w.faces)
		}
	}
}

func TestDeclReaderNumbersDeclarations(t *testing.T) {
	dr := &declReader{r: bufio.NewReader(strings.NewReader("o body
usemtl x
f 1 2 3
g
f 1 2 3
"))}
	var out []string
	for {
		line, err := dr.ReadString('\n')
		if line != "" {
			out = append(out, strings.TrimSpace(line))
		}
		if err != nil {
			break
		}
	}
	want := "g 0|body;usemtl x;f 1 2 3;g 1|;f 1 2 3"
	if got := strings.Join(out, ";"); got != want {
		t.Errorf("lines = %q, want %q", got, want)
	}
	if dr.faces != 2 || dr.decls != 2 {
		t.Errorf("faces = %d decls = %d, want 2 and 2", dr.faces, dr.decls)
	}
	if declName("1|leaf") != "leaf" || declName("default") != "default" {
		t.Error("declName() did not strip the declaration number")
	}
}

func TestColorize(t *testing.T) {
	m := &Model{Meshes: make([]Mesh, 5)}
	m.Colorize()

	want := []string{"#ff0000", "#ffff00", "#ffff00", "#ff0000", "#ffff00"}
	for i, w := range want {
		if got := m.Meshes[i].Color.Hex(); got != w {
			t.Errorf("mesh %d colour = %s, want %s", i+1, got, w)
		}
	}
	if m.Meshes[0].Emissive != (Color{R: 0.5}) {
		t.Errorf("red emissive = %+v", m.Meshes[0].Emissive)
	}
	if m.Meshes[1].Emissive != (Color{R: 0.5, G: 0.5}) {
		t.Errorf("yellow emissive = %+v", m.Meshes[1].Emissive)
	}
}

func TestLoadFiles(t *testing.T) {
	mtl, obj := writeFiles(t)
	res := Load(context.Background(), mtl, obj)
	if !res.OK() {
		t.Fatalf("Load() error = %v", res.Err)
	}
	if len(res.Model.Materials) != 2 || len(res.Model.Meshes) != 4 {
		t.Errorf("model = %d materials, %d meshes", len(res.Model.Materials), len(res.Model.Meshes))
	}
	if res.Model.Meshes[0].Color.Hex() != "#ff0000" {
		t.Errorf("first mesh not recoloured: %s", res.Model.Meshes[0].Color.Hex())
	}
}

func TestLoadMissingFile(t *testing.T) {
	res := Load(context.Background(), "", filepath.Join(t.TempDir(), "missing.obj"))
	if res.OK() || !errors.Is(res.Err, os.ErrNotExist) {
		t.Errorf("Load() = %+v, want not-exist error", res)
	}
}

func TestLoadAsyncHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/apple.mtl":
			w.Write([]byte(testMTL))
		case "/apple.obj":
			w.Write([]byte(testOBJ))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	res, ok := <-LoadAsync(context.Background(), srv.URL+"/apple.mtl", srv.URL+"/apple.obj")
	if !ok || !res.OK() {
		t.Fatalf("LoadAsync() = %+v", res)
	}
	if res.Model.Faces != 6 {
		t.Errorf("faces = %d, want 6", res.Model.Faces)
	}

	res = <-LoadAsync(context.Background(), "", srv.URL+"/nope.obj")
	if res.OK() || !strings.Contains(res.Err.Error(), "404") {
		t.Errorf("LoadAsync() missing = %+v, want 404 error", res)
	}
}
