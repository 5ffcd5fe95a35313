package loader

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-room/common"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRoomGLB(t *testing.T, dir string) string {
	t.Helper()
	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uvs := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: map[string]int{gltf.POSITION: positions, gltf.TEXCOORD_0: uvs},
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "Room", Children: []int{1, 2, 3}},
		{Name: "Sphere001", Mesh: gltf.Index(0)},
		{Name: "Vela_Flama002", Mesh: gltf.Index(0)},
		{Name: "Foto", Mesh: gltf.Index(0)},
	}
	doc.Scenes[0].Nodes = []int{0}

	path := filepath.Join(dir, "model.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func writeBakedPNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for x := range 4 {
		for y := range 2 {
			img.Set(x, y, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	path := filepath.Join(dir, "baked.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestLoader_LoadScene(t *testing.T) {
	dir := t.TempDir()
	writeRoomGLB(t, dir)
	l := NewLoader(BackendTypeGLTF, WithBaseDir(dir))

	var lastLoaded, lastTotal int64
	root, err := l.LoadScene(context.Background(), "/model.glb", func(loaded, total int64) {
		lastLoaded, lastTotal = loaded, total
	})
	require.NoError(t, err)

	assert.Equal(t, "model.glb", root.Name())
	require.Len(t, root.Children(), 1)
	room := root.Children()[0]
	assert.Equal(t, "Room", room.Name())
	assert.Equal(t, 5, root.Count())

	for _, name := range []string{"Sphere001", "Vela_Flama002", "Foto"} {
		n := room.Find(name)
		require.NotNil(t, n, name)
		require.NotNil(t, n.Mesh(), name)
		assert.Equal(t, 1, n.Mesh().TriangleCount())
		assert.Len(t, n.Mesh().UVs, 3)
	}
	assert.Same(t, room.Find("Sphere001").Mesh(), room.Find("Foto").Mesh(), "shared glTF meshes stay shared")

	assert.Positive(t, lastTotal)
	assert.Equal(t, lastTotal, lastLoaded)
	assert.Equal(t, float64(100), Percent(lastLoaded, lastTotal))

	// Cached by URL.
	again, err := l.LoadScene(context.Background(), "/model.glb", nil)
	require.NoError(t, err)
	assert.Same(t, root, again)
	assert.Same(t, root, l.Get("/model.glb"))
	assert.Len(t, l.Models(), 1)
}

func TestLoader_LoadSceneFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.glb"), []byte("glTF but not really"), 0o644))
	l := NewLoader(BackendTypeGLTF, WithBaseDir(dir))

	tests := []struct {
		name string
		url  string
		is   error
	}{
		{"missing file", "/model.glb", fs.ErrNotExist},
		{"unsupported format", "/model.obj", common.ErrUnsupportedFormat},
		{"corrupt file", "/broken.glb", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.LoadScene(context.Background(), tt.url, nil)
			var failed *common.AssetLoadFailed
			require.True(t, errors.As(err, &failed), "got %v", err)
			assert.Equal(t, tt.url, failed.URL)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.Nil(t, l.Get(tt.url))
		})
	}
}

func TestImport_RejectsOutOfRangeAccessors(t *testing.T) {
	tests := []struct {
		name string
		edit func(prim *gltf.Primitive)
	}{
		{"position", func(prim *gltf.Primitive) { prim.Attributes[gltf.POSITION] = 42 }},
		{"uv", func(prim *gltf.Primitive) { prim.Attributes[gltf.TEXCOORD_0] = -1 }},
		{"indices", func(prim *gltf.Primitive) { prim.Indices = gltf.Index(7) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := gltf.NewDocument()
			positions := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
			prim := &gltf.Primitive{Attributes: map[string]int{gltf.POSITION: positions}}
			tt.edit(prim)
			doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{prim}}}
			doc.Nodes = []*gltf.Node{{Name: "Floor", Mesh: gltf.Index(0)}}
			doc.Scenes[0].Nodes = []int{0}

			var node any
			var err error
			require.NotPanics(t, func() {
				node, err = newGLTFImporter().Import(doc, "room")
			})
			assert.ErrorContains(t, err, "out of range")
			assert.Nil(t, node)
		})
	}
}

func TestLoader_LoadSceneBadAccessorIsAssetLoadFailed(t *testing.T) {
	dir := t.TempDir()
	doc := gltf.NewDocument()
	modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
		Attributes: map[string]int{gltf.POSITION: 42},
	}}}}
	doc.Nodes = []*gltf.Node{{Name: "Floor", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}
	require.NoError(t, gltf.SaveBinary(doc, filepath.Join(dir, "model.glb")))

	l := NewLoader(BackendTypeGLTF, WithBaseDir(dir))
	var err error
	require.NotPanics(t, func() {
		_, err = l.LoadScene(context.Background(), "/model.glb", nil)
	})
	var failed *common.AssetLoadFailed
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "/model.glb", failed.URL)
}

func TestLoader_LoadTexture(t *testing.T) {
	dir := t.TempDir()
	path := writeBakedPNG(t, dir)
	l := NewLoader(BackendTypeGLTF)

	tex, err := l.LoadTexture(context.Background(), path)
	require.NoError(t, err)

	w, h := tex.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)
	assert.False(t, tex.FlipY)
	assert.Equal(t, "baked.png", tex.Name)

	_, err = l.LoadTexture(context.Background(), filepath.Join(dir, "missing.jpg"))
	var failed *common.AssetLoadFailed
	assert.True(t, errors.As(err, &failed))
}

func TestLoader_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeRoomGLB(t, dir)
	l := NewLoader(BackendTypeGLTF, WithBaseDir(dir))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.LoadScene(ctx, "/model.glb", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTask_Resolves(t *testing.T) {
	dir := t.TempDir()
	writeRoomGLB(t, dir)
	writeBakedPNG(t, dir)
	l := NewLoader(BackendTypeGLTF, WithBaseDir(dir))

	task := l.Start(context.Background(), "/model.glb", "/baked.png", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := task.Wait(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Model)
	require.NotNil(t, res.Texture)

	polled, done, err := task.Poll()
	assert.True(t, done)
	assert.NoError(t, err)
	assert.Same(t, res.Model, polled.Model)
}

func TestTask_ReportsAssetLoadFailed(t *testing.T) {
	dir := t.TempDir()
	writeRoomGLB(t, dir)
	l := NewLoader(BackendTypeGLTF, WithBaseDir(dir))

	task := l.Start(context.Background(), "/model.glb", "/baked.jpg", nil)
	<-task.Done()

	res, done, err := task.Poll()
	assert.True(t, done)
	var failed *common.AssetLoadFailed
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "/baked.jpg", failed.URL)
	require.NotNil(t, res.Model, "a missing texture does not discard the model")
	assert.Nil(t, res.Texture)
}

func TestTask_ReportsBothFailures(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithBaseDir(t.TempDir()))

	res, err := l.Start(context.Background(), "/model.glb", "/baked.jpg", nil).Wait(context.Background())
	require.Error(t, err)
	assert.Equal(t, Result{}, res)
	assert.Contains(t, err.Error(), "/model.glb")
	assert.Contains(t, err.Error(), "/baked.jpg")
}

func TestTask_WaitHonorsContext(t *testing.T) {
	task := &Task{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, done, _ := task.Poll()
	assert.False(t, done)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, float64(50), Percent(5, 10))
	assert.Equal(t, float64(-1), Percent(5, -1))
}
