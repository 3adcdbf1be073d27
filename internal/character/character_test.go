package character

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodytrack/internal/mathutil"
	"bodytrack/internal/scenegraph"
	"bodytrack/internal/texture"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 8))
	img.SetNRGBA(1, 1, color.NRGBA{9, 9, 9, 255})
	f, err := os.Create(filepath.Join(dir, "robot.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	cache := texture.NewCache(texture.BuildIndex(dir))
	sprite, err := Load(cache, "robot")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{9, 9, 9, 255}, sprite.NRGBAAt(1, 1))
}

func TestLoadJPEGAsset(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "robot.jpg"))
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, image.NewGray(image.Rect(0, 0, 8, 8)), nil))
	require.NoError(t, f.Close())

	sprite, err := Load(texture.NewCache(texture.BuildIndex(dir)), "robot")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), sprite.Bounds())
	assert.Equal(t, uint8(255), sprite.NRGBAAt(4, 4).A)
}

func TestLoadFailures(t *testing.T) {
	cache := texture.NewCache(nil)
	for _, name := range []string{"", "toy_robot_vintage.usdz", filepath.Join(t.TempDir(), "gone.png")} {
		_, err := Load(cache, name)
		var ae *AssetLoadError
		require.ErrorAs(t, err, &ae, name)
		assert.Equal(t, name, ae.Name)
	}

	_, err := Load(cache, filepath.Join(t.TempDir(), "gone.png"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNewEntity(t *testing.T) {
	g := scenegraph.New()
	sprite := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	e, err := New(g, sprite, 0)
	require.NoError(t, err)

	v, err := g.Visual(e.Root())
	require.NoError(t, err)
	assert.Equal(t, scenegraph.Billboard, v.Shape)
	assert.Equal(t, DefaultHeight, v.Size)
	assert.Same(t, sprite, v.Sprite)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, e.Scale())

	pos, err := e.Position()
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{}, pos)
}

func TestSetPose(t *testing.T) {
	g := scenegraph.New()
	e, err := New(g, nil, 1)
	require.NoError(t, err)

	q := mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 0})
	require.NoError(t, e.SetPose(mgl64.Vec3{1, 2, 3}, q))

	pos, err := e.Position()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, pos[:], 1e-12)

	got, err := e.Orientation()
	require.NoError(t, err)
	assert.True(t, mathutil.QuatApproxEqual(q, got, 1e-9), "got %v", got)

	w, _ := g.WorldTransform(e.Root())
	assert.True(t, mathutil.ApproxEqual(mathutil.FromQuatTranslation(q, mgl64.Vec3{1, 2, 3}), w, 1e-9))
}
