package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/SceneView/internal/config"
	"github.com/John-Robertt/SceneView/internal/domain"
)

const gameRoot = "/games/dik"

type stubFrames struct{ frame []byte }

func (s stubFrames) Frame(context.Context, string) ([]byte, error) { return s.frame, nil }

type harness struct {
	c      *cli
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, tty bool, files ...string) *harness {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, gameRoot+"/www/index.html",
		[]byte("<html><head><title>Being a DIK</title></head></html>"), 0o644))
	require.NoError(t, fsys.MkdirAll(gameRoot+"/www/movies", 0o755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fsys, gameRoot+"/www/movies/"+f, []byte("x"), 0o644))
	}

	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.c = &cli{
		fs:        fsys,
		dirs:      config.Dirs{Config: "/cfg/sceneview", Data: "/data/sceneview"},
		cwd:       "/work",
		stdout:    h.stdout,
		stderr:    h.stderr,
		stdoutTTY: tty,
	}
	return h
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return h.c.main(context.Background(), args)
}

func TestCLI_SetupThenScenesJSON(t *testing.T) {
	h := newHarness(t, false, "PS-001.mp4", "PS-002.mp4", "Fig-01.mp4")

	require.Equal(t, 0, h.run("setup", gameRoot), h.stderr.String())
	var setup map[string]string
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &setup))
	assert.Equal(t, gameRoot, setup["root"])
	assert.Equal(t, "Being a DIK", setup["title"])

	require.Equal(t, 0, h.run("scenes", "--filter", "ps"), h.stderr.String())

	var out struct {
		Scenes   map[string][]string `json:"scenes"`
		RootPath string              `json:"root_path"`
		Filters  []string            `json:"filters"`
		Title    string              `json:"title"`
		Found    bool                `json:"found"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &out), h.stdout.String())
	assert.Equal(t, map[string][]string{"PS": {"PS-001.mp4", "PS-002.mp4"}}, out.Scenes)
	assert.Equal(t, gameRoot, out.RootPath)
	assert.Equal(t, []string{"ps"}, out.Filters)
	assert.True(t, out.Found)
}

func TestCLI_SetupRejectsNonGameDir(t *testing.T) {
	h := newHarness(t, true)
	assert.Equal(t, 1, h.run("setup", "/elsewhere"))
	assert.Equal(t, 2, h.run("setup"))
}

func TestCLI_ScenesText(t *testing.T) {
	h := newHarness(t, true, "BC-Office-a1.mp4", "BC-Office-a2O2.mp4", "BC-Office-a3.mp4")

	require.Equal(t, 0, h.run("scenes", gameRoot, "--filter=bc1,bc2"), h.stderr.String())
	want := "BC-Office (2)\n  BC-Office-a1.mp4\n  BC-Office-a3.mp4\n" +
		"BC-Office (Alt) (1)\n  BC-Office-a2O2.mp4\n"
	assert.Equal(t, want, h.stdout.String())
}

func TestCLI_ScenesNoFiles(t *testing.T) {
	h := newHarness(t, false)

	assert.Equal(t, 1, h.run("scenes", gameRoot))
	assert.Contains(t, h.stdout.String(), `"found":false`)
	assert.Contains(t, h.stdout.String(), `"scenes":{}`)
	assert.Contains(t, h.stderr.String(), "未找到视频文件")
}

func TestCLI_ScenesExportOut(t *testing.T) {
	h := newHarness(t, false, "PS-001.mp4")

	require.Equal(t, 0, h.run("scenes", gameRoot, "--filter", "ps", "--format", "m3u", "-o", "list.m3u"), h.stderr.String())
	assert.Empty(t, h.stdout.String())

	b, err := afero.ReadFile(h.c.fs, "/work/list.m3u")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "#EXTM3U\n#PLAYLIST:Being a DIK\n"))
	assert.Contains(t, string(b), "file:///games/dik/www/movies/PS-001.mp4")

	// 已存在：不覆盖；--force 才覆盖。
	assert.Equal(t, 1, h.run("scenes", gameRoot, "--filter", "ps", "--format", "csv", "-o", "list.m3u"))
	assert.Contains(t, h.stderr.String(), "--force")
	require.Equal(t, 0, h.run("scenes", gameRoot, "--filter", "ps", "--format", "csv", "-o", "list.m3u", "--force"))
	b, _ = afero.ReadFile(h.c.fs, "/work/list.m3u")
	assert.True(t, strings.HasPrefix(string(b), "scene,part,file,location\n"))
}

func TestCLI_ScenesConfigNotFound(t *testing.T) {
	h := newHarness(t, false, "PS-001.mp4")

	assert.Equal(t, 1, h.run("scenes"))
	assert.Contains(t, h.stderr.String(), config.ErrCodeNotFound)
	assert.Empty(t, h.stdout.String())
}

func TestCLI_ScenesBadArgs(t *testing.T) {
	h := newHarness(t, false)

	assert.Equal(t, 2, h.run("scenes", "--format", "pls"))
	assert.Equal(t, 2, h.run("scenes", "--apply"))
	assert.Equal(t, 2, h.run("scenes", "--watch", "--out", "x.csv"))
	assert.Equal(t, 2, h.run("nope"))
}

func TestCLI_ThumbsDryRunReport(t *testing.T) {
	h := newHarness(t, false, "PS-001.mp4", "BC-Office-a1.mp4")

	require.Equal(t, 0, h.run("thumbs", gameRoot, "--filter", "ps,bc1"), h.stderr.String())

	var rr domain.ThumbReport
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &rr), h.stdout.String())
	assert.True(t, rr.DryRun)
	assert.Equal(t, 2, rr.Summary.Planned)
	assert.Contains(t, h.stderr.String(), "完成：total=2")

	ok, _ := afero.Exists(h.c.fs, "/data/sceneview/report.json")
	assert.False(t, ok, "dry-run 不应写 report.json")
}

func TestCLI_ThumbsApply(t *testing.T) {
	h := newHarness(t, false, "PS-001.mp4")
	var frame bytes.Buffer
	require.NoError(t, jpeg.Encode(&frame, image.NewRGBA(image.Rect(0, 0, 64, 36)), nil))
	h.c.frames = stubFrames{frame: frame.Bytes()}

	require.Equal(t, 0, h.run("thumbs", gameRoot, "--filter", "ps", "--apply"), h.stderr.String())

	var rr domain.ThumbReport
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &rr))
	assert.Equal(t, 1, rr.Summary.Generated)

	ok, _ := afero.Exists(h.c.fs, "/data/sceneview/thumbnails/PS-001.mp4.jpg")
	assert.True(t, ok)
	ok, _ = afero.Exists(h.c.fs, "/data/sceneview/report.json")
	assert.True(t, ok)
}

func TestCLI_ThumbsConfigErrorReport(t *testing.T) {
	h := newHarness(t, false)

	assert.Equal(t, 1, h.run("thumbs"))
	var rr domain.ThumbReport
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &rr))
	require.Len(t, rr.Items, 1)
	assert.Equal(t, config.ErrCodeNotFound, rr.Items[0].ErrorCode)
	assert.Equal(t, "/work", rr.Root)
}

func TestCLI_Resolve(t *testing.T) {
	h := newHarness(t, true, "PS-001.mp4")

	require.Equal(t, 0, h.run("resolve", gameRoot, "PS-001.mp4"), h.stderr.String())
	assert.Equal(t, "file:///games/dik/www/movies/PS-001.mp4\n", h.stdout.String())

	assert.Equal(t, 1, h.run("resolve", gameRoot, "../etc/passwd"))
	assert.Equal(t, 2, h.run("resolve"))
}

func TestCLI_Tags(t *testing.T) {
	h := newHarness(t, false)

	require.Equal(t, 0, h.run("tags"))
	var flags []domain.Flag
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &flags))
	require.Len(t, flags, len(domain.AllTags))
	assert.Equal(t, domain.Flag{Tag: domain.TagBC2, Label: "Booty Calls Alt"}, flags[3])
}
