package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/John-Robertt/SceneView/internal/domain"
)

var testDirs = Dirs{Config: "/xdg/config/sceneview", Data: "/xdg/data/sceneview"}

func TestLoadEffective_ConfigNotFound(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_ConfigMissingPath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, testDirs.ConfigFile(), `{"filters":["ps"]}`)

	_, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{})
	if Code(err) != ErrCodeMissingPath {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeMissingPath, err, Code(err))
	}
}

func TestLoadEffective_Defaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, testDirs.ConfigFile(), `{"game_dir":"/games/dik"}`)

	eff, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != "/games/dik" {
		t.Fatalf("期望 path=/games/dik，实际=%q", eff.Path)
	}
	if len(eff.Filters) != 1 || eff.Filters[0] != domain.TagNSFW {
		t.Fatalf("期望默认 filters=[nsfw]，实际=%v", eff.Filters)
	}
	if eff.Apply {
		t.Fatalf("默认应为 dry-run")
	}
	if eff.Concurrency != DefaultConcurrency || eff.FFmpegPath != DefaultFFmpegPath || eff.ThumbWidth != DefaultThumbWidth {
		t.Fatalf("默认值不符：%+v", eff)
	}
	if len(eff.Extensions) != 1 || eff.Extensions[0] != ".mp4" {
		t.Fatalf("默认扩展名不符：%v", eff.Extensions)
	}
}

func TestLoadEffective_ApplyCLIOverride(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, testDirs.ConfigFile(), `{"game_dir":"games","apply":true}`)

	eff, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{
		Apply:    false,
		ApplySet: true, // --apply=false
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Apply != false {
		t.Fatalf("期望 apply=false，实际=%v", eff.Apply)
	}

	wantPath := filepath.Join("/work", "games")
	if eff.Path != wantPath {
		t.Fatalf("期望 path=%q，实际=%q", wantPath, eff.Path)
	}
}

func TestLoadEffective_FiltersMergeOrder(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, testDirs.ConfigFile(), `{"game_dir":"/g","filters":["sfw","ps"]}`)

	// CLI 未指定 filter，则应使用配置文件中的值。
	eff, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(eff.Filters) != 2 || eff.Filters[0] != domain.TagSFW || eff.Filters[1] != domain.TagPS {
		t.Fatalf("期望 filters=[sfw ps]，实际=%v", eff.Filters)
	}

	// CLI 显式指定，则覆盖配置文件。
	eff2, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{
		Filters:    []string{"bc1"},
		FiltersSet: true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(eff2.Filters) != 1 || eff2.Filters[0] != domain.TagBC1 {
		t.Fatalf("期望 filters=[bc1]，实际=%v", eff2.Filters)
	}
}

func TestLoadEffective_CLIPath_ConfigOptional(t *testing.T) {
	fsys := afero.NewMemMapFs()

	eff, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{Path: "/games/other"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != "/games/other" {
		t.Fatalf("期望 path=/games/other，实际=%q", eff.Path)
	}
	if eff.Dirs != testDirs {
		t.Fatalf("Dirs 应原样透传：%+v", eff.Dirs)
	}
}

func TestLoadEffective_InvalidFilter(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, testDirs.ConfigFile(), `{"game_dir":"/g","filters":["nope"]}`)

	_, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}

	// CLI 中的未知标签同样无效。
	_, err = LoadEffective(fsys, testDirs, "/work", CLIArgs{Path: "/g", Filters: []string{"xxx"}, FiltersSet: true})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_CLIPath_InvalidConfig(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, testDirs.ConfigFile(), `{`)

	_, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{Path: "/g"})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_InvalidFields(t *testing.T) {
	cases := map[string]string{
		"extension":   `{"game_dir":"/g","extensions":["mp4"]}`,
		"thumb_width": `{"game_dir":"/g","thumb_width":8}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			writeFile(t, fsys, testDirs.ConfigFile(), body)

			_, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{})
			if Code(err) != ErrCodeInvalid {
				t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
			}
		})
	}
}

func TestLoadEffective_ConcurrencyClamp(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{raw: `-3`, want: 1},
		{raw: `7`, want: 7},
		{raw: `100`, want: 32},
	}
	for _, tc := range cases {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, testDirs.ConfigFile(), `{"game_dir":"/g","concurrency":`+tc.raw+`}`)

		eff, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{})
		if err != nil {
			t.Fatalf("concurrency=%s 不期望错误：%v", tc.raw, err)
		}
		if eff.Concurrency != tc.want {
			t.Fatalf("concurrency=%s 期望 %d，实际 %d", tc.raw, tc.want, eff.Concurrency)
		}
	}
}

func TestSaveRoot_PreservesOtherFields(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, testDirs.ConfigFile(), `{"game_dir":"/old","filters":["ps"],"initialized":true}`)

	if err := SaveRoot(fsys, testDirs, "/games/new"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	fc, exists, err := ReadFileConfig(fsys, testDirs.ConfigFile())
	if err != nil || !exists {
		t.Fatalf("读取配置失败：exists=%v err=%v", exists, err)
	}
	if fc.GameDir != "/games/new" {
		t.Fatalf("期望 game_dir=/games/new，实际=%q", fc.GameDir)
	}
	if fc.Initialized {
		t.Fatalf("更换根目录后 initialized 应重置为 false")
	}
	if len(fc.Filters) != 1 || fc.Filters[0] != "ps" {
		t.Fatalf("其它字段应保留：%v", fc.Filters)
	}
}

func TestSaveRoot_CreatesConfigDir(t *testing.T) {
	fsys := afero.NewMemMapFs()

	if err := SaveRoot(fsys, testDirs, "/games/dik"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	eff, err := LoadEffective(fsys, testDirs, "/work", CLIArgs{})
	if err != nil {
		t.Fatalf("保存后应能加载：%v", err)
	}
	if eff.Path != "/games/dik" {
		t.Fatalf("期望 path=/games/dik，实际=%q", eff.Path)
	}
}

func writeFile(t *testing.T, fsys afero.Fs, path, body string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte(body), 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}
