package cache

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestStore_ReadWriteThumb(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := New(fsys, "/data/thumbnails", false)

	ok, err := s.HasThumb("BC-Office-a1.mp4")
	if err != nil || ok {
		t.Fatalf("写入前不应命中：ok=%v err=%v", ok, err)
	}

	if err := s.WriteThumb("BC-Office-a1.mp4", []byte("jpg")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, ok, err := s.ReadThumb("BC-Office-a1.mp4")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !ok {
		t.Fatalf("期望命中缓存，但 ok=false")
	}
	if string(b) != "jpg" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	path, err := s.ThumbPath("BC-Office-a1.mp4")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if path != "/data/thumbnails/BC-Office-a1.mp4.jpg" {
		t.Fatalf("路径不符：%q", path)
	}
	if ok, _ := s.HasThumb("BC-Office-a1.mp4"); !ok {
		t.Fatalf("写入后应命中")
	}
}

func TestStore_EmptyFileNotCached(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/t/PS-001.mp4.jpg", nil, 0o644); err != nil {
		t.Fatalf("准备文件失败：%v", err)
	}
	s := New(fsys, "/t", true)
	if ok, err := s.HasThumb("PS-001.mp4"); err != nil || ok {
		t.Fatalf("空文件不应视为缓存：ok=%v err=%v", ok, err)
	}
}

func TestStore_ReadOnlyRejectWrite(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := New(fsys, "/data/thumbnails", true)

	err := s.WriteThumb("PS-001.mp4", []byte("jpg"))
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("期望 ErrReadOnly，实际：%v", err)
	}
	if ok, _ := afero.Exists(fsys, "/data/thumbnails/PS-001.mp4.jpg"); ok {
		t.Fatalf("期望文件不存在")
	}
}

func TestStore_RejectPathTraversal(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/t", false)
	for _, name := range []string{"", "..", "../x.mp4", `a\b.mp4`} {
		if _, err := s.ThumbPath(name); err == nil {
			t.Fatalf("%q 期望错误", name)
		}
	}
}
