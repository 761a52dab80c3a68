package library

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce 合并短时间内的连续变更（拷贝大文件时会产生大量 Write 事件）。
const DefaultDebounce = 500 * time.Millisecond

// Watch 监听视频目录，目录内容变化时（防抖后）调用 onChange。
// 阻塞直到 ctx 结束；返回 nil 表示正常退出。
//
// 注意：fsnotify 直接作用于真实文件系统，与 Library 的 afero.Fs 无关。
func (l *Library) Watch(ctx context.Context, debounce time.Duration, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败：%w", err)
	}
	defer w.Close()

	dir := l.MoviesDir()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("监听目录 %q 失败：%w", dir, err)
	}
	log.Debug().Str("dir", dir).Msg("开始监听视频目录")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Write) {
				continue
			}
			log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("视频目录有变化")
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("文件监听出错")
		case <-fire:
			fire = nil
			onChange()
		}
	}
}
