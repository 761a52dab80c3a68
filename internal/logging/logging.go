// Package logging 初始化全局 zerolog logger：滚动日志文件 + 可选的控制台输出。
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// FileName 是 logDir 下的日志文件名。
const FileName = "sceneview.log"

// Init 把全局 logger 指向 <logDir>/sceneview.log（按大小滚动）。
//
// verbose=true 时级别降为 debug，并额外以人类可读格式写入 console（通常是 stderr）。
// stdout 保留给 JSON 输出，任何情况下都不写日志。
// 返回的 Closer 用于在退出前关闭日志文件。
func Init(logDir string, verbose bool, console io.Writer) (io.Closer, error) {
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    1,
		MaxBackups: 2,
	}

	writers := []io.Writer{file}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
		if console != nil {
			writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"})
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()

	return file, nil
}
