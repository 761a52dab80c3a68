package imgx

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png" // 注册 PNG 解码器（ffmpeg 也可能输出 png）

	"github.com/nfnt/resize"
)

// Quality 是缩略图的 JPEG 质量。
const Quality = 85

// Thumbnail 把一帧图片缩放到指定宽度并编码为 JPEG。
//
// 约束：
// - 输入允许是 JPEG/PNG
// - 保持宽高比；原图不宽于 width 时不放大
// - 输出固定为 JPEG
func Thumbnail(frame []byte, width int) ([]byte, error) {
	if len(frame) == 0 {
		return nil, errors.New("帧数据为空")
	}
	if width <= 0 {
		return nil, errors.New("缩略图宽度必须为正数")
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New("图片尺寸无效")
	}

	out := img
	if b.Dx() > width {
		// 高度传 0：按宽度等比缩放。
		out = resize.Resize(uint(width), 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
