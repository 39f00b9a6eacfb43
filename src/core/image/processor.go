package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"sync/atomic"

	"golang.org/x/image/draw"

	"ewaste-server-go/src/configs"
	apperrors "ewaste-server-go/src/core/errors"
	"ewaste-server-go/src/core/types"
	"ewaste-server-go/src/core/utils"
)

// ImageProcessor 图片处理器. It shrinks oversize captures before they are sent upstream.
type ImageProcessor struct {
	maxSide int
	quality int
	logger  *utils.TaggedLogger
	metrics ImageMetrics
	encode  func(w io.Writer, m image.Image, o *jpeg.Options) error
}

// NewImageProcessor 创建新的图片处理器
func NewImageProcessor(cfg configs.ImageConfig, logger *utils.Logger) *ImageProcessor {
	maxSide := cfg.MaxSide
	if maxSide <= 0 {
		maxSide = configs.DefaultMaxSide
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = configs.DefaultJPEGQuality
	}
	return &ImageProcessor{
		maxSide: maxSide,
		quality: quality,
		logger:  logger.WithTag("image"),
		encode:  jpeg.Encode,
	}
}

// Prepare returns the bytes a provider should send. Images within max_side pass through unchanged.
// Bytes that fail a full decode yield a bad-image-data validation error.
func (p *ImageProcessor) Prepare(img *Decoded) (*Prepared, error) {
	atomic.AddInt64(&p.metrics.TotalProcessed, 1)

	if img.Width <= p.maxSide && img.Height <= p.maxSide {
		atomic.AddInt64(&p.metrics.Passthrough, 1)
		return &Prepared{MIMEType: img.MIMEType, Format: img.Format, Data: img.Data}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		atomic.AddInt64(&p.metrics.Failed, 1)
		return nil, apperrors.Wrap(apperrors.KindValidation, "image.prepare", types.TagBadImageData,
			"decode for resize", err)
	}

	w, h := scaledSize(img.Width, img.Height, p.maxSide)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := p.encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		atomic.AddInt64(&p.metrics.Failed, 1)
		// server-side failure, reported to the caller like a provider error
		return nil, apperrors.Wrap(apperrors.KindProvider, "image.prepare", types.TagAIError,
			"encode resized jpeg", err)
	}
	atomic.AddInt64(&p.metrics.Resized, 1)

	p.logger.Debug("image downscaled", utils.Fields{
		"from":  fmt.Sprintf("%dx%d", img.Width, img.Height),
		"to":    fmt.Sprintf("%dx%d", w, h),
		"bytes": buf.Len(),
	})

	return &Prepared{MIMEType: "image/jpeg", Format: "jpeg", Data: buf.Bytes(), Resized: true}, nil
}

// scaledSize fits w x h inside maxSide keeping the aspect ratio.
func scaledSize(w, h, maxSide int) (int, int) {
	if w >= h {
		nh := h * maxSide / w
		if nh < 1 {
			nh = 1
		}
		return maxSide, nh
	}
	nw := w * maxSide / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxSide
}

// GetMetrics 获取处理统计信息
func (p *ImageProcessor) GetMetrics() ImageMetrics {
	return ImageMetrics{
		TotalProcessed: atomic.LoadInt64(&p.metrics.TotalProcessed),
		Resized:        atomic.LoadInt64(&p.metrics.Resized),
		Passthrough:    atomic.LoadInt64(&p.metrics.Passthrough),
		Failed:         atomic.LoadInt64(&p.metrics.Failed),
	}
}
