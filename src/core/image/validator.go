package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg" // 注册JPEG解码器
	_ "image/png"  // 注册PNG解码器

	apperrors "ewaste-server-go/src/core/errors"
	"ewaste-server-go/src/core/types"
)

const opValidate = "image.validate"

// allowedHeaders is the strict allow-list of transport header prefixes.
var allowedHeaders = []struct {
	prefix string
	mime   string
	format string
}{
	{prefix: "data:image/jpeg", mime: "image/jpeg", format: "jpeg"},
	{prefix: "data:image/png", mime: "image/png", format: "png"},
}

// Validator checks untrusted "<mime-header>,<base64>" payloads.
// It is stateless and safe for concurrent use.
type Validator struct {
	MinBytes  int
	MaxPixels int64
}

// NewValidator 创建图片验证器
func NewValidator(minBytes int, maxPixels int64) *Validator {
	return &Validator{MinBytes: minBytes, MaxPixels: maxPixels}
}

// Validate decodes payload or returns a KindValidation error whose Code is the response tag.
func (v *Validator) Validate(payload string) (*Decoded, error) {
	payload = strings.TrimSpace(payload)
	header, data, ok := strings.Cut(payload, ",")
	if payload == "" || !ok {
		return nil, apperrors.New(apperrors.KindValidation, opValidate, types.TagInvalidImage,
			"payload is empty or lacks the header,data separator")
	}

	mime, format, ok := matchHeader(header)
	if !ok {
		return nil, apperrors.New(apperrors.KindValidation, opValidate, types.TagUnsupportedFormat,
			fmt.Sprintf("unsupported image header %q", truncate(header, 40)))
	}

	raw, err := base64.StdEncoding.Strict().DecodeString(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, opValidate, types.TagBadImageData,
			"base64 decode failed", err)
	}

	if len(raw) < v.MinBytes {
		return nil, apperrors.New(apperrors.KindValidation, opValidate, types.TagTooSmallImage,
			fmt.Sprintf("decoded image is %d bytes, minimum is %d", len(raw), v.MinBytes))
	}

	cfg, actual, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, opValidate, types.TagBadImageData,
			"bytes are not a decodable image", err)
	}
	if actual != format {
		return nil, apperrors.New(apperrors.KindValidation, opValidate, types.TagBadImageData,
			fmt.Sprintf("header declares %s but bytes are %s", format, actual))
	}
	if v.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > v.MaxPixels {
		return nil, apperrors.New(apperrors.KindValidation, opValidate, types.TagBadImageData,
			fmt.Sprintf("image is %dx%d, above the %d pixel limit", cfg.Width, cfg.Height, v.MaxPixels))
	}

	return &Decoded{
		MIMEType: mime,
		Format:   format,
		Data:     raw,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

func matchHeader(header string) (mime, format string, ok bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, a := range allowedHeaders {
		if strings.HasPrefix(h, a.prefix) {
			return a.mime, a.format, true
		}
	}
	return "", "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
