package image

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "ewaste-server-go/src/core/errors"
	"ewaste-server-go/src/core/image/imagetest"
	"ewaste-server-go/src/core/types"
)

func tagOf(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation), "expected validation error, got %v", err)
	return apperrors.CodeOf(err, "")
}

func TestValidate_Success(t *testing.T) {
	v := NewValidator(4000, 0)

	jpg := imagetest.JPEG(96, 96)
	require.GreaterOrEqual(t, len(jpg), 4000)
	d, err := v.Validate(imagetest.DataURL("image/jpeg", jpg))
	require.NoError(t, err)
	require.Equal(t, "jpeg", d.Format)
	require.Equal(t, "image/jpeg", d.MIMEType)
	require.Equal(t, 96, d.Width)
	require.Equal(t, jpg, d.Data)

	d, err = v.Validate(imagetest.DataURL("image/png", imagetest.PNG(64, 48)))
	require.NoError(t, err)
	require.Equal(t, "png", d.Format)
	require.Equal(t, 48, d.Height)
}

func TestValidate_MissingSeparator(t *testing.T) {
	v := NewValidator(4000, 0)
	for _, payload := range []string{"", "   ", "data:image/jpeg;base64", "justbase64AAAA", "data:image/gif;base64"} {
		require.Equal(t, types.TagInvalidImage, tagOf(t, func() error { _, err := v.Validate(payload); return err }()), payload)
	}
}

func TestValidate_UnsupportedFormatRegardlessOfBytes(t *testing.T) {
	v := NewValidator(4000, 0)
	jpg := base64.StdEncoding.EncodeToString(imagetest.JPEG(96, 96))

	headers := []string{
		"data:image/gif;base64",
		"data:image/webp;base64",
		"data:text/plain;base64",
		"data:application/octet-stream;base64",
		"image/jpeg",
	}
	for _, h := range headers {
		_, err := v.Validate(h + "," + jpg)
		require.Equal(t, types.TagUnsupportedFormat, tagOf(t, err), h)

		_, err = v.Validate(h + ",AAAA")
		require.Equal(t, types.TagUnsupportedFormat, tagOf(t, err), h)
	}
}

func TestValidate_MalformedBase64(t *testing.T) {
	v := NewValidator(4000, 0)
	for _, data := range []string{"not base64!!", "AAA", "AAAA=A==", "QUJD\x00"} {
		_, err := v.Validate("data:image/jpeg;base64," + data)
		require.Equal(t, types.TagBadImageData, tagOf(t, err), data)
	}
}

func TestValidate_TooSmall(t *testing.T) {
	v := NewValidator(4000, 0)
	for _, n := range []int{0, 1, 100, 3999} {
		payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(make([]byte, n))
		_, err := v.Validate(payload)
		require.Equal(t, types.TagTooSmallImage, tagOf(t, err), n)
	}
}

func TestValidate_NotAnImage(t *testing.T) {
	v := NewValidator(4000, 0)
	junk := make([]byte, 5000)
	for i := range junk {
		junk[i] = byte(i % 251)
	}
	_, err := v.Validate(imagetest.DataURL("image/jpeg", junk))
	require.Equal(t, types.TagBadImageData, tagOf(t, err))
}

func TestValidate_DeclaredFormatMismatch(t *testing.T) {
	v := NewValidator(4000, 0)
	_, err := v.Validate(imagetest.DataURL("image/jpeg", imagetest.PNG(48, 48)))
	require.Equal(t, types.TagBadImageData, tagOf(t, err))
}

func TestValidate_PixelLimit(t *testing.T) {
	v := NewValidator(4000, 96*96-1)
	_, err := v.Validate(imagetest.DataURL("image/jpeg", imagetest.JPEG(96, 96)))
	require.Equal(t, types.TagBadImageData, tagOf(t, err))
}
