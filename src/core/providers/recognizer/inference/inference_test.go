package inference

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ewaste-server-go/src/core/caption"
	apperrors "ewaste-server-go/src/core/errors"
	"ewaste-server-go/src/core/image"
	"ewaste-server-go/src/core/providers/recognizer"
	"ewaste-server-go/src/core/types"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"list", `[{"generated_text":"a black mobile phone"}]`, "a black mobile phone", false},
		{"object", `{"generated_text":"laptop on a desk"}`, "laptop on a desk", false},
		{"classifier", `[{"label":"cellular telephone","score":0.91},{"label":"remote","score":0.02}]`, "cellular telephone", false},
		{"empty caption", `[{"generated_text":""}]`, "", false},
		{"empty caption object", `{"generated_text":"   "}`, "   ", false},
		{"empty label", `[{"label":"","score":0.1}]`, "", false},
		{"error", `{"error":"Model is currently loading","estimated_time":20}`, "", true},
		{"empty list", `[]`, "", true},
		{"empty object", `{}`, "", true},
		{"garbage", `<html>`, "", true},
		{"blank", ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRecognizePostsRawBytes(t *testing.T) {
	img := &image.Prepared{MIMEType: "image/jpeg", Format: "jpeg", Data: []byte("raw-jpeg")}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		require.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, img.Data, body)
		_, _ = w.Write([]byte(`[{"generated_text":"Charger"}]`))
	}))
	defer srv.Close()

	p, err := NewProvider(&recognizer.Config{Name: "hf", BaseURL: srv.URL, APIKey: "hf-token"}, recognizer.Deps{})
	require.NoError(t, err)
	require.NoError(t, p.Initialize())
	defer p.Cleanup()

	res, err := p.Recognize(context.Background(), recognizer.Input{Image: img})
	require.NoError(t, err)
	require.Equal(t, types.TextResult("hf", "Charger"), res)
}

func TestRecognizeEmptyCaption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"generated_text":""}]`))
	}))
	defer srv.Close()

	p, err := NewProvider(&recognizer.Config{Name: "hf", BaseURL: srv.URL}, recognizer.Deps{})
	require.NoError(t, err)
	require.NoError(t, p.Initialize())

	img := &image.Prepared{MIMEType: "image/jpeg", Format: "jpeg", Data: []byte("jpeg")}
	res, err := p.Recognize(context.Background(), recognizer.Input{Image: img})
	require.NoError(t, err)
	require.Equal(t, types.TextResult("hf", ""), res)
	require.Equal(t, types.LabelUnknown, caption.Normalize(res))
}

func TestRecognizeNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"loading"}`))
	}))
	defer srv.Close()

	p, err := NewProvider(&recognizer.Config{Name: "hf", BaseURL: srv.URL}, recognizer.Deps{})
	require.NoError(t, err)
	require.NoError(t, p.Initialize())

	img := &image.Prepared{MIMEType: "image/png", Format: "png", Data: []byte("png")}
	_, err = p.Recognize(context.Background(), recognizer.Input{Image: img})
	require.True(t, apperrors.IsKind(err, apperrors.KindProvider))
	require.Equal(t, types.TagAIError, apperrors.CodeOf(err, ""))
}

func TestInitializeRequiresURL(t *testing.T) {
	p, err := NewProvider(&recognizer.Config{Name: "hf"}, recognizer.Deps{})
	require.NoError(t, err)
	require.Error(t, p.Initialize())
}
