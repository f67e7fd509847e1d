package upload

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	pkgerrors "storeops/pkg/errors"
)

func encodeImage(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		t.Fatalf("编码测试图片失败: %v", err)
	}
	return buf.Bytes()
}

func TestValidate_AcceptsPNGAndJPEG(t *testing.T) {
	v := NewValidator(1<<20, 64)

	for name, format := range map[string]imaging.Format{"image/png": imaging.PNG, "image/jpeg": imaging.JPEG} {
		data := encodeImage(t, 120, 80, format)
		res, err := v.Validate(data)
		if err != nil {
			t.Fatalf("%s 应通过校验: %v", name, err)
		}
		if res.ContentType != name {
			t.Errorf("期望 %s，实际 %s", name, res.ContentType)
		}
		if res.Width != 120 || res.Height != 80 {
			t.Errorf("尺寸不正确: %dx%d", res.Width, res.Height)
		}
		if res.SizeBytes != int64(len(data)) || len(res.SHA256) != 64 {
			t.Errorf("元数据不正确: %+v", res)
		}
	}
}

func TestValidate_Rejections(t *testing.T) {
	v := NewValidator(4096, 64)

	cases := map[string][]byte{
		"empty":     nil,
		"text":      []byte("hello, not an image"),
		"too small": encodeImage(t, 32, 32, imaging.PNG),
		"too big":   bytes.Repeat([]byte{0xff}, 5000),
	}
	for name, data := range cases {
		_, err := v.Validate(data)
		if !errors.Is(err, pkgerrors.ErrValidation) {
			t.Errorf("%s: 期望 ErrValidation，实际 %v", name, err)
		}
	}
}

func TestRead_LimitsInput(t *testing.T) {
	v := NewValidator(10, 1)
	_, err := v.Read(strings.NewReader(strings.Repeat("x", 100)))
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("超限输入应返回 ErrValidation，实际 %v", err)
	}
}
