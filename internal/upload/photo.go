// Package upload 校验凭证照片内容并提取元数据；图片本身不落盘。
package upload

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/disintegration/imaging"

	pkgerrors "storeops/pkg/errors"
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Result 通过校验的照片元数据
type Result struct {
	ContentType string
	Width       int
	Height      int
	SizeBytes   int64
	SHA256      string
}

// Validator 照片校验器
type Validator struct {
	MaxBytes     int64
	MinDimension int
}

// NewValidator 创建校验器
func NewValidator(maxBytes int64, minDimension int) *Validator {
	return &Validator{MaxBytes: maxBytes, MinDimension: minDimension}
}

// Read 读取并校验照片；超过 MaxBytes 直接拒绝
func (v *Validator) Read(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, v.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("读取照片失败: %w", err)
	}
	return v.Validate(data)
}

// Validate 校验照片字节：大小、格式、可解码、最小边长
func (v *Validator) Validate(data []byte) (*Result, error) {
	size := int64(len(data))
	if size == 0 {
		return nil, pkgerrors.Validation("照片内容为空")
	}
	if size > v.MaxBytes {
		return nil, pkgerrors.Validation("照片大小超过上限 %d 字节", v.MaxBytes)
	}

	contentType := http.DetectContentType(data)
	if !allowedTypes[contentType] {
		return nil, pkgerrors.Validation("不支持的图片格式: %s", contentType)
	}

	// 按 EXIF 方向校正后的尺寸作为照片尺寸
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, pkgerrors.Validation("照片无法解码: %v", err)
	}
	b := img.Bounds()
	if b.Dx() < v.MinDimension || b.Dy() < v.MinDimension {
		return nil, pkgerrors.Validation("照片尺寸 %dx%d 小于最小边长 %d", b.Dx(), b.Dy(), v.MinDimension)
	}

	sum := sha256.Sum256(data)
	return &Result{
		ContentType: contentType,
		Width:       b.Dx(),
		Height:      b.Dy(),
		SizeBytes:   size,
		SHA256:      hex.EncodeToString(sum[:]),
	}, nil
}
