package types

import (
	"encoding/base64"
	"errors"
	"strings"
)

// Image 随提示词一起发送的图片（例如简历截图）
type Image struct {
	MIMEType string
	Data     []byte
}

// Empty 图片是否没有内容
func (i *Image) Empty() bool {
	return i == nil || len(i.Data) == 0
}

var ErrInvalidDataURL = errors.New("invalid data url")

// ParseDataURL 解析 data:<mime>;base64,<payload> 形式的图片引用
func ParseDataURL(ref string) (*Image, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "data:") {
		return nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(ref[len("data:"):], ",")
	if !ok {
		return nil, ErrInvalidDataURL
	}
	mimeType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" || mimeType == "" {
		return nil, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Join(ErrInvalidDataURL, err)
	}
	return &Image{MIMEType: mimeType, Data: data}, nil
}
