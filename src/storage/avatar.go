package storage

import (
	"errors"
	"fmt"
	"net/http"
)

const MaxAvatarSize = 5 << 20 // 5 MB

var (
	ErrAvatarTooLarge = errors.New("avatar must be at most 5 MB")
	ErrAvatarType     = errors.New("avatar must be a jpeg, png or webp image")
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// DetectAvatarType sniffs the first bytes of an upload and returns its
// content type and file extension.
func DetectAvatarType(head []byte) (string, string, error) {
	contentType := http.DetectContentType(head)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: got %s", ErrAvatarType, contentType)
	}
	return contentType, ext, nil
}
