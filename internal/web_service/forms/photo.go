package forms

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultProfilePhoto is used when a user registers without a picture.
const DefaultProfilePhoto = "/static/default_profile.svg"

func validateImage(fl validator.FieldLevel) bool {
	_, err := DetectImageFormat(fl.Field().Bytes())
	return err == nil
}

// DetectImageFormat decodes only the image header and returns its format name.
func DetectImageFormat(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	return format, err
}

// EncodePhoto returns the raw base64 payload stored on messages.
func EncodePhoto(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// PhotoDataURI builds the data URI stored on users. Undecodable data yields "".
func PhotoDataURI(data []byte) string {
	format, err := DetectImageFormat(data)
	if err != nil {
		return ""
	}
	return "data:image/" + format + ";base64," + EncodePhoto(data)
}

// Base64DataURI turns a stored message photo back into something an <img> can show.
func Base64DataURI(b64 string) string {
	if b64 == "" || strings.HasPrefix(b64, "data:") {
		return b64
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return ""
	}
	return "data:" + http.DetectContentType(raw) + ";base64," + b64
}
