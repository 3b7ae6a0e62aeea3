package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned by Probe for content that does not sniff as an image.
var ErrNotImage = errors.New("gallery: file is not an image")

// Info is what Probe learns about an image file.
type Info struct {
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// Probe sniffs data and reads the image header for its dimensions.
func Probe(data []byte) (Info, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Info{ContentType: mt.String()}, ErrNotImage
	}
	info := Info{ContentType: mt.String(), Extension: mt.Extension()}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// formats without a registered decoder (svg, heic) keep zero dimensions
		if errors.Is(err, image.ErrFormat) {
			return info, nil
		}
		return info, fmt.Errorf("gallery: decode header: %w", err)
	}
	info.Width, info.Height = cfg.Width, cfg.Height
	return info, nil
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// IsImageFilename reports whether name has a gallery image extension.
func IsImageFilename(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// Slug lowercases s and joins its letter and digit runs with hyphens.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "uncategorized"
	}
	return b.String()
}

// AltFromFilename turns "beach-sunset_02.jpg" into "beach sunset 02".
func AltFromFilename(name string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	return strings.Join(strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || unicode.IsSpace(r)
	}), " ")
}

// SafeFilename reduces an uploaded name to a slug plus its lowercased
// extension. fallbackExt is used when name has none.
func SafeFilename(name, fallbackExt string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(path.Ext(name))
	stem := strings.TrimSuffix(name, path.Ext(name))
	if ext == "" || ext == "." {
		ext = fallbackExt
	}
	slug := Slug(stem)
	if slug == "uncategorized" {
		slug = "image"
	}
	return slug + ext
}
