package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"
)

type Asset struct {
	Filename string
	Data     []byte
	Modified time.Time
}

// ArchiveAssets deflates assets into one archive. Repeated filenames get a
// numeric suffix so no entry is shadowed.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	names := newNamer()
	for _, asset := range assets {
		hdr := &zip.FileHeader{
			Name:   names.unique(asset.Filename),
			Method: zip.Deflate,
		}
		if !asset.Modified.IsZero() {
			hdr.Modified = asset.Modified
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", hdr.Name, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", hdr.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}

type namer map[string]int

func newNamer() namer { return namer{} }

func (n namer) unique(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "image"
	}
	key := strings.ToLower(name)
	count := n[key]
	n[key] = count + 1
	if count == 0 {
		return name
	}
	ext := path.Ext(name)
	candidate := fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), count+1, ext)
	// skip suffixes already taken by a literal name
	for n[strings.ToLower(candidate)] > 0 {
		count++
		candidate = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), count+1, ext)
	}
	n[strings.ToLower(candidate)] = 1
	return candidate
}
