package zip

import (
	"archive/zip"
	"bytes"
	"strings"
)

// Asset is one file destined for an archive. Filename may omit the extension;
// one is derived from MIME when missing.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets packs the assets into an in-memory zip archive. Assets that
// cannot be written are skipped.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		if len(asset.Data) == 0 {
			continue
		}
		w, err := zw.Create(withExtension(asset.Filename, asset.MIME))
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

func withExtension(name, mime string) string {
	if strings.Contains(name, ".") {
		return name
	}
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return name + ".png"
	case "image/jpeg", "image/jpg":
		return name + ".jpg"
	case "image/webp":
		return name + ".webp"
	default:
		return name + ".bin"
	}
}
