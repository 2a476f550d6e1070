package pointlab

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// SaveImage writes a snapshot in the format named by the path
// extension: png, jpg/jpeg, gif, bmp or tif/tiff.
func SaveImage(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return &SaveError{path, err}
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(file, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	case ".gif":
		err = gif.Encode(file, img, nil)
	case ".bmp":
		err = bmp.Encode(file, img)
	case ".tif", ".tiff":
		err = tiff.Encode(file, img, nil)
	default:
		return &SaveError{path, ErrUnsupportedFormat}
	}
	if err != nil {
		return &SaveError{path, err}
	}
	return nil
}
