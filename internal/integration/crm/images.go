package crm

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const maxImagePixels = 50_000_000

// normalizeImage downsizes an image so its longer side fits maxDimension and
// re-encodes it as JPEG. Content that does not decode as an image is returned
// untouched with ok false, as is an image whose header declares more than
// maxImagePixels.
func normalizeImage(data []byte, filename string, maxDimension, quality int) ([]byte, string, bool) {
	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || header.Width <= 0 || header.Height <= 0 {
		return data, filename, false
	}
	if int64(header.Width)*int64(header.Height) > maxImagePixels {
		return data, filename, false
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, filename, false
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return data, filename, false
	}

	targetW, targetH := fitWithin(width, height, maxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if targetW == width && targetH == height {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: quality}); err != nil {
		return data, filename, false
	}
	return out.Bytes(), jpegName(filename), true
}

func fitWithin(width, height, maxDimension int) (int, int) {
	if maxDimension <= 0 || (width <= maxDimension && height <= maxDimension) {
		return width, height
	}
	if width >= height {
		h := height * maxDimension / width
		if h < 1 {
			h = 1
		}
		return maxDimension, h
	}
	w := width * maxDimension / height
	if w < 1 {
		w = 1
	}
	return w, maxDimension
}

func jpegName(filename string) string {
	if filename == "" {
		return "document.jpg"
	}
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + ".jpg"
}
