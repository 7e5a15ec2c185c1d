package media

import (
	"bytes"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// FitPhoto downscales a photo so that neither side exceeds maxDim, keeping
// the aspect ratio and the original format.  It reports false and returns
// the input untouched when no resize was needed, maxDim is not positive or
// the format is not jpg, png or webp.
func FitPhoto(data []byte, contentType string, maxDim int) ([]byte, bool, error) {
	if maxDim <= 0 || len(data) == 0 {
		return data, false, nil
	}
	ext := Extension(contentType, FallbackPhotoExt)
	if ext != "jpg" && ext != "png" && ext != "webp" {
		return data, false, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data, false, err
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return data, false, nil
	}
	fitted := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	buf := new(bytes.Buffer)
	switch ext {
	case "png":
		err = imaging.Encode(buf, fitted, imaging.PNG)
	case "webp":
		err = webp.Encode(buf, fitted, &webp.Options{Lossless: false, Quality: 85})
	default:
		err = imaging.Encode(buf, fitted, imaging.JPEG, imaging.JPEGQuality(85))
	}
	if err != nil {
		return data, false, err
	}
	return buf.Bytes(), true, nil
}
