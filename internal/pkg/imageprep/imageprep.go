// Package imageprep bounds upload size by re-encoding large images before
// they reach the media host. It is a best-effort local transform: when
// anything about the input resists decoding or re-encoding, the original
// bytes are returned unchanged — a slow upload beats a broken one.
package imageprep

import (
	"bytes"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// qualitySteps are tried in order until the encoded size fits under the
// threshold.
var qualitySteps = []int{85, 75, 65, 55, 45}

type Preparer struct {
	// ThresholdBytes: inputs below this size pass through untouched.
	ThresholdBytes int64
	// MaxDimension caps the longer side, aspect ratio preserved.
	MaxDimension int

	log *zap.Logger
}

func NewPreparer(thresholdBytes int64, maxDimension int, log *zap.Logger) *Preparer {
	return &Preparer{ThresholdBytes: thresholdBytes, MaxDimension: maxDimension, log: log}
}

// Prepare returns data unchanged when it is already under the threshold,
// otherwise a JPEG re-encode fitted to MaxDimension. Never fails.
func (p *Preparer) Prepare(data []byte) []byte {
	if int64(len(data)) < p.ThresholdBytes {
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		p.log.Warn("image decode failed, uploading original", zap.Error(err))
		return data
	}

	b := img.Bounds()
	if b.Dx() > p.MaxDimension || b.Dy() > p.MaxDimension {
		img = imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)
	}

	var last []byte
	for _, q := range qualitySteps {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
			p.log.Warn("image encode failed, uploading original", zap.Error(err))
			return data
		}
		last = buf.Bytes()
		if int64(len(last)) <= p.ThresholdBytes {
			return last
		}
	}
	// Lowest quality step still above threshold; ship it anyway rather
	// than degrade further.
	return last
}
