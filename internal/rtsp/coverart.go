package rtsp

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// maxCoverArtBytes bounds a single SET_PARAMETER image/* body — Airplay
// senders can push a cover image per track and a misbehaving one
// shouldn't be able to force an unbounded buffer.
const maxCoverArtBytes = 4 << 20

// ValidateCoverArt sniffs data's image format and dimensions, rejecting
// payloads too large or that aren't a decodable still image. The blank
// imports register jpeg/png/gif (stdlib) and bmp/webp (golang.org/x/image,
// formats Airplay senders are known to push that the stdlib doesn't cover)
// with image.DecodeConfig's format registry.
func ValidateCoverArt(data []byte) (format string, width, height int, err error) {
	if len(data) == 0 {
		return "", 0, 0, fmt.Errorf("rtsp: empty cover art")
	}
	if len(data) > maxCoverArtBytes {
		return "", 0, 0, fmt.Errorf("rtsp: cover art exceeds %d bytes", maxCoverArtBytes)
	}
	cfg, fmtName, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("rtsp: decode cover art: %w", err)
	}
	return fmtName, cfg.Width, cfg.Height, nil
}
