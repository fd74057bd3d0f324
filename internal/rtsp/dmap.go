package rtsp

import (
	"encoding/binary"

	"github.com/melo-audio/melod/internal/tags"
)

// dmapTag is a 4-byte DMAP atom identifier.
type dmapTag [4]byte

var (
	tagTitle  = dmapTag{'m', 'i', 'n', 'm'}
	tagArtist = dmapTag{'a', 's', 'a', 'r'}
	tagAlbum  = dmapTag{'a', 's', 'a', 'l'}
	tagGenre  = dmapTag{'a', 's', 'g', 'n'}

	// tagListingItem is the container atom Airplay wraps track metadata in.
	tagListingItem = dmapTag{'m', 'l', 'i', 't'}
)

// ParseDMAPTags walks a SET_PARAMETER application/x-dmap-tagged body's flat
// tag(4)+length(4, big-endian)+value sequence, extracting the metadata
// fields this receiver tracks. The "mlit" container is not parsed as a
// tree: only its header is stepped over, so its child atoms are visited as
// the scan continues linearly. Any other atom, including other containers,
// is skipped whole.
func ParseDMAPTags(body []byte) tags.Tags {
	var t tags.Tags
	for off := 0; off+8 <= len(body); {
		var tag dmapTag
		copy(tag[:], body[off:off+4])
		length := binary.BigEndian.Uint32(body[off+4 : off+8])
		start := off + 8
		end := start + int(length)
		if end > len(body) || end < start {
			break
		}
		if tag == tagListingItem {
			off = start
			continue
		}
		value := string(body[start:end])
		switch tag {
		case tagTitle:
			t.Title = value
		case tagArtist:
			t.Artist = value
		case tagAlbum:
			t.Album = value
		case tagGenre:
			t.Genre = value
		}
		off = end
	}
	return t
}
