package rtsp

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"
)

// AudioDescription is the subset of an ANNOUNCE request's SDP body the
// receiver needs to set up decoding: the RTP payload format and, for
// encrypted AirPlay 1 streams, the RSA-wrapped AES key and IV.
type AudioDescription struct {
	Format    string // "m=audio" rtpmap encoding name, e.g. "AppleLossless"
	FormatParams string // "a=fmtp" line body
	RSAAESKey string // "a=rsaaeskey", base64
	AESIV     string // "a=aesiv", base64
}

// ParseSDP extracts AudioDescription fields from an ANNOUNCE body. Only the
// attribute lines this receiver acts on are parsed — full SDP grammar
// (timing, connection, multiple media sections) is out of scope since
// Airplay ANNOUNCE bodies are a single fixed audio section.
func ParseSDP(body []byte) AudioDescription {
	var desc AudioDescription
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "a=rtpmap:"):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				desc.Format = strings.Split(fields[1], "/")[0]
			}
		case strings.HasPrefix(line, "a=fmtp:"):
			desc.FormatParams = strings.TrimPrefix(line, "a=fmtp:")
		case strings.HasPrefix(line, "a=rsaaeskey:"):
			desc.RSAAESKey = strings.TrimPrefix(line, "a=rsaaeskey:")
		case strings.HasPrefix(line, "a=aesiv:"):
			desc.AESIV = strings.TrimPrefix(line, "a=aesiv:")
		}
	}
	return desc
}

// DecryptAESKey unwraps desc.RSAAESKey with key (RSA-OAEP, SHA-1 — the
// Airplay/RAOP convention) and base64-decodes desc.AESIV, yielding the
// session's AES-128-CBC key and IV (spec §4.6 ANNOUNCE: "decrypt with the
// Airport key, OAEP padding"). Decrypting the audio frames those protect is
// explicitly out of scope (spec §1 non-goal); only the parameters
// themselves need to be recovered here.
func (desc AudioDescription) DecryptAESKey(key *rsa.PrivateKey) (aesKey, aesIV []byte, err error) {
	if desc.RSAAESKey == "" {
		return nil, nil, fmt.Errorf("rtsp: no rsaaeskey in announce body")
	}
	wrapped, err := base64.StdEncoding.DecodeString(padBase64(desc.RSAAESKey))
	if err != nil {
		return nil, nil, fmt.Errorf("rtsp: decode rsaaeskey: %w", err)
	}
	aesKey, err = rsa.DecryptOAEP(sha1.New(), rand.Reader, key, wrapped, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("rtsp: decrypt rsaaeskey: %w", err)
	}

	if desc.AESIV != "" {
		aesIV, err = base64.StdEncoding.DecodeString(padBase64(desc.AESIV))
		if err != nil {
			return nil, nil, fmt.Errorf("rtsp: decode aesiv: %w", err)
		}
	}
	return aesKey, aesIV, nil
}
