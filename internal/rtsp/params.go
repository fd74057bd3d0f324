package rtsp

import (
	"strconv"
	"strings"
)

// sampleRate is the fixed Airplay 1 RTP clock rate progress values are
// expressed in.
const sampleRate = 44100

func splitParamLines(body []byte) []string {
	raw := strings.ReplaceAll(string(body), "\r\n", "\n")
	return strings.Split(raw, "\n")
}

func splitParamLine(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

// parseAirplayVolume maps Airplay's -30.0..0.0 dB scale (-144.0 = mute) to
// this receiver's 0..1 linear scale.
func parseAirplayVolume(s string) (float64, bool) {
	db, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if db <= -144 {
		return 0, true
	}
	if db < -30 {
		db = -30
	}
	if db > 0 {
		db = 0
	}
	return (db + 30) / 30, true
}

// parseAirplayProgress parses "start/current/end" RTP timestamps into
// position/duration milliseconds.
func parseAirplayProgress(s string) (positionMs, durationMs int64, ok bool) {
	fields := strings.Split(s, "/")
	if len(fields) != 3 {
		return 0, 0, false
	}
	start, err1 := strconv.ParseInt(fields[0], 10, 64)
	current, err2 := strconv.ParseInt(fields[1], 10, 64)
	end, err3 := strconv.ParseInt(fields[2], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, false
	}
	positionMs = (current - start) * 1000 / sampleRate
	durationMs = (end - start) * 1000 / sampleRate
	return positionMs, durationMs, true
}
