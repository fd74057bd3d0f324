package rtsp_test

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/melo-audio/melod/internal/rtsp"
)

func TestReadRequestParsesLineHeadersAndBody(t *testing.T) {
	raw := "ANNOUNCE rtsp://device/1 RTSP/1.0\r\n" +
		"CSeq: 3\r\n" +
		"Content-Type: application/sdp\r\n" +
		"Content-Length: 5\r\n" +
		"\r\n" +
		"hello"

	req, err := rtsp.ReadRequest(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if req.Method != "ANNOUNCE" || req.CSeq != 3 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if string(req.Body) != "hello" {
		t.Fatalf("unexpected body: %q", req.Body)
	}
}

func TestWriteResponseEchoesCSeq(t *testing.T) {
	req := &rtsp.Request{CSeq: 7}
	resp := rtsp.NewResponse(req)
	resp.SetHeader("Public", "OPTIONS")

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := rtsp.WriteResponse(w, resp); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "RTSP/1.0 200 OK\r\n") {
		t.Fatalf("unexpected status line: %q", out)
	}
	if !strings.Contains(out, "CSeq: 7\r\n") {
		t.Fatalf("missing CSeq echo: %q", out)
	}
}

func TestAuthenticatorBasic(t *testing.T) {
	a := rtsp.NewAuthenticator("melod", "user", "pass")
	hdr := "Basic " + basicAuth("user", "pass")
	if !a.Check(hdr, "OPTIONS", "*") {
		t.Fatal("expected valid basic auth to pass")
	}
	if a.Check("Basic "+basicAuth("user", "wrong"), "OPTIONS", "*") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestAuthenticatorDisabledWhenNoPassword(t *testing.T) {
	a := rtsp.NewAuthenticator("melod", "user", "")
	if !a.Check("", "OPTIONS", "*") {
		t.Fatal("expected auth to be bypassed with no password configured")
	}
}

func TestParseTransportRoundTrip(t *testing.T) {
	tr := rtsp.ParseTransport("RTP/AVP/UDP;unicast;control_port=6001;timing_port=6002")
	if tr.ControlPort != 6001 || tr.TimingPort != 6002 {
		t.Fatalf("unexpected transport: %+v", tr)
	}
	if !strings.Contains(tr.String(), "control_port=6001") {
		t.Fatalf("unexpected rendered transport: %s", tr.String())
	}
}

func TestParseSDPExtractsFormat(t *testing.T) {
	body := "v=0\r\nm=audio 0 RTP/AVP 96\r\na=rtpmap:96 AppleLossless\r\na=fmtp:96 352 0 16 40 10 14 2 255 0 0 44100\r\n"
	desc := rtsp.ParseSDP([]byte(body))
	if desc.Format != "AppleLossless" {
		t.Fatalf("unexpected format: %q", desc.Format)
	}
}

func TestParseDMAPTagsExtractsTitle(t *testing.T) {
	body := dmapAtom("minm", "Test Song") // title
	tags := rtsp.ParseDMAPTags(body)
	if tags.Title != "Test Song" {
		t.Fatalf("unexpected title: %q", tags.Title)
	}
}

func dmapAtom(tag, value string) []byte {
	var buf bytes.Buffer
	buf.WriteString(tag)
	length := uint32(len(value))
	buf.WriteByte(byte(length >> 24))
	buf.WriteByte(byte(length >> 16))
	buf.WriteByte(byte(length >> 8))
	buf.WriteByte(byte(length))
	buf.WriteString(value)
	return buf.Bytes()
}

func basicAuth(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}
