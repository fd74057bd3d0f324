package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/melo-audio/melod/internal/message"
	"github.com/melo-audio/melod/internal/settings"
)

func newTestStore(t *testing.T) (*settings.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := settings.New("melod-test-"+t.Name(), dir)
	return s, dir
}

func TestStoreLoadDefaultsWhenFileMissing(t *testing.T) {
	s, _ := newTestStore(t)
	g := s.AddGroup("net", "Network", "", nil)
	s.AddBool(g, "enabled", "Enabled", "", false, nil, settings.FlagNone)
	s.AddI32(g, "port", "Port", "", 8080, nil, settings.FlagNone)

	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if g.Entry("enabled").Current().B != false {
		t.Fatal("expected default false")
	}
	if g.Entry("port").Current().I32 != 8080 {
		t.Fatal("expected default 8080")
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	s, dir := newTestStore(t)
	g := s.AddGroup("net", "Network", "", nil)
	s.AddBool(g, "enabled", "Enabled", "", false, nil, settings.FlagNone)
	s.AddString(g, "name", "Name", "", "melo", nil, settings.FlagNone)

	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	g.Entry("enabled").SetCurrent(mustBool(true))
	g.Entry("name").SetCurrent(mustString("living-room"))
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Point s2 at the same underlying file by reusing the id.
	s2 := settings.New(s.ID(), dir)
	g2 := s2.AddGroup("net", "Network", "", nil)
	s2.AddBool(g2, "enabled", "Enabled", "", false, nil, settings.FlagNone)
	s2.AddString(g2, "name", "Name", "", "melo", nil, settings.FlagNone)

	if err := s2.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if g2.Entry("enabled").Current().B != true {
		t.Fatal("expected reloaded enabled=true")
	}
	if g2.Entry("name").Current().Str != "living-room" {
		t.Fatalf("expected reloaded name=living-room, got %q", g2.Entry("name").Current().Str)
	}
}

func TestStoreFilePermissions(t *testing.T) {
	s, dir := newTestStore(t)
	g := s.AddGroup("g", "G", "", nil)
	s.AddBool(g, "e", "E", "", false, nil, settings.FlagNone)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "melo"))
	if err != nil {
		t.Fatalf("stat config dir: %v", err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Fatalf("expected 0700, got %o", info.Mode().Perm())
	}
}

func TestHandleRequestGetGroupListFiltersExport(t *testing.T) {
	s, _ := newTestStore(t)
	g := s.AddGroup("sec", "Security", "", nil)
	s.AddString(g, "password", "Password", "", "hunter2", nil, settings.FlagPassword)
	s.AddString(g, "secret", "Secret", "", "shh", nil, settings.FlagNoExport)
	s.AddBool(g, "visible", "Visible", "", true, nil, settings.FlagNone)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	var resp *message.Message
	s.HandleRequest(message.New(message.KindSettingsRequest, settings.GetGroupList{}), func(m *message.Message) {
		resp = m
	})

	gl, ok := resp.Payload.(settings.GroupListResponse)
	if !ok || len(gl.Groups) != 1 {
		t.Fatalf("expected 1 group in response, got %+v", resp.Payload)
	}
	entries := gl.Groups[0].Entries
	if len(entries) != 2 {
		t.Fatalf("expected secret entry omitted, got %d entries", len(entries))
	}
	for _, e := range entries {
		if e.ID == "password" && e.Value.Str != "" {
			t.Fatal("expected password value blanked")
		}
		if e.ID == "secret" {
			t.Fatal("expected NoExport entry to be omitted")
		}
	}
}

func TestHandleRequestSetGroupValidatorRollback(t *testing.T) {
	s, dir := newTestStore(t)
	validator := func(g *settings.Group) (bool, string) {
		port := g.Entry("port")
		if port.Pending().I32 < 1024 {
			return false, "port must be >= 1024"
		}
		return true, ""
	}
	g := s.AddGroup("net", "Network", "", validator)
	s.AddBool(g, "enabled", "Enabled", "", false, nil, settings.FlagNone)
	s.AddI32(g, "port", "Port", "", 80, nil, settings.FlagNone)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	before, _ := os.ReadFile(filepath.Join(dir, "melo", s.ID()))

	var resp *message.Message
	req := settings.SetGroup{Group: settings.WireGroup{
		ID: "net",
		Entries: []settings.WireEntry{
			{ID: "enabled", Type: settings.TypeBool, Value: mustBool(true)},
			{ID: "port", Type: settings.TypeI32, Value: mustI32(80)},
		},
	}}
	s.HandleRequest(message.New(message.KindSettingsRequest, req), func(m *message.Message) { resp = m })

	if _, ok := resp.Payload.(settings.ErrorResponse); !ok {
		t.Fatalf("expected ErrorResponse, got %+v", resp.Payload)
	}
	if g.Entry("enabled").Current().B != false || g.Entry("port").Current().I32 != 80 {
		t.Fatal("expected values unchanged after rollback")
	}

	after, _ := os.ReadFile(filepath.Join(dir, "melo", s.ID()))
	if string(before) != string(after) {
		t.Fatal("expected on-disk file unchanged after validator rejection")
	}
}

func mustBool(b bool) settings.Value     { return settings.Value{Type: settings.TypeBool, B: b} }
func mustString(s string) settings.Value { return settings.Value{Type: settings.TypeString, Str: s} }
func mustI32(v int32) settings.Value     { return settings.Value{Type: settings.TypeI32, I32: v} }
