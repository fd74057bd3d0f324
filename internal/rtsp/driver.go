package rtsp

import "github.com/melo-audio/melod/internal/player"

// nullDriver backs an RTSP-originated player entity. The actual audio
// decode/mix pipeline a Driver would otherwise control is out of scope for
// this module (spec §1) — RTSP's job stops at translating control-channel
// requests into registry state, so position/state changes here are no-ops
// rather than touching real audio.
type nullDriver struct {
	position int64
}

func (d *nullDriver) Play(path string) error            { return nil }
func (d *nullDriver) SetState(state player.State) error { return nil }
func (d *nullDriver) SetPosition(ms int64) error        { d.position = ms; return nil }
func (d *nullDriver) GetPosition() (int64, error)       { return d.position, nil }
func (d *nullDriver) GetAsset() (any, error)            { return nil, nil }
func (d *nullDriver) SetGain(volume float64, mute bool) error {
	return nil
}
