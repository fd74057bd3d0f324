// Package advertise registers the player's RTSP control port on the LAN as
// an Airplay receiver via mDNS/DNS-SD (_raop._tcp), so clients can discover
// it without a configured address.
package advertise

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/grandcat/zeroconf"
)

// Service manages _raop._tcp mDNS registration for one player.
type Service struct {
	deviceName string
	port       int
	server     *zeroconf.Server
}

// New creates a Service advertising deviceName on port (the RTSP listener's
// port). The Airplay instance name is "<hex deviceID>@<deviceName>" per the
// protocol's convention; deviceID is generated fresh each run.
func New(deviceName string, port int) *Service {
	return &Service{deviceName: deviceName, port: port}
}

// Start registers the mDNS service and blocks until ctx is cancelled, then
// unregisters it.
func (s *Service) Start(ctx context.Context) error {
	deviceID, err := randomDeviceID()
	if err != nil {
		return fmt.Errorf("advertise: generate device id: %w", err)
	}
	instance := deviceID + "@" + s.deviceName

	txt := []string{
		"txtvers=1",
		"ch=2",
		"cn=0,1",
		"et=0,1",
		"sv=false",
		"da=true",
		"sr=44100",
		"ss=16",
		"pw=false",
		"vn=3",
		"tp=UDP",
		"md=0,1,2",
		"am=melod",
	}

	server, err := zeroconf.Register(instance, "_raop._tcp", "local.", s.port, txt, nil)
	if err != nil {
		return fmt.Errorf("advertise: register: %w", err)
	}
	s.server = server
	slog.Info("advertise: registered airplay receiver", "instance", instance, "port", s.port)

	<-ctx.Done()

	server.Shutdown()
	slog.Info("advertise: unregistered airplay receiver", "instance", instance)
	return nil
}

func randomDeviceID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
