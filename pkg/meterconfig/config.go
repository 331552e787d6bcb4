// Package meterconfig loads a meter connection profile from an INI
// file: the serial port, credentials, timeouts, and named survey
// shortcuts a deployment wires up once and reuses across runs.
package meterconfig

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/ini.v1"

	"github.com/meterlink/edmidrv/pkg/registers"
)

// Profile is one meter connection's resolved configuration.
type Profile struct {
	Port     string
	Baud     int
	ReadPoll time.Duration
	Timeout  time.Duration

	MeterSerial uint32
	Username    string
	Password    string

	// Surveys maps a short name ("daily", "ls01", ...) the caller uses
	// on the command line to the 16-bit survey code it resolves to.
	Surveys map[string]uint16
}

// defaultSurveys seeds Surveys with the protocol's own named surveys
// (§4.5, §8) so a profile file only needs to override or add to them.
func defaultSurveys() map[string]uint16 {
	return map[string]uint16{
		"ls01": uint16(registers.LS01),
		"ls02": uint16(registers.LS02),
		"ls03": uint16(registers.LS03),
		"ls04": uint16(registers.LS04),
		"ls05": uint16(registers.LS05),
		"ls06": uint16(registers.LS06),
		"ls07": uint16(registers.LS07),
		"ls08": uint16(registers.LS08),
		"ls09": uint16(registers.LS09),
		"ls10": uint16(registers.LS10),
	}
}

// Load parses an INI file shaped like:
//
//	[connection]
//	port = /dev/ttyUSB0
//	baud = 9600
//	read_poll_ms = 100
//	timeout_ms = 2000
//
//	[meter]
//	serial = 251308613
//	username = EDMA
//	password = IMDEIMDE
//
//	[surveys]
//	daily = 0x0305
//	export = 0x0345
func Load(path string) (*Profile, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("meterconfig: load %s: %w", path, err)
	}

	conn := cfg.Section("connection")
	meter := cfg.Section("meter")

	p := &Profile{
		Port:        conn.Key("port").String(),
		Baud:        conn.Key("baud").MustInt(9600),
		ReadPoll:    time.Duration(conn.Key("read_poll_ms").MustInt(100)) * time.Millisecond,
		Timeout:     time.Duration(conn.Key("timeout_ms").MustInt(2000)) * time.Millisecond,
		MeterSerial: uint32(meter.Key("serial").MustUint64(0)),
		Username:    meter.Key("username").String(),
		Password:    meter.Key("password").String(),
		Surveys:     defaultSurveys(),
	}
	if p.Port == "" {
		return nil, fmt.Errorf("meterconfig: %s: [connection] port is required", path)
	}

	if cfg.HasSection("surveys") {
		for _, key := range cfg.Section("surveys").Keys() {
			code, err := strconv.ParseUint(key.Value(), 0, 16)
			if err != nil {
				return nil, fmt.Errorf("meterconfig: %s: survey %q: %w", path, key.Name(), err)
			}
			p.Surveys[key.Name()] = uint16(code)
		}
	}

	return p, nil
}

// ResolveSurvey looks up a survey by its configured short name, falling
// back to parsing name itself as a hex/decimal integer literal so a
// caller can always pass a raw code.
func (p *Profile) ResolveSurvey(name string) (uint16, error) {
	if code, ok := p.Surveys[name]; ok {
		return code, nil
	}
	var code uint64
	if _, err := fmt.Sscanf(name, "0x%x", &code); err == nil {
		return uint16(code), nil
	}
	if _, err := fmt.Sscanf(name, "%d", &code); err == nil {
		return uint16(code), nil
	}
	return 0, fmt.Errorf("meterconfig: unknown survey %q", name)
}
