/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	packet.go: Minimal TNC2 ("monitor format") APRS position report parser, enough to
	 get position, altitude and comment out of the balloon's raw packets.
*/

package aprsparse

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/b3nn0/balloonwind/base91"
)

// ErrNotPosition is returned for well formed packets that carry no position report.
var ErrNotPosition = errors.New("not a position report")

type PacketError struct {
	Line   string
	Reason string
}

func (e *PacketError) Error() string {
	return fmt.Sprintf("aprs packet %q: %s", e.Line, e.Reason)
}

type Packet struct {
	Source     string
	Dest       string
	Path       []string
	DataType   byte
	Timestamp  string // raw 7 char timestamp, empty if the report has none
	Compressed bool

	Latitude    float64
	Longitude   float64
	AltitudeM   float64
	HasAltitude bool
	CourseDeg   int
	SpeedKt     int

	Comment string
}

var (
	// SRC>DEST[,PATH...]:
	headerRex = regexp.MustCompile(`^([A-Z0-9]{1,6}(?:-[0-9A-Z]{1,2})?)>([A-Z0-9-]+)((?:,[A-Za-z0-9*-]+)*):`)
	csRex     = regexp.MustCompile(`^(\d{3})/(\d{3})`)
	altRex    = regexp.MustCompile(`^/A=(-\d{5}|\d{6})`)
	tsRex     = regexp.MustCompile(`^\d{6}[zh/]`)
)

// ParsePacket parses one raw packet line.
func ParsePacket(line string) (Packet, error) {
	line = strings.TrimRight(line, "\r\n")
	m := headerRex.FindStringSubmatch(line)
	if m == nil {
		return Packet{}, &PacketError{Line: line, Reason: "no TNC2 header"}
	}
	p := Packet{Source: m[1], Dest: m[2]}
	if len(m[3]) > 0 {
		p.Path = strings.Split(m[3][1:], ",")
	}
	info := line[len(m[0]):]
	if len(info) == 0 {
		return Packet{}, &PacketError{Line: line, Reason: "empty information field"}
	}

	p.DataType = info[0]
	body := info[1:]
	switch p.DataType {
	case '!', '=':
	case '/', '@':
		if !tsRex.MatchString(body) {
			return Packet{}, &PacketError{Line: line, Reason: "bad timestamp"}
		}
		p.Timestamp = body[:7]
		body = body[7:]
	default:
		return Packet{}, ErrNotPosition
	}

	if len(body) == 0 {
		return Packet{}, &PacketError{Line: line, Reason: "missing position"}
	}

	var err error
	if body[0] >= '0' && body[0] <= '9' {
		body, err = p.uncompressedPosition(body)
	} else {
		body, err = p.compressedPosition(body)
	}
	if err != nil {
		return Packet{}, &PacketError{Line: line, Reason: err.Error()}
	}

	if !p.Compressed {
		if cs := csRex.FindStringSubmatch(body); cs != nil {
			p.CourseDeg, _ = strconv.Atoi(cs[1])
			p.SpeedKt, _ = strconv.Atoi(cs[2])
			body = body[len(cs[0]):]
		}
	}
	// Only at the head of the comment: the telemetry that follows may contain "/A=" by chance.
	if a := altRex.FindStringSubmatch(body); a != nil {
		ft, _ := strconv.Atoi(a[1])
		p.AltitudeM = base91.FeetToMeters(float64(ft))
		p.HasAltitude = true
		body = body[len(a[0]):]
	}
	p.Comment = body
	return p, nil
}

// DDMM.mmN/DDDMM.mmW$
func (p *Packet) uncompressedPosition(s string) (string, error) {
	if len(s) < 19 {
		return "", fmt.Errorf("position too short")
	}
	lat, err := parseDegMin(s[0:8], 2, 'N', 'S')
	if err != nil {
		return "", fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseDegMin(s[9:18], 3, 'E', 'W')
	if err != nil {
		return "", fmt.Errorf("longitude: %w", err)
	}
	if lat > 90 || lon > 180 || lat < -90 || lon < -180 {
		return "", fmt.Errorf("position out of range")
	}
	p.Latitude = lat
	p.Longitude = lon
	return s[19:], nil
}

func parseDegMin(s string, degDigits int, pos, neg byte) (float64, error) {
	// Position ambiguity replaces trailing digits with spaces.
	s = strings.ReplaceAll(s, " ", "0")
	hemi := s[len(s)-1] &^ 0x20 // upper case
	deg, err := strconv.Atoi(s[:degDigits])
	if err != nil {
		return 0, err
	}
	mins, err := strconv.ParseFloat(s[degDigits:len(s)-1], 64)
	if err != nil {
		return 0, err
	}
	if mins >= 60 {
		return 0, fmt.Errorf("minutes %v >= 60", mins)
	}
	v := float64(deg) + mins/60.0
	switch hemi {
	case pos:
	case neg:
		v = -v
	default:
		return 0, fmt.Errorf("bad hemisphere %q", s[len(s)-1])
	}
	return v, nil
}

// /YYYYXXXX$csT
func (p *Packet) compressedPosition(s string) (string, error) {
	if len(s) < 13 {
		return "", fmt.Errorf("compressed position too short")
	}
	r := []rune(s[:13])
	if len(r) != 13 {
		return "", fmt.Errorf("compressed position is not ASCII")
	}
	lat, err := base91.DecodeLatitude(r[1:5])
	if err != nil {
		return "", err
	}
	lon, err := base91.DecodeLongitude(r[5:9])
	if err != nil {
		return "", err
	}
	p.Latitude = lat
	p.Longitude = lon
	p.Compressed = true

	c, sp, t := s[10], s[11], s[12]
	if c != ' ' && (int(t)-base91.Offset)&0x18 == 0x10 {
		// GGA source: cs is altitude.
		ft := math.Pow(base91.AltitudeBase, float64(int(c)-base91.Offset)*base91.Radix+float64(int(sp)-base91.Offset))
		p.AltitudeM = base91.FeetToMeters(ft)
		p.HasAltitude = true
	} else if c >= '!' && c <= 'z' {
		p.CourseDeg = (int(c) - base91.Offset) * 4
		p.SpeedKt = int(math.Round(math.Pow(base91.WindSpeedBase, float64(int(sp)-base91.Offset)) - 1.0))
	}
	return s[13:], nil
}
