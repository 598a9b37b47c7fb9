/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	unpack.go: Split the compressed telemetry comment into historical GPS fixes and
	 sensor samples.

	 Comment layout, for G gps points and S sensor points:
	   [ (G-1) x (4 lat + 4 lon) ][ (S-1) x (2 alt + 1 wind) ] ... [ latest wind ]
*/

package aprsparse

import (
	"fmt"
	"strings"

	"github.com/b3nn0/balloonwind/base91"
)

type MalformedCommentError struct {
	Have   int
	Want   int
	Layout Layout
}

func (e *MalformedCommentError) Error() string {
	return fmt.Sprintf("comment too short for %s layout: have %d chars, want at least %d", e.Layout, e.Have, e.Want)
}

// Unpack decodes one transmission. lat/lon/alt are the transmission's own
// (uncompressed) position and become the last element of each sequence.
func Unpack(comment string, lat, lon, alt float64, layout Layout) (PacketRecord, error) {
	if err := layout.Validate(); err != nil {
		return PacketRecord{}, err
	}
	c := commentRunes(comment)
	if len(c) < layout.CommentLen() {
		return PacketRecord{}, &MalformedCommentError{Have: len(c), Want: layout.CommentLen(), Layout: layout}
	}

	latest, err := base91.DecodeWindSpeed(c[len(c)-1:])
	if err != nil {
		return PacketRecord{}, fmt.Errorf("latest wind speed: %w", err)
	}

	rec := PacketRecord{
		Latitudes:  make([]float64, 0, layout.GPSPoints),
		Longitudes: make([]float64, 0, layout.GPSPoints),
		Altitudes:  make([]float64, 0, layout.SensPoints),
		WindSpeeds: make([]float64, 0, layout.SensPoints),
	}

	gps := c[:layout.gpsBlockLen()]
	for i := 0; i < layout.GPSPoints-1; i++ {
		g := gps[gpsGroupChars*i : gpsGroupChars*(i+1)]
		la, err := base91.DecodeLatitude(g[:4])
		if err != nil {
			return PacketRecord{}, fmt.Errorf("gps point %d: %w", i, err)
		}
		lo, err := base91.DecodeLongitude(g[4:])
		if err != nil {
			return PacketRecord{}, fmt.Errorf("gps point %d: %w", i, err)
		}
		rec.Latitudes = append(rec.Latitudes, la)
		rec.Longitudes = append(rec.Longitudes, lo)
	}

	// Sensor block runs from the end of the gps block up to the final character.
	sens := c[layout.gpsBlockLen() : len(c)-1]
	for i := 0; i < layout.SensPoints-1; i++ {
		s := sens[sensGroupChars*i : sensGroupChars*(i+1)]
		a, err := base91.DecodeAltitude(s[:2])
		if err != nil {
			return PacketRecord{}, fmt.Errorf("sensor point %d: %w", i, err)
		}
		w, err := base91.DecodeWindSpeed(s[2:])
		if err != nil {
			return PacketRecord{}, fmt.Errorf("sensor point %d: %w", i, err)
		}
		rec.Altitudes = append(rec.Altitudes, a)
		rec.WindSpeeds = append(rec.WindSpeeds, w)
	}

	rec.Latitudes = append(rec.Latitudes, lat)
	rec.Longitudes = append(rec.Longitudes, lon)
	rec.Altitudes = append(rec.Altitudes, alt)
	rec.WindSpeeds = append(rec.WindSpeeds, latest)
	return rec, nil
}

// Pack builds the comment that Unpack would turn back into rec (within the
// codec's resolution). The last gps fix and last altitude are not part of the
// comment; they travel in the packet's position fields.
func Pack(rec PacketRecord) (string, error) {
	if err := rec.Check(); err != nil {
		return "", err
	}
	if len(rec.Latitudes) < 1 || len(rec.Altitudes) < 1 {
		return "", fmt.Errorf("pack: empty record")
	}
	var b strings.Builder
	for i := 0; i < len(rec.Latitudes)-1; i++ {
		b.WriteString(string(base91.EncodeLatitude(rec.Latitudes[i])))
		b.WriteString(string(base91.EncodeLongitude(rec.Longitudes[i])))
	}
	for i := 0; i < len(rec.Altitudes)-1; i++ {
		b.WriteString(string(base91.EncodeAltitude(rec.Altitudes[i])))
		b.WriteString(string(base91.EncodeWindSpeed(rec.WindSpeeds[i])))
	}
	b.WriteString(string(base91.EncodeWindSpeed(rec.WindSpeeds[len(rec.WindSpeeds)-1])))
	return b.String(), nil
}
