/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	base91.go: Base-91 token codec for the compressed balloon telemetry comment.
	 Same digit scheme and lat/long scaling as the APRS compressed position format.
*/

package base91

import (
	"fmt"
	"math"
)

const (
	// Radix of one token character.
	Radix = 91
	// Offset of digit zero ('!').
	Offset = 33

	LatitudeScale  = 380926.0
	LongitudeScale = 190463.0

	// Altitude step: 1.002^n feet.
	AltitudeBase = 1.002
	// Wind speed step: 1.08^n - 1 knots.
	WindSpeedBase = 1.08

	// Highest altitude digit still considered a sane value. Anything above comes from a radio glitch.
	MaxAltitudeDigit = 124

	// CorruptedAltitude is returned in place of an altitude when the token was glitched.
	// It is data, not an error. Treat it as "no altitude", never as a real value.
	CorruptedAltitude = 0.12345

	feetPerMeter   = 3.2808399
	msPerKnot      = 0.5144439999984337
	LatitudeChars  = 4
	LongitudeChars = 4
	AltitudeChars  = 2
	WindChars      = 1
)

// DecodeError reports a token that can not be decoded at all:
// wrong length, control characters, or a position outside the valid range.
type DecodeError struct {
	Field  string
	Token  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("base91: bad %s token %q: %s", e.Field, e.Token, e.Reason)
}

func FeetToMeters(ft float64) float64 {
	return ft / feetPerMeter
}

func MetersToFeet(m float64) float64 {
	return m * feetPerMeter
}

func KnotsToMs(kn float64) float64 {
	return kn * msPerKnot
}

func MsToKnots(ms float64) float64 {
	return ms / msPerKnot
}

// IsCorruptedAltitude reports whether v is the corrupted-altitude marker.
func IsCorruptedAltitude(v float64) bool {
	return v == CorruptedAltitude
}

// Digit returns the base-91 value of one character.
// Values above 90 are possible for glitched characters and are returned as is.
func Digit(r rune) (int, bool) {
	switch {
	case r < '!':
		return 0, false
	case r == 0x7f:
		return 0, false
	}
	return int(r) - Offset, true
}

func digits(field string, tok []rune, want int) ([]int, error) {
	if len(tok) != want {
		return nil, &DecodeError{Field: field, Token: string(tok), Reason: fmt.Sprintf("want %d chars, have %d", want, len(tok))}
	}
	d := make([]int, len(tok))
	for i, r := range tok {
		v, ok := Digit(r)
		if !ok {
			kind := "control character"
			if r == ' ' {
				kind = "invalid character"
			}
			return nil, &DecodeError{Field: field, Token: string(tok), Reason: fmt.Sprintf("%s 0x%02x at %d", kind, r, i)}
		}
		d[i] = v
	}
	return d, nil
}

func value(d []int) float64 {
	v := 0.0
	for _, x := range d {
		v = v*Radix + float64(x)
	}
	return v
}

// DecodeLatitude decodes a 4 character latitude token into signed decimal degrees.
func DecodeLatitude(tok []rune) (float64, error) {
	d, err := digits("latitude", tok, LatitudeChars)
	if err != nil {
		return 0, err
	}
	lat := 90.0 - value(d)/LatitudeScale
	if lat < -90.0 || lat > 90.0 {
		return 0, &DecodeError{Field: "latitude", Token: string(tok), Reason: fmt.Sprintf("%.6f out of range", lat)}
	}
	return lat, nil
}

// DecodeLongitude decodes a 4 character longitude token into signed decimal degrees.
func DecodeLongitude(tok []rune) (float64, error) {
	d, err := digits("longitude", tok, LongitudeChars)
	if err != nil {
		return 0, err
	}
	lon := -180.0 + value(d)/LongitudeScale
	if lon < -180.0 || lon > 180.0 {
		return 0, &DecodeError{Field: "longitude", Token: string(tok), Reason: fmt.Sprintf("%.6f out of range", lon)}
	}
	return lon, nil
}

// DecodeAltitude decodes a 2 character altitude token into meters, 0.4% resolution.
// Returns CorruptedAltitude (and no error) if a digit is out of the sane range.
func DecodeAltitude(tok []rune) (float64, error) {
	d, err := digits("altitude", tok, AltitudeChars)
	if err != nil {
		return 0, err
	}
	if d[0] > MaxAltitudeDigit || d[1] > MaxAltitudeDigit {
		return CorruptedAltitude, nil
	}
	return FeetToMeters(math.Pow(AltitudeBase, float64(d[0])*Radix+float64(d[1]))), nil
}

// DecodeWindSpeed decodes a single character wind speed token into m/s.
func DecodeWindSpeed(tok []rune) (float64, error) {
	d, err := digits("wind speed", tok, WindChars)
	if err != nil {
		return 0, err
	}
	return KnotsToMs(math.Pow(WindSpeedBase, float64(d[0])) - 1.0), nil
}

func encode(v int, n int) []rune {
	out := make([]rune, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = rune(v%Radix + Offset)
		v /= Radix
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Largest value representable by n digits.
func maxValue(n int) int {
	return int(math.Pow(Radix, float64(n))) - 1
}

// EncodeLatitude is the inverse of DecodeLatitude, rounded to the nearest step.
func EncodeLatitude(lat float64) []rune {
	v := int(math.Round((90.0 - lat) * LatitudeScale))
	return encode(clampInt(v, 0, maxValue(LatitudeChars)), LatitudeChars)
}

// EncodeLongitude is the inverse of DecodeLongitude, rounded to the nearest step.
func EncodeLongitude(lon float64) []rune {
	v := int(math.Round((180.0 + lon) * LongitudeScale))
	return encode(clampInt(v, 0, maxValue(LongitudeChars)), LongitudeChars)
}

// EncodeAltitude encodes an altitude in meters. Altitudes below one foot encode as zero.
func EncodeAltitude(m float64) []rune {
	ft := MetersToFeet(m)
	v := 0
	if ft > 1 {
		v = int(math.Round(math.Log(ft) / math.Log(AltitudeBase)))
	}
	return encode(clampInt(v, 0, maxValue(AltitudeChars)), AltitudeChars)
}

// EncodeWindSpeed encodes a wind speed in m/s.
func EncodeWindSpeed(ms float64) []rune {
	kn := MsToKnots(ms)
	v := 0
	if kn > 0 {
		v = int(math.Round(math.Log(kn+1.0) / math.Log(WindSpeedBase)))
	}
	return encode(clampInt(v, 0, Radix-1), WindChars)
}
