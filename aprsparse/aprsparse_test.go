package aprsparse

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/b3nn0/balloonwind/base91"
)

func testRecord() PacketRecord {
	return PacketRecord{
		Latitudes:  []float64{43.6500, 43.6510, 43.6520, 43.6531},
		Longitudes: []float64{-79.3800, -79.3790, -79.3780, -79.3771},
		Altitudes:  []float64{1000, 1075, 1150, 1225.5},
		WindSpeeds: []float64{2.0, 3.5, 5.0, 6.0},
	}
}

func TestUnpackRoundTrip(t *testing.T) {
	want := testRecord()
	comment, err := Pack(want)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(comment) != DefaultLayout.CommentLen() {
		t.Fatalf("comment len=%d want %d", len(comment), DefaultLayout.CommentLen())
	}

	got, err := Unpack(comment, 43.6531, -79.3771, 1225.5, DefaultLayout)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if got.Layout() != DefaultLayout {
		t.Fatalf("layout=%v", got.Layout())
	}
	for i := range want.Latitudes {
		if math.Abs(got.Latitudes[i]-want.Latitudes[i]) > 1/base91.LatitudeScale {
			t.Fatalf("lat[%d]=%v want %v", i, got.Latitudes[i], want.Latitudes[i])
		}
		if math.Abs(got.Longitudes[i]-want.Longitudes[i]) > 1/base91.LongitudeScale {
			t.Fatalf("lon[%d]=%v want %v", i, got.Longitudes[i], want.Longitudes[i])
		}
	}
	for i := range want.Altitudes {
		if math.Abs(got.Altitudes[i]-want.Altitudes[i])/want.Altitudes[i] > 0.002 {
			t.Fatalf("alt[%d]=%v want %v", i, got.Altitudes[i], want.Altitudes[i])
		}
		if math.Abs(got.WindSpeeds[i]-want.WindSpeeds[i]) > 0.5 {
			t.Fatalf("ws[%d]=%v want %v", i, got.WindSpeeds[i], want.WindSpeeds[i])
		}
	}
}

func TestUnpackLastElementIsUncompressed(t *testing.T) {
	comment, _ := Pack(testRecord())
	got, err := Unpack(comment, 12.3456789, 98.7654321, 4321.123, DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	last := len(got.Latitudes) - 1
	if got.Latitudes[last] != 12.3456789 || got.Longitudes[last] != 98.7654321 || got.Altitudes[len(got.Altitudes)-1] != 4321.123 {
		t.Fatalf("last element not taken from the packet: %+v", got)
	}
}

func TestUnpackUnevenLayout(t *testing.T) {
	rec := PacketRecord{
		Latitudes:  []float64{10, 10.001},
		Longitudes: []float64{20, 20.001},
		Altitudes:  []float64{500, 510, 520, 530, 540},
		WindSpeeds: []float64{1, 2, 3, 4, 5},
	}
	layout := Layout{GPSPoints: 2, SensPoints: 5}
	comment, err := Pack(rec)
	if err != nil {
		t.Fatal(err)
	}
	if len(comment) != 8+12+1 {
		t.Fatalf("len=%d", len(comment))
	}
	got, err := Unpack(comment, 10.001, 20.001, 540, layout)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Latitudes) != 2 || len(got.Altitudes) != 5 {
		t.Fatalf("got %d gps, %d sens", len(got.Latitudes), len(got.Altitudes))
	}
}

func TestUnpackIgnoresPadding(t *testing.T) {
	comment, _ := Pack(testRecord())
	padded := comment[:len(comment)-1] + "xyz" + comment[len(comment)-1:]
	a, err := Unpack(comment, 1, 2, 3, DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Unpack(padded, 1, 2, 3, DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Altitudes {
		if a.Altitudes[i] != b.Altitudes[i] || a.WindSpeeds[i] != b.WindSpeeds[i] {
			t.Fatalf("padding changed sample %d", i)
		}
	}
}

func TestUnpackMalformed(t *testing.T) {
	comment, _ := Pack(testRecord())
	_, err := Unpack(comment[:len(comment)-1], 0, 0, 0, DefaultLayout)
	var me *MalformedCommentError
	if !errors.As(err, &me) {
		t.Fatalf("err=%v want *MalformedCommentError", err)
	}
	if me.Have != 33 || me.Want != 34 {
		t.Fatalf("have=%d want=%d", me.Have, me.Want)
	}

	_, err = Unpack("", 0, 0, 0, DefaultLayout)
	if !errors.As(err, &me) {
		t.Fatalf("empty comment: err=%v", err)
	}
}

func TestUnpackDecodeError(t *testing.T) {
	comment := []rune(mustPack(t, testRecord()))
	comment[2] = '\x01'
	_, err := Unpack(string(comment), 0, 0, 0, DefaultLayout)
	var de *base91.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err=%v want *base91.DecodeError", err)
	}
	var me *MalformedCommentError
	if errors.As(err, &me) {
		t.Fatalf("decode error reported as malformed comment")
	}
}

func TestUnpackCorruptedAltitudeIsData(t *testing.T) {
	comment := []rune(mustPack(t, testRecord()))
	// First altitude token starts right after the gps block.
	comment[DefaultLayout.gpsBlockLen()] = 0xfe
	got, err := Unpack(string(comment), 0, 0, 100, DefaultLayout)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !base91.IsCorruptedAltitude(got.Altitudes[0]) {
		t.Fatalf("alt[0]=%v want sentinel", got.Altitudes[0])
	}
}

func TestUnpackRawBytes(t *testing.T) {
	comment := mustPack(t, testRecord())
	// Not valid UTF-8: every byte is one character.
	raw := comment[:DefaultLayout.gpsBlockLen()] + "\xfe" + comment[DefaultLayout.gpsBlockLen()+1:]
	got, err := Unpack(raw, 0, 0, 100, DefaultLayout)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !base91.IsCorruptedAltitude(got.Altitudes[0]) {
		t.Fatalf("alt[0]=%v want sentinel", got.Altitudes[0])
	}
}

func TestLayoutValidate(t *testing.T) {
	for _, l := range []Layout{{0, 4}, {4, 0}, {-1, -1}} {
		if err := l.Validate(); err == nil {
			t.Fatalf("layout %v accepted", l)
		}
		if _, err := Unpack(strings.Repeat("!", 40), 0, 0, 0, l); err == nil {
			t.Fatalf("Unpack accepted layout %v", l)
		}
	}
	if got := (Layout{1, 1}).CommentLen(); got != 1 {
		t.Fatalf("CommentLen=%d", got)
	}
}

func mustPack(t *testing.T, rec PacketRecord) string {
	t.Helper()
	s, err := Pack(rec)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParsePacketUncompressed(t *testing.T) {
	p, err := ParsePacket("VE3XYZ-11>APRS,WIDE2-1,qAR,VE3ABC:/123456h4903.50N/07201.75WO090/015/A=012345hello\r\n")
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if p.Source != "VE3XYZ-11" || p.Dest != "APRS" || len(p.Path) != 3 {
		t.Fatalf("header: %+v", p)
	}
	if p.Timestamp != "123456h" {
		t.Fatalf("timestamp=%q", p.Timestamp)
	}
	if math.Abs(p.Latitude-49.058333) > 1e-5 || math.Abs(p.Longitude-(-72.029167)) > 1e-5 {
		t.Fatalf("pos=%v,%v", p.Latitude, p.Longitude)
	}
	if p.CourseDeg != 90 || p.SpeedKt != 15 {
		t.Fatalf("cs=%d/%d", p.CourseDeg, p.SpeedKt)
	}
	if !p.HasAltitude || math.Abs(p.AltitudeM-12345/3.2808399) > 1e-6 {
		t.Fatalf("alt=%v", p.AltitudeM)
	}
	if p.Comment != "hello" {
		t.Fatalf("comment=%q", p.Comment)
	}
}

func TestParsePacketCompressed(t *testing.T) {
	p, err := ParsePacket("N0CALL>APRS:!/5L!!<*e7OS]1telemetry")
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if !p.Compressed {
		t.Fatal("not flagged compressed")
	}
	if math.Abs(p.Latitude-49.5) > 1e-4 || math.Abs(p.Longitude-(-72.75)) > 1e-4 {
		t.Fatalf("pos=%v,%v", p.Latitude, p.Longitude)
	}
	if !p.HasAltitude || math.Abs(base91.MetersToFeet(p.AltitudeM)-10004) > 1 {
		t.Fatalf("alt=%v ft", base91.MetersToFeet(p.AltitudeM))
	}
	if p.Comment != "telemetry" {
		t.Fatalf("comment=%q", p.Comment)
	}
}

func TestParsePacketErrors(t *testing.T) {
	if _, err := ParsePacket("N0CALL>APRS:>status text"); !errors.Is(err, ErrNotPosition) {
		t.Fatalf("status: err=%v", err)
	}
	for _, line := range []string{
		"garbage",
		"N0CALL>APRS:",
		"N0CALL>APRS:/12345",
		"N0CALL>APRS:!4903.50X/07201.75W-",
		"N0CALL>APRS:!4903.50N/07201",
		"N0CALL>APRS:!/5L",
	} {
		_, err := ParsePacket(line)
		var pe *PacketError
		if !errors.As(err, &pe) {
			t.Fatalf("%q: err=%v want *PacketError", line, err)
		}
	}
}

func TestUnescapeComment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"plain"`, "plain"},
		{`a\\b`, `a\b`},
		{`\'q\"x`, `'q"x`},
		{`"ab\""`, `ab"`},
		{`x\xc8y`, "xÈy"},
		{`é`, "é"},
		{`keep\q`, `keep\q`},
		{`end\`, `end\`},
		{`"a b c"`, "a,b,c"},
		{`x \x21`, "x,!"},
	}
	for _, tc := range tests {
		got, err := UnescapeComment(tc.in)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %q want %q", tc.in, got, tc.want)
		}
	}
	if _, err := UnescapeComment(`\x4`); err == nil {
		t.Fatal("truncated escape accepted")
	}
}
