/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	kml.go: Google Earth rendering of the flight: the track as one absolute-altitude
	 line, and a placemark every PlacemarkEvery points.
*/

package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/gansidui/geohash"
	"github.com/twpayne/go-kml"

	"github.com/b3nn0/balloonwind/windcalc"
)

const PlacemarkEvery = 10

func defaultKMLDocument(name string) (document *kml.CompoundElement) {
	document = kml.Document(kml.Name(name), kml.Open(true))
	var track_color = kml.Color(color.RGBA{uint8(255), uint8(0), uint8(0), uint8(200)})
	track_style := kml.SharedStyle("track", kml.LineStyle(track_color, kml.Width(4)), kml.PolyStyle(track_color))
	document.Add(track_style)
	return document
}

func tracePlacemark(p windcalc.TracePoint) *kml.CompoundElement {
	hash, _ := geohash.Encode(p.Latitude, p.Longitude, TraceGeohashPrecision)
	return kml.Placemark(
		kml.Name(fmt.Sprintf("#%d", p.Index)),
		kml.Description(fmt.Sprintf("Altitude: %.0f m<br>Geohash: %s", p.AltitudeM, hash)),
		kml.Point(
			kml.AltitudeMode("absolute"),
			kml.Coordinates(kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude, Alt: p.AltitudeM}),
		),
	)
}

// TraceKML builds the document for a trace.
func TraceKML(name string, trace []windcalc.TracePoint) (k *kml.CompoundElement) {
	d := defaultKMLDocument(name)

	coords := make([]kml.Coordinate, len(trace))
	for i, p := range trace {
		coords[i] = kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude, Alt: p.AltitudeM}
	}
	d.Add(kml.Placemark(
		kml.Name("Track"),
		kml.StyleURL("#track"),
		kml.LineString(
			kml.AltitudeMode("absolute"),
			kml.Extrude(false),
			kml.Tessellate(false),
			kml.Coordinates(coords...),
		),
	))

	points := kml.Folder(kml.Name("Points"))
	for i, p := range trace {
		if i%PlacemarkEvery == 0 || i == len(trace)-1 {
			points.Add(tracePlacemark(p))
		}
	}
	d.Add(points)
	k = kml.GxKML(d)
	return k
}

func WriteTraceKML(w io.Writer, name string, trace []windcalc.TracePoint) error {
	return TraceKML(name, trace).WriteIndent(w, "", "  ")
}
