package meta

import (
	"fmt"
	"strconv"
	"strings"
)

// Hemisphere qualifies a coordinate: N/S for latitude, E/W for longitude.
type Hemisphere string

const (
	North Hemisphere = "N"
	South Hemisphere = "S"
	East  Hemisphere = "E"
	West  Hemisphere = "W"
)

// NoGPS is the summary shown when a photo carries no GPS data.
const NoGPS = "No GPS Data Available"

// GPSInfo is a normalized GPS position. Altitude-only records have HasPosition unset.
type GPSInfo struct {
	HasPosition bool

	// Latitude and Longitude are unsigned decimal degrees; the hemisphere carries the sign.
	Latitude  float64
	Longitude float64
	LatRef    Hemisphere
	LonRef    Hemisphere

	// Position is the combined "deg;min;sec;hem deg;min;sec;hem" text, when that was the source encoding.
	Position string

	Altitude string
}

// latitudeRef maps a raw latitude reference to a hemisphere. Only an exact "S" means south.
func latitudeRef(v Value) Hemisphere {
	if v.Kind == Text && v.Text == string(South) {
		return South
	}
	return North
}

// longitudeRef maps a raw longitude reference to a hemisphere. Only an exact "W" means west.
func longitudeRef(v Value) Hemisphere {
	if v.Kind == Text && v.Text == string(West) {
		return West
	}
	return East
}

// ResolveGPS extracts GPS data from a raw record, or returns nil if there is none.
//
// Encodings are tried in order: a combined GPSPosition string, rational
// GPSLatitude/GPSLongitude triples, and finally GPSAltitude on its own.
func ResolveGPS(r Record) *GPSInfo {
	alt, hasAlt := altitude(r.Get("GPSAltitude"))

	if g, ok := fromPosition(r.Get("GPSPosition")); ok {
		g.Altitude = alt
		return g
	}

	if g, ok := fromRationals(r); ok {
		g.Altitude = alt
		return g
	}

	// a present but unreadable position is not an altitude-only record
	if hasAlt && !r.Has("GPSLatitude") && !r.Has("GPSLongitude") {
		return &GPSInfo{LatRef: North, LonRef: East, Altitude: alt}
	}

	return nil
}

// fromPosition parses "34;0;0;N 118;0;0;W".
func fromPosition(v Value) (*GPSInfo, bool) {
	if v.Kind != Text {
		return nil, false
	}

	sides := strings.Fields(v.Text)
	if len(sides) != 2 {
		return nil, false
	}

	lat := strings.Split(sides[0], ";")
	lon := strings.Split(sides[1], ";")
	if len(lat) != 4 || len(lon) != 4 {
		return nil, false
	}

	g := &GPSInfo{
		HasPosition: true,
		Latitude:    dmsText(lat),
		Longitude:   dmsText(lon),
		LatRef:      latitudeRef(Value{Kind: Text, Text: lat[3]}),
		LonRef:      longitudeRef(Value{Kind: Text, Text: lon[3]}),
	}

	lat[3], lon[3] = string(g.LatRef), string(g.LonRef)
	g.Position = strings.Join(lat, ";") + " " + strings.Join(lon, ";")
	return g, true
}

// dmsText combines textual degree/minute/second parts. Non-numeric parts count as zero.
func dmsText(parts []string) float64 {
	var vals [3]float64
	for i := range vals {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err == nil {
			vals[i] = f
		}
	}
	return vals[0] + vals[1]/60 + vals[2]/3600
}

func fromRationals(r Record) (*GPSInfo, bool) {
	lat, ok := dms(r.Get("GPSLatitude"))
	if !ok {
		return nil, false
	}

	lon, ok := dms(r.Get("GPSLongitude"))
	if !ok {
		return nil, false
	}

	return &GPSInfo{
		HasPosition: true,
		Latitude:    lat,
		Longitude:   lon,
		LatRef:      latitudeRef(r.Get("GPSLatitudeRef")),
		LonRef:      longitudeRef(r.Get("GPSLongitudeRef")),
	}, true
}

// dms converts a (degrees, minutes, seconds) triple of rationals into decimal degrees.
func dms(v Value) (float64, bool) {
	if v.Kind != List || len(v.Items) != 3 {
		return 0, false
	}

	var vals [3]float64
	for i, item := range v.Items {
		f, ok := item.Float()
		if !ok {
			return 0, false
		}
		vals[i] = f
	}

	return vals[0] + vals[1]/60 + vals[2]/3600, true
}

// altitude returns the first token of a raw altitude such as "123.4 m Above Sea Level".
func altitude(v Value) (string, bool) {
	switch v.Kind {
	case Text:
		fs := strings.Fields(v.Text)
		if len(fs) == 0 {
			return "", false
		}
		return fs[0], true
	case Number:
		return formatNumber(v.Num), true
	case Rational:
		f, ok := v.Float()
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	case Missing, List, Unknown:
		return "", false
	}
	return "", false
}

// Summary renders GPS data for the caption.
func (g *GPSInfo) Summary() string {
	if g == nil {
		return NoGPS
	}

	if !g.HasPosition {
		return "Alt/" + g.Altitude
	}

	var s string
	if g.Position != "" {
		sides := strings.Fields(g.Position)
		s = formatDMS(sides[0], g.LatRef) + ", " + formatDMS(sides[1], g.LonRef)
	} else {
		s = fmt.Sprintf("%s° %s, %s° %s", formatDegrees(g.Latitude), g.LatRef, formatDegrees(g.Longitude), g.LonRef)
	}

	if g.Altitude != "" {
		s += ", Alt:" + g.Altitude
	}
	return s
}

// formatDMS turns "34;0;0;N" into 34°0'0"N. The hemisphere letter always comes from ref.
func formatDMS(side string, ref Hemisphere) string {
	p := strings.Split(side, ";")
	if len(p) != 4 {
		return side
	}
	return fmt.Sprintf("%s°%s'%s\"%s", p[0], p[1], p[2], ref)
}

// Record encodes g back into raw record form; ResolveGPS(g.Record()) reproduces g.
func (g *GPSInfo) Record() Record {
	r := Record{}
	if g == nil {
		return r
	}

	if g.Altitude != "" {
		r["GPSAltitude"] = g.Altitude
	}

	if !g.HasPosition {
		return r
	}

	if g.Position != "" {
		r["GPSPosition"] = g.Position
		return r
	}

	r["GPSLatitude"] = []any{[]any{g.Latitude, 1.0}, []any{0.0, 1.0}, []any{0.0, 1.0}}
	r["GPSLongitude"] = []any{[]any{g.Longitude, 1.0}, []any{0.0, 1.0}, []any{0.0, 1.0}}
	r["GPSLatitudeRef"] = string(g.LatRef)
	r["GPSLongitudeRef"] = string(g.LonRef)
	return r
}
