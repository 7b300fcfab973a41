package models

import "strings"

// DisasterType is the closed set of hazards content is filed under
type DisasterType int

const (
	DisasterOther DisasterType = iota
	DisasterEarthquake
	DisasterFlood
	DisasterHurricane
	DisasterWildfire
	DisasterTornado
	DisasterTsunami
	DisasterVolcano

	numDisasterTypes
)

// Display is the presentation metadata for a disaster type
type Display struct {
	Slug     string
	Label    string
	Icon     string
	Gradient string
}

// displays is indexed by DisasterType; adding a constant without an entry fails to compile
var displays = [numDisasterTypes]Display{
	DisasterOther:      {Slug: "other", Label: "Other", Icon: "alert-triangle", Gradient: "from-gray-500 to-gray-700"},
	DisasterEarthquake: {Slug: "earthquake", Label: "Earthquake", Icon: "activity", Gradient: "from-amber-500 to-orange-700"},
	DisasterFlood:      {Slug: "flood", Label: "Flood", Icon: "droplets", Gradient: "from-blue-400 to-blue-700"},
	DisasterHurricane:  {Slug: "hurricane", Label: "Hurricane", Icon: "wind", Gradient: "from-cyan-500 to-indigo-700"},
	DisasterWildfire:   {Slug: "wildfire", Label: "Wildfire", Icon: "flame", Gradient: "from-red-500 to-orange-600"},
	DisasterTornado:    {Slug: "tornado", Label: "Tornado", Icon: "tornado", Gradient: "from-slate-500 to-slate-800"},
	DisasterTsunami:    {Slug: "tsunami", Label: "Tsunami", Icon: "waves", Gradient: "from-teal-400 to-blue-800"},
	DisasterVolcano:    {Slug: "volcano", Label: "Volcano", Icon: "mountain", Gradient: "from-rose-600 to-stone-800"},
}

var disasterAliases = map[string]DisasterType{
	"fire":           DisasterWildfire,
	"forest fire":    DisasterWildfire,
	"bushfire":       DisasterWildfire,
	"flooding":       DisasterFlood,
	"flash flood":    DisasterFlood,
	"cyclone":        DisasterHurricane,
	"typhoon":        DisasterHurricane,
	"tropical storm": DisasterHurricane,
	"quake":          DisasterEarthquake,
	"volcanic":       DisasterVolcano,
	"eruption":       DisasterVolcano,
}

// AllDisasterTypes lists every type in display order
func AllDisasterTypes() []DisasterType {
	out := make([]DisasterType, 0, numDisasterTypes)
	for t := DisasterEarthquake; t < numDisasterTypes; t++ {
		out = append(out, t)
	}
	return append(out, DisasterOther)
}

// ParseDisasterType maps a backend string to a type. Unknown values become DisasterOther.
func ParseDisasterType(s string) DisasterType {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, d := range displays {
		if d.Slug == key {
			return DisasterType(t)
		}
	}
	if t, ok := disasterAliases[key]; ok {
		return t
	}
	return DisasterOther
}

// Display returns the presentation metadata for t
func (t DisasterType) Display() Display {
	if t < 0 || t >= numDisasterTypes {
		return displays[DisasterOther]
	}
	return displays[t]
}

// String returns the slug sent to the backend
func (t DisasterType) String() string {
	return t.Display().Slug
}
