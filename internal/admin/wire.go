package admin

import (
	"encoding/json"
	"strconv"

	"github.com/standardbeagle/geocoder/internal/normalize"
)

// pipAdmin is one entry of the PIP service's /query/pip response.
type pipAdmin struct {
	Source string `json:"source"`
	ID     string `json:"id"`
	Class  string `json:"class"`
	Type   string `json:"type"`
}

// placeName is one entry of the /place/wof/<id>/name response.
type placeName struct {
	Lang string `json:"lang"`
	Tag  string `json:"tag"`
	Abbr bool   `json:"abbr"`
	Name string `json:"name"`
}

// droppedKinds are the WhosOnFirst placetypes the resolver discards
// before an admin ID is ever persisted, matching the original PIP
// resolver's drop list.
var droppedKinds = map[string]bool{
	"planet":     true,
	"marketarea": true,
	"county":     true,
	"timezone":   true,
}

// preferredLanguages is the exact ISO-639-3 allow-list the original
// resolver filters admin-area names by.
var preferredLanguages = map[string]bool{
	"ara": true, // Arabic.
	"dan": true, // Danish.
	"deu": true, // German.
	"fra": true, // French.
	"fin": true, // Finnish.
	"hun": true, // Hungarian.
	"gre": true, // Greek.
	"ita": true, // Italian.
	"nld": true, // Dutch.
	"por": true, // Portuguese.
	"rus": true, // Russian.
	"ron": true, // Romanian.
	"spa": true, // Spanish.
	"eng": true, // English.
	"swe": true, // Swedish.
	"tam": true, // Tamil.
	"tur": true, // Turkish.
	"zho": true, // Chinese.
}

// resolvedAdmin is a surviving admin ID paired with the placetype it
// was discovered under, before either is ever written to the cache.
type resolvedAdmin struct {
	ID   uint64
	Kind string
}

// parsePIPAdmins parses a /query/pip JSON response, dropping every
// entry whose type is in droppedKinds (and any entry whose id does not
// parse as a decimal uint64) before an ID ever reaches the cache.
func parsePIPAdmins(body []byte) ([]resolvedAdmin, error) {
	var raw []pipAdmin
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	out := make([]resolvedAdmin, 0, len(raw))
	for _, a := range raw {
		if droppedKinds[a.Type] {
			continue
		}
		id, err := strconv.ParseUint(a.ID, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, resolvedAdmin{ID: id, Kind: a.Type})
	}
	return out, nil
}

// parsePlaceNames parses a /place/wof/<id>/name JSON response, keeping
// only preferred/default-tagged names in the accepted language set,
// normalizing them with normalize.Sanitize (diacritics stripped,
// lowercased, whitespace collapsed) and deduplicating them. Names in
// non-Latin scripts are kept in their script, not transliterated.
func parsePlaceNames(body []byte) (names, langs []string, err error) {
	var raw []placeName
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool, len(raw))
	for _, n := range raw {
		if n.Tag != "preferred" && n.Tag != "default" {
			continue
		}
		if !preferredLanguages[n.Lang] {
			continue
		}
		name := normalize.Sanitize(n.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		langs = append(langs, n.Lang)
	}
	return names, langs, nil
}
