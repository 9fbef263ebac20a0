// Package canon holds the reference lists of well-regarded classical
// performers and labels used by quality ranking.
package canon

import "strings"

// Conductors, soloists, ensembles, and orchestras whose recordings carry
// extra weight when ranking catalog candidates.
var conductors = []string{
	"Abbado", "Bernstein", "Böhm", "Boulez", "Furtwängler",
	"Giulini", "Harnoncourt", "Jochum", "Karajan", "Klemperer",
	"Kubelik", "Maazel", "Mehta", "Muti", "Solti", "Szell",
	"Gardiner", "Herreweghe", "Hogwood", "Leonhardt", "Minkowski",
	"Norrington", "Pinnock", "Savall",
	"Barenboim", "Blomstedt", "Chailly", "Currentzis",
	"Dudamel", "Gergiev", "Haitink", "Jansons", "Rattle",
	"Salonen", "Thielemann",
	"Koopman", "Parrott", "Rifkin",
}

var pianists = []string{
	"Arrau", "Ashkenazy", "Backhaus", "Brendel", "Fischer",
	"Gilels", "Gould", "Horowitz", "Kempff", "Michelangeli",
	"Richter", "Rubinstein", "Serkin", "Schnabel",
	"Aimard", "Andsnes", "Argerich", "Pollini",
	"Perahia", "Schiff", "Uchida", "Zimerman",
	"Bezuidenhout", "Brautigam", "Hewitt", "Tan",
}

var stringPlayers = []string{
	"Bell", "Grumiaux", "Hahn", "Heifetz", "Menuhin",
	"Mutter", "Oistrakh", "Perlman", "Stern", "Vengerov",
	"Casals", "Du Pré", "Fournier", "Ma", "Rostropovich",
	"Isserlis", "Maisky",
	"Bashmet", "Zimmermann",
}

var ensembles = []string{
	"Alban Berg Quartet", "Amadeus Quartet", "Artemis Quartet",
	"Borodin Quartet", "Emerson String Quartet", "Guarneri Quartet",
	"Hagen Quartet", "Juilliard String Quartet", "Takács Quartet",
	"Academy of Ancient Music", "Academy of St Martin", "Amsterdam Baroque",
	"Collegium Vocale", "English Baroque Soloists", "Europa Galante",
	"Freiburger Barockorchester", "Il Giardino Armonico",
	"Les Arts Florissants", "Musica Antiqua Köln",
	"Orchestra of the Age of Enlightenment", "Taverner Consort",
	"Hilliard Ensemble", "King's Singers", "Monteverdi Choir",
	"Sixteen", "Tallis Scholars",
}

var orchestras = []string{
	"Berliner Philharmoniker", "Berlin Philharmonic",
	"Wiener Philharmoniker", "Vienna Philharmonic", "Wiener",
	"London Symphony", "Philharmonia",
	"Chicago Symphony", "Boston Symphony",
	"Cleveland Orchestra", "New York Philharmonic",
	"Concertgebouw", "Gewandhaus",
	"Staatskapelle Dresden", "Bavarian Radio",
	"Chamber Orchestra of Europe", "Mahler Chamber Orchestra",
}

var labels = []string{
	"Deutsche Grammophon", "DG", "DGG",
	"Decca", "EMI", "Philips",
	"RCA", "Columbia", "CBS",
	"Archiv", "Harmonia Mundi", "DHM",
	"Erato", "Virgin Classics",
	"ECM", "Hyperion", "BIS",
	"Chandos", "Naxos",
	"Sony Classical", "Warner Classics",
	"Testament", "Pristine",
}

var allPerformers = buildLowered(conductors, pianists, stringPlayers, ensembles, orchestras)

var allLabels = buildLowered(labels)

func buildLowered(groups ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, group := range groups {
		for _, name := range group {
			lowered := strings.ToLower(name)
			if _, ok := seen[lowered]; ok {
				continue
			}
			seen[lowered] = struct{}{}
			out = append(out, lowered)
		}
	}
	return out
}

// IsPerformer reports whether name refers to a canonical performer.
// Matching is case-insensitive substring containment in either direction,
// so "Karajan" matches "Herbert von Karajan".
func IsPerformer(name string) bool {
	return matches(name, allPerformers)
}

// IsLabel reports whether label refers to a canonical record label.
func IsLabel(label string) bool {
	return matches(label, allLabels)
}

// PerformerScore returns 1.0 for canonical performers, 0.0 otherwise.
func PerformerScore(name string) float64 {
	if IsPerformer(name) {
		return 1.0
	}
	return 0.0
}

// LabelScore returns 1.0 for canonical labels, 0.0 otherwise.
func LabelScore(label string) float64 {
	if IsLabel(label) {
		return 1.0
	}
	return 0.0
}

func matches(name string, canon []string) bool {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return false
	}
	for _, candidate := range canon {
		if strings.Contains(lowered, candidate) || strings.Contains(candidate, lowered) {
			return true
		}
	}
	return false
}
