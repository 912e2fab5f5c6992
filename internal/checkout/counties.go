package checkout

import "strings"

// The 41 Romanian counties deliveries are accepted in, canonical spelling.
var romanianCounties = []string{
	"Alba", "Arad", "Argeș", "Bacău", "Bihor", "Bistrița-Năsăud", "Botoșani",
	"Brașov", "Brăila", "Buzău", "Caraș-Severin", "Călărași", "Cluj",
	"Constanța", "Covasna", "Dâmbovița", "Dolj", "Galați", "Giurgiu", "Gorj",
	"Harghita", "Hunedoara", "Ialomița", "Iași", "Ilfov", "Maramureș",
	"Mehedinți", "Mureș", "Neamț", "Olt", "Prahova", "Satu Mare", "Sălaj",
	"Sibiu", "Suceava", "Teleorman", "Timiș", "Tulcea", "Vaslui", "Vâlcea",
	"Vrancea",
}

var countyByFold = func() map[string]string {
	m := make(map[string]string, len(romanianCounties))
	for _, county := range romanianCounties {
		m[foldCounty(county)] = county
	}
	return m
}()

// CanonicalCounty matches a user-supplied county name against the county
// set, ignoring case and diacritics, and returns the canonical spelling.
func CanonicalCounty(raw string) (string, bool) {
	county, ok := countyByFold[foldCounty(strings.TrimSpace(raw))]
	return county, ok
}

var countyDiacritics = strings.NewReplacer(
	"ă", "a", "â", "a", "î", "i", "ș", "s", "ş", "s", "ț", "t", "ţ", "t",
)

func foldCounty(s string) string {
	return countyDiacritics.Replace(strings.ToLower(s))
}
