package genre

// CanonicalAliases maps common spellings, including English names, to the
// slug of a default genre.
var CanonicalAliases = map[string]string{
	"novel":   "роман",
	"fiction": "роман",

	"classics":  "классика",
	"classic":   "классика",
	"classical": "классика",

	"sci-fi":             "фантастика",
	"scifi":              "фантастика",
	"sf":                 "фантастика",
	"science-fiction":    "фантастика",
	"научная-фантастика": "фантастика",

	"fantasy": "фэнтези",
	"фентези": "фэнтези",

	"mystery":   "детектив",
	"detective": "детектив",
	"crime":     "детектив",
	"детективы": "детектив",

	"poetry": "поэзия",
	"poems":  "поэзия",
	"стихи":  "поэзия",

	"non-fiction": "научная-литература",
	"nonfiction":  "научная-литература",
	"science":     "научная-литература",
	"нон-фикшн":   "научная-литература",

	"children":      "детская-литература",
	"kids":          "детская-литература",
	"детские-книги": "детская-литература",

	"history":    "история",
	"biography":  "биография",
	"memoir":     "биография",
	"psychology": "психология",
	"business":   "бизнес",
	"finance":    "бизнес",
}

// Resolve slugifies raw and maps known aliases to their canonical slug.
// Unknown input comes back slugified, to be checked against the store.
func Resolve(raw string) string {
	slug := Slugify(raw)
	if canonical, ok := CanonicalAliases[slug]; ok {
		return canonical
	}
	return slug
}
