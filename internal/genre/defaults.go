package genre

// DefaultGenres is the genre list cmd/seed creates on a fresh database.
// Moderators can add more through the JSON API.
var DefaultGenres = []string{
	"Роман",
	"Классика",
	"Фантастика",
	"Фэнтези",
	"Детектив",
	"Поэзия",
	"Научная литература",
	"Детская литература",
	"История",
	"Биография",
	"Психология",
	"Бизнес",
}
