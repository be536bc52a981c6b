// Package main seeds a BookBazaar database with the default genres, a
// moderator account and, optionally, a few approved demo listings.
//
// Usage:
//
//	DATA_PATH=~/bookbazaar SEED_ADMIN_PASSWORD=secret go run ./cmd/seed
//	DATA_PATH=~/bookbazaar go run ./cmd/seed --admin-password=secret --demo-books
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bookbazaar/bookbazaar-server/internal/auth"
	"github.com/bookbazaar/bookbazaar-server/internal/config"
	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	"github.com/bookbazaar/bookbazaar-server/internal/logger"
	"github.com/bookbazaar/bookbazaar-server/internal/media/images"
	"github.com/bookbazaar/bookbazaar-server/internal/search"
	"github.com/bookbazaar/bookbazaar-server/internal/service"
	"github.com/bookbazaar/bookbazaar-server/internal/store/sqlite"
	"github.com/bookbazaar/bookbazaar-server/internal/validation"
)

var (
	dataPath  = flag.String("data-path", "", "Base data path (default: $DATA_PATH or ~/bookbazaar)")
	adminName = flag.String("admin", "admin", "Moderator username")
	adminPass = flag.String("admin-password", "", "Moderator password (default: $SEED_ADMIN_PASSWORD)")
	adminTel  = flag.String("admin-phone", "+70000000000", "Moderator phone number")
	demoBooks = flag.Bool("demo-books", false, "Also list a few approved demo books")
)

var demo = []service.BookForm{
	{
		Name:            "Мастер и Маргарита",
		Author:          "Михаил Булгаков",
		Description:     "Роман о визите дьявола в Москву 1930-х годов.",
		Publication:     "АСТ",
		PublicationYear: "1967",
		Quantity:        "3",
		Price:           "650.00",
	},
	{
		Name:            "Пикник на обочине",
		Author:          "Аркадий и Борис Стругацкие",
		Description:     "Сталкеры, Зона и **Золотой шар**.",
		Publication:     "Молодая гвардия",
		PublicationYear: "1972",
		Quantity:        "1",
		Price:           "420.50",
	},
	{
		Name:            "Двенадцать стульев",
		Author:          "Илья Ильф, Евгений Петров",
		Description:     "Остап Бендер ищет бриллианты мадам Петуховой.",
		Publication:     "Эксмо",
		PublicationYear: "1928",
		Quantity:        "2",
		Price:           "380.00",
	},
}

func main() {
	flag.Parse()

	root := *dataPath
	if root == "" {
		root = os.Getenv("DATA_PATH")
	}
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to find home directory: %v", err)
		}
		root = filepath.Join(home, "bookbazaar")
	}
	data := config.DataConfig{BasePath: root}

	password := *adminPass
	if password == "" {
		password = os.Getenv("SEED_ADMIN_PASSWORD")
	}
	if password == "" {
		log.Fatal("A moderator password is required: pass --admin-password or set SEED_ADMIN_PASSWORD")
	}

	if err := os.MkdirAll(root, 0o750); err != nil {
		log.Fatalf("Failed to create data path: %v", err)
	}

	fmt.Printf("Opening database at: %s\n", data.DatabasePath())

	quiet := logger.Discard().Logger
	st, err := sqlite.Open(data.DatabasePath(), quiet)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	index, err := search.NewSearchIndex(search.Options{DataPath: root, Logger: quiet})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	storage, err := images.NewStorage(data.MediaPath())
	if err != nil {
		log.Fatalf("Failed to open media storage: %v", err)
	}
	processor := images.NewProcessor(storage, quiet)

	key, err := auth.LoadOrGenerateKey(root)
	if err != nil {
		log.Fatalf("Failed to load session key: %v", err)
	}
	tokens, err := auth.NewSessionTokens(key)
	if err != nil {
		log.Fatalf("Failed to create token sealer: %v", err)
	}

	v := validation.New()
	sessions := service.NewSessionService(st, tokens, 0, quiet)
	authService := service.NewAuthService(st, sessions, processor, v, quiet)
	genres := service.NewGenreService(st, v, quiet)
	books := service.NewBookService(st, processor, index, v, quiet)

	ctx := context.Background()

	added, err := genres.EnsureDefaults(ctx)
	if err != nil {
		log.Fatalf("Failed to create genres: %v", err)
	}
	fmt.Printf("Genres: %d added\n", added)

	admin, err := authService.EnsureSuperuser(ctx, *adminName, password, *adminTel, "")
	if err != nil {
		log.Fatalf("Failed to create moderator: %v", err)
	}
	fmt.Printf("Moderator ready: %s (%s)\n", admin.Username, admin.ID)

	if *demoBooks {
		seedBooks(ctx, books, genres, &domain.Viewer{User: admin})
	}

	fmt.Println("\nSeeding complete!")
}

// seedBooks lists the demo books as the moderator and approves them.
func seedBooks(ctx context.Context, books *service.BookService, genres *service.GenreService, moderator *domain.Viewer) {
	novel, err := genres.Lookup(ctx, "Роман")
	var genreIDs []string
	if err == nil {
		genreIDs = []string{novel.ID}
	}

	verified := true
	for _, form := range demo {
		form.GenreIDs = genreIDs
		book, err := books.Create(ctx, moderator, form)
		if err != nil {
			log.Printf("Failed to create %q: %v", form.Name, err)
			continue
		}
		if _, err := books.SetVerified(ctx, moderator, book.ID, &verified); err != nil {
			log.Printf("Failed to approve %q: %v", form.Name, err)
			continue
		}
		fmt.Printf("  Listed %s\n", book.Name)
	}
}
