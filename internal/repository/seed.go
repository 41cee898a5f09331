package repository

import (
	"time"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

func f64(v float64) *float64 { return &v }

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedMovies returns the development catalog loaded when STORAGE=memory.
func SeedMovies() []model.Movie {
	seed := []model.Movie{
		{
			ID:            "1",
			Title:         "Placeholder Movie Alpha",
			OriginalTitle: "Placeholder Movie Alpha Original",
			Poster:        PlaceholderPoster,
			Backdrop:      PlaceholderBackdrop,
			SidduScore:    8.0,
			ReleaseDate:   "2023-01-01",
			Status:        model.StatusReleased,
			Genres:        []model.Genre{"Action", "Sci-Fi"},
			Synopsis:      "Synopsis for Placeholder Movie Alpha.",
			Runtime:       120,
			Languages:     []string{"English"},
			Certification: "PG-13",
			Cast: []model.CastMember{
				{ID: "c1", Name: "Actor One", Character: "Character A", Image: "/placeholder.svg?height=80&width=80", Order: 1},
			},
			Crew: []model.CrewMember{
				{ID: "cr1", Name: "Director One", Role: "Director", Department: "Directing", Image: "/placeholder.svg?height=80&width=80"},
			},
			GalleryImages: []string{"/placeholder.svg?height=100&width=150"},
			TrailerURL:    "#",
			StreamingLinks: []model.StreamingLink{
				{ID: "s1", Provider: "Netflix", Region: "US", URL: "#", Type: "subscription", Quality: "HD", Verified: true},
			},
			ReleaseDates:        []model.ReleaseDateInfo{{ID: "rd1", Region: "US", Date: "2023-01-01", Type: "Theatrical"}},
			Awards:              []model.Award{{ID: "aw1", Name: "Placeholder Award", Year: 2023, Category: "Best Placeholder", Status: "Winner"}},
			Budget:              f64(1000000),
			BoxOffice:           f64(5000000),
			ProductionCompanies: []string{"Placeholder Productions"},
			CountriesOfOrigin:   []string{"USA"},
			Tagline:             "Placeholder tagline.",
			Keywords:            []string{"placeholder", "movie"},
			CreatedAt:           mustTime("2023-01-01T00:00:00Z"),
			UpdatedAt:           mustTime("2023-01-02T00:00:00Z"),
			ImportedFrom:        "Manual",
		},
		{
			ID:            "2",
			Title:         "Placeholder Movie Beta",
			OriginalTitle: "Placeholder Movie Beta Original",
			Poster:        PlaceholderPoster,
			Backdrop:      PlaceholderBackdrop,
			SidduScore:    7.5,
			ReleaseDate:   "2024-02-01",
			Status:        model.StatusUpcoming,
			Genres:        []model.Genre{"Drama"},
			Synopsis:      "Synopsis for Placeholder Movie Beta.",
			Runtime:       110,
			Languages:     []string{"English"},
			Certification: "R",
			TrailerURL:    "#",
			ReleaseDates:  []model.ReleaseDateInfo{{ID: "rd2", Region: "US", Date: "2024-02-01", Type: "Theatrical"}},
			Budget:        f64(0),
			BoxOffice:     f64(0),
			CreatedAt:     mustTime("2024-01-01T00:00:00Z"),
			UpdatedAt:     mustTime("2024-01-01T00:00:00Z"),
			ImportedFrom:  "TMDB",
		},
		{
			ID:            "3",
			Title:         "Monsoon Letters",
			OriginalTitle: "Monsoon Letters",
			Poster:        PlaceholderPoster,
			Backdrop:      PlaceholderBackdrop,
			SidduScore:    6.9,
			ReleaseDate:   "2022-07-15",
			Status:        model.StatusDraft,
			Genres:        []model.Genre{"Romance", "Drama"},
			Synopsis:      "Two strangers exchange letters through one rainy season.",
			Runtime:       132,
			Languages:     []string{"Hindi", "English"},
			Certification: "PG",
			CreatedAt:     mustTime("2024-03-10T09:30:00Z"),
			UpdatedAt:     mustTime("2024-03-10T09:30:00Z"),
			ImportedFrom:  "JSON",
		},
		{
			ID:            "4",
			Title:         "Iron Meridian",
			OriginalTitle: "Iron Meridian",
			Poster:        PlaceholderPoster,
			Backdrop:      PlaceholderBackdrop,
			SidduScore:    5.4,
			ReleaseDate:   "2019-11-08",
			Status:        model.StatusArchived,
			Genres:        []model.Genre{"Action", "Thriller"},
			Synopsis:      "A disgraced engineer races to stop a rail heist.",
			Runtime:       104,
			Languages:     []string{"English"},
			Certification: "R",
			Budget:        f64(42000000),
			BoxOffice:     f64(18000000),
			CreatedAt:     mustTime("2024-04-02T12:00:00Z"),
			UpdatedAt:     mustTime("2024-05-20T08:15:00Z"),
			ImportedFrom:  "OMDB",
		},
	}
	for i := range seed {
		seed[i].NormalizeLists()
	}
	return seed
}
