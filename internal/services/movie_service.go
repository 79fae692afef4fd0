package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kinohub/kinohub/internal/dto"
	"github.com/kinohub/kinohub/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var (
	ErrNoMovies      = errors.New("no movies found")
	ErrNoGenres      = errors.New("no genres found")
	ErrMovieNotFound = errors.New("movie with the given ID was not found")
	ErrMovieExists   = errors.New("movie already exists")
	ErrInvalidInput  = errors.New("invalid input data")
)

// titleCaser normalizes genre/director/star names so "sci-fi" and "Sci-Fi"
// resolve to the same lookup row.
var titleCaser = cases.Title(language.English)

type MovieService struct {
	db *gorm.DB
}

func NewMovieService(db *gorm.DB) *MovieService {
	return &MovieService{db: db}
}

// List returns one page of movies matching the given filters plus the total
// match count. The count shares the exact WHERE/JOIN criteria of the page
// fetch but counts distinct movie IDs, so join fan-out from the many-to-many
// relations never inflates it.
func (s *MovieService) List(params *dto.MovieListParams) (*dto.MovieListResponse, error) {
	base := applyFilters(s.db.Model(&models.Movie{}), params)

	var totalItems int64
	if err := base.Session(&gorm.Session{}).Distinct("movies.id").Count(&totalItems).Error; err != nil {
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}
	if totalItems == 0 {
		return nil, ErrNoMovies
	}

	query := base.Session(&gorm.Session{}).
		Distinct("movies.*").
		Preload("Genres").
		Preload("Directors").
		Preload("Stars").
		Preload("Certification")

	switch params.SortBy {
	case "price", "year", "votes":
		query = query.Order("movies." + params.SortBy + " DESC")
	default:
		// Most-recently-created first.
		query = query.Order("movies.id DESC")
	}

	offset := (params.Page - 1) * params.PerPage
	var movies []models.Movie
	if err := query.Offset(offset).Limit(params.PerPage).Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch movies: %w", err)
	}

	items := make([]dto.MovieListItem, len(movies))
	for i := range movies {
		items[i] = dto.NewMovieListItem(&movies[i])
	}

	totalPages := int((totalItems + int64(params.PerPage) - 1) / int64(params.PerPage))
	resp := &dto.MovieListResponse{
		Movies:     items,
		TotalPages: totalPages,
		TotalItems: totalItems,
	}
	if params.Page > 1 {
		resp.PrevPage = dto.PageLink(params.Page-1, params.PerPage)
	}
	if params.Page < totalPages {
		resp.NextPage = dto.PageLink(params.Page+1, params.PerPage)
	}
	return resp, nil
}

// applyFilters AND-combines the optional filters. Free-text search is the
// exception: it ORs across movie name, description, director and star names,
// and walks its own aliased join paths so it stays independent of the joins
// added by the genre/director/star filters.
func applyFilters(q *gorm.DB, p *dto.MovieListParams) *gorm.DB {
	if p.Year != nil {
		q = q.Where("movies.year = ?", *p.Year)
	}
	if p.MinIMDb != nil {
		q = q.Where("movies.imdb >= ?", *p.MinIMDb)
	}
	if p.MaxIMDb != nil {
		q = q.Where("movies.imdb <= ?", *p.MaxIMDb)
	}
	if p.Genre != "" {
		q = q.Joins("JOIN movies_genres ON movies_genres.movie_id = movies.id").
			Joins("JOIN genres ON genres.id = movies_genres.genre_id").
			Where("LOWER(genres.name) LIKE ?", containsPattern(p.Genre))
	}
	if p.Director != "" {
		q = q.Joins("JOIN movies_directors ON movies_directors.movie_id = movies.id").
			Joins("JOIN directors ON directors.id = movies_directors.director_id").
			Where("LOWER(directors.name) LIKE ?", containsPattern(p.Director))
	}
	if p.Star != "" {
		q = q.Joins("JOIN movies_stars ON movies_stars.movie_id = movies.id").
			Joins("JOIN stars ON stars.id = movies_stars.star_id").
			Where("LOWER(stars.name) LIKE ?", containsPattern(p.Star))
	}
	if p.Search != "" {
		pattern := containsPattern(p.Search)
		q = q.Joins("LEFT JOIN movies_directors AS search_md ON search_md.movie_id = movies.id").
			Joins("LEFT JOIN directors AS search_d ON search_d.id = search_md.director_id").
			Joins("LEFT JOIN movies_stars AS search_ms ON search_ms.movie_id = movies.id").
			Joins("LEFT JOIN stars AS search_s ON search_s.id = search_ms.star_id").
			Where(
				"LOWER(movies.name) LIKE ? OR LOWER(movies.description) LIKE ? OR LOWER(search_d.name) LIKE ? OR LOWER(search_s.name) LIKE ?",
				pattern, pattern, pattern, pattern,
			)
	}
	return q
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// Create adds a movie together with its certification, genres, directors and
// stars in one transaction. Referenced names are resolved to existing lookup
// rows or created; a per-transaction memo collapses duplicate names within
// the request so one request never creates two rows for the same name. Any
// integrity violation rolls back every intermediate creation.
func (s *MovieService) Create(req *dto.MovieCreateRequest) (*models.Movie, error) {
	var existing models.Movie
	if err := s.db.Where("name = ? AND year = ?", req.Name, req.Year).First(&existing).Error; err == nil {
		return nil, ErrMovieExists
	}

	var movieID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cert, err := lookupOrCreate(tx, map[string]*models.Certification{}, req.Certification,
			func(name string) *models.Certification { return &models.Certification{Name: &name} })
		if err != nil {
			return err
		}

		genres, err := resolveAll(tx, req.Genres,
			func(name string) *models.Genre { return &models.Genre{Name: name} })
		if err != nil {
			return err
		}
		stars, err := resolveAll(tx, req.Stars,
			func(name string) *models.Star { return &models.Star{Name: name} })
		if err != nil {
			return err
		}
		directors, err := resolveAll(tx, req.Directors,
			func(name string) *models.Director { return &models.Director{Name: name} })
		if err != nil {
			return err
		}

		movie := models.Movie{
			UUID:            req.UUID,
			Name:            req.Name,
			Year:            req.Year,
			Time:            req.Time,
			IMDb:            req.IMDb,
			Votes:           req.Votes,
			MetaScore:       req.MetaScore,
			Gross:           req.Gross,
			Description:     req.Description,
			Price:           req.Price,
			CertificationID: cert.ID,
			Genres:          genres,
			Stars:           stars,
			Directors:       directors,
		}
		if err := tx.Create(&movie).Error; err != nil {
			return err
		}
		movieID = movie.ID
		return nil
	})
	if err != nil {
		slog.Error("movie creation failed", "action", "movie_create", "name", req.Name, "error", err.Error())
		return nil, ErrInvalidInput
	}

	return s.GetByID(movieID)
}

// lookupOrCreate resolves a name to an existing row or creates one inside tx,
// memoizing per transaction so repeated names reuse the in-flight entity.
func lookupOrCreate[T any](tx *gorm.DB, memo map[string]*T, name string, build func(string) *T) (*T, error) {
	if entity, ok := memo[name]; ok {
		return entity, nil
	}

	entity := new(T)
	err := tx.Where("name = ?", name).First(entity).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		entity = build(name)
		if err := tx.Create(entity).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	memo[name] = entity
	return entity, nil
}

// resolveAll title-cases each name and resolves it through a shared memo,
// preserving the input order of the request.
func resolveAll[T any](tx *gorm.DB, names []string, build func(string) *T) ([]T, error) {
	memo := make(map[string]*T, len(names))
	out := make([]T, 0, len(names))
	for _, raw := range names {
		name := titleCaser.String(strings.TrimSpace(raw))
		if _, ok := memo[name]; ok {
			continue
		}
		entity, err := lookupOrCreate(tx, memo, name, build)
		if err != nil {
			return nil, err
		}
		out = append(out, *entity)
	}
	return out, nil
}

// GetByID fetches a movie with every relation preloaded so projections never
// go back to the store.
func (s *MovieService) GetByID(id uint) (*models.Movie, error) {
	var movie models.Movie
	err := s.db.
		Preload("Genres").
		Preload("Directors").
		Preload("Stars").
		Preload("Certification").
		First(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movie: %w", err)
	}
	return &movie, nil
}

// Update applies patch semantics: only fields present in the request change.
// Relations are not updatable through this path.
func (s *MovieService) Update(id uint, req *dto.MovieUpdateRequest) error {
	var movie models.Movie
	if err := s.db.First(&movie, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMovieNotFound
		}
		return fmt.Errorf("failed to fetch movie: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}
	if req.Time != nil {
		updates["time"] = *req.Time
	}
	if req.IMDb != nil {
		updates["imdb"] = *req.IMDb
	}
	if req.Votes != nil {
		updates["votes"] = *req.Votes
	}
	if req.MetaScore != nil {
		updates["meta_score"] = *req.MetaScore
	}
	if req.Gross != nil {
		updates["gross"] = *req.Gross
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.db.Model(&movie).Updates(updates).Error; err != nil {
		slog.Error("movie update failed", "action", "movie_update", "movie_id", id, "error", err.Error())
		return ErrInvalidInput
	}
	return nil
}

// Delete removes the movie and its link-table rows in one transaction. The
// shared lookup entities stay.
func (s *MovieService) Delete(id uint) error {
	var movie models.Movie
	if err := s.db.First(&movie, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMovieNotFound
		}
		return fmt.Errorf("failed to fetch movie: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, assoc := range []string{"Genres", "Directors", "Stars"} {
			if err := tx.Model(&movie).Association(assoc).Clear(); err != nil {
				return err
			}
		}
		return tx.Delete(&movie).Error
	})
}

// ListGenres returns every genre with the number of movies linked to it.
func (s *MovieService) ListGenres() ([]dto.GenreCount, error) {
	var rows []dto.GenreCount
	err := s.db.Model(&models.Genre{}).
		Select("genres.name AS name, COUNT(movies_genres.movie_id) AS movie_count").
		Joins("JOIN movies_genres ON movies_genres.genre_id = genres.id").
		Group("genres.id").
		Order("genres.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoGenres
	}
	return rows, nil
}
