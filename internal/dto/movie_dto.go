package dto

import (
	"fmt"

	"github.com/kinohub/kinohub/internal/models"
)

// MovieListParams carries the filter, sort and pagination inputs of the
// movie listing endpoint. All filters are optional and AND-combined except
// Search, which ORs across name, description, director and star names.
type MovieListParams struct {
	Page     int `validate:"gte=1"`
	PerPage  int `validate:"gte=1,lte=20"`
	Year     *int
	MinIMDb  *float64
	MaxIMDb  *float64
	Genre    string
	Director string
	Star     string
	Search   string
	SortBy   string
}

func (p *MovieListParams) Validate() error {
	return Validate(p)
}

type MovieCreateRequest struct {
	UUID          string   `json:"uuid"`
	Name          string   `json:"name" validate:"required"`
	Year          int      `json:"year" validate:"required"`
	Time          int      `json:"time" validate:"required,gt=0"`
	IMDb          float64  `json:"imdb" validate:"gte=0,lte=10"`
	Votes         int      `json:"votes" validate:"gte=0"`
	MetaScore     *float64 `json:"meta_score"`
	Gross         *float64 `json:"gross"`
	Description   string   `json:"description" validate:"required"`
	Price         float64  `json:"price" validate:"gte=0"`
	Genres        []string `json:"genres" validate:"required,min=1"`
	Stars         []string `json:"stars" validate:"required,min=1"`
	Directors     []string `json:"directors" validate:"required,min=1"`
	Certification string   `json:"certification" validate:"required"`
}

func (r *MovieCreateRequest) Validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	return validateYear(r.Year)
}

// MovieUpdateRequest has patch semantics: only non-nil fields are applied.
// Relation fields are not updatable through this path.
type MovieUpdateRequest struct {
	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Time        *int     `json:"time"`
	IMDb        *float64 `json:"imdb" validate:"omitempty,gte=0,lte=10"`
	Votes       *int     `json:"votes" validate:"omitempty,gte=0"`
	MetaScore   *float64 `json:"meta_score"`
	Gross       *float64 `json:"gross"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
}

func (r *MovieUpdateRequest) Validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	if r.Year != nil {
		return validateYear(*r.Year)
	}
	return nil
}

type NamedEntity struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CertificationResponse struct {
	ID   uint    `json:"id"`
	Name *string `json:"name"`
}

// MovieListItem is the summary projection used in listings.
type MovieListItem struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	Year      int           `json:"year"`
	Time      int           `json:"time"`
	IMDb      float64       `json:"imdb"`
	Genres    []NamedEntity `json:"genres"`
	Directors []NamedEntity `json:"directors"`
	Stars     []NamedEntity `json:"stars"`
}

// MovieDetail is the full projection used for single-item responses.
type MovieDetail struct {
	ID            uint                  `json:"id"`
	UUID          string                `json:"uuid"`
	Name          string                `json:"name"`
	Year          int                   `json:"year"`
	Time          int                   `json:"time"`
	IMDb          float64               `json:"imdb"`
	Votes         int                   `json:"votes"`
	MetaScore     *float64              `json:"meta_score"`
	Gross         *float64              `json:"gross"`
	Description   string                `json:"description"`
	Price         float64               `json:"price"`
	Genres        []NamedEntity         `json:"genres"`
	Directors     []NamedEntity         `json:"directors"`
	Stars         []NamedEntity         `json:"stars"`
	Certification CertificationResponse `json:"certification"`
}

type MovieListResponse struct {
	Movies     []MovieListItem `json:"movies"`
	PrevPage   *string         `json:"prev_page"`
	NextPage   *string         `json:"next_page"`
	TotalPages int             `json:"total_pages"`
	TotalItems int64           `json:"total_items"`
}

type GenreCount struct {
	Name       string `json:"name"`
	MovieCount int64  `json:"movie_count"`
}

// NewMovieListItem projects a movie with preloaded relations into its
// summary shape. It never triggers further queries.
func NewMovieListItem(m *models.Movie) MovieListItem {
	return MovieListItem{
		ID:        m.ID,
		Name:      m.Name,
		Year:      m.Year,
		Time:      m.Time,
		IMDb:      m.IMDb,
		Genres:    genreEntities(m.Genres),
		Directors: directorEntities(m.Directors),
		Stars:     starEntities(m.Stars),
	}
}

// NewMovieDetail projects a fully-hydrated movie into its detail shape,
// including the nested certification.
func NewMovieDetail(m *models.Movie) MovieDetail {
	return MovieDetail{
		ID:          m.ID,
		UUID:        m.UUID,
		Name:        m.Name,
		Year:        m.Year,
		Time:        m.Time,
		IMDb:        m.IMDb,
		Votes:       m.Votes,
		MetaScore:   m.MetaScore,
		Gross:       m.Gross,
		Description: m.Description,
		Price:       m.Price,
		Genres:      genreEntities(m.Genres),
		Directors:   directorEntities(m.Directors),
		Stars:       starEntities(m.Stars),
		Certification: CertificationResponse{
			ID:   m.Certification.ID,
			Name: m.Certification.Name,
		},
	}
}

// PageLink builds the prev/next page URLs embedded in list responses.
func PageLink(page, perPage int) *string {
	link := fmt.Sprintf("/movies/?page=%d&per_page=%d", page, perPage)
	return &link
}

func genreEntities(gs []models.Genre) []NamedEntity {
	out := make([]NamedEntity, len(gs))
	for i, g := range gs {
		out[i] = NamedEntity{ID: g.ID, Name: g.Name}
	}
	return out
}

func directorEntities(ds []models.Director) []NamedEntity {
	out := make([]NamedEntity, len(ds))
	for i, d := range ds {
		out[i] = NamedEntity{ID: d.ID, Name: d.Name}
	}
	return out
}

func starEntities(ss []models.Star) []NamedEntity {
	out := make([]NamedEntity, len(ss))
	for i, s := range ss {
		out[i] = NamedEntity{ID: s.ID, Name: s.Name}
	}
	return out
}
