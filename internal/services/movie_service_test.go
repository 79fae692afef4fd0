package services

import (
	"fmt"
	"testing"

	"github.com/kinohub/kinohub/internal/dto"
	"github.com/kinohub/kinohub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func movieRequest(name string, year int) *dto.MovieCreateRequest {
	return &dto.MovieCreateRequest{
		Name:          name,
		Year:          year,
		Time:          120,
		IMDb:          7.5,
		Votes:         1000,
		Description:   "A test movie.",
		Price:         9.99,
		Genres:        []string{"Action"},
		Stars:         []string{"Lead Star"},
		Directors:     []string{"Main Director"},
		Certification: "PG-13",
	}
}

func listParams() *dto.MovieListParams {
	return &dto.MovieListParams{Page: 1, PerPage: 10}
}

func TestMovieCreate_ResolvesAndLinksLookups(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	req := movieRequest("Dune", 2021)
	req.Genres = []string{"Sci-Fi", "Adventure"}
	req.Directors = []string{"Denis Villeneuve"}
	req.Stars = []string{"Timothee Chalamet", "Zendaya"}

	movie, err := svc.Create(req)
	require.NoError(t, err)

	assert.NotEmpty(t, movie.UUID)
	assert.Len(t, movie.Genres, 2)
	assert.Len(t, movie.Directors, 1)
	assert.Len(t, movie.Stars, 2)
	require.NotNil(t, movie.Certification.Name)
	assert.Equal(t, "PG-13", *movie.Certification.Name)

	var genreCount, certCount int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&genreCount).Error)
	require.NoError(t, db.Model(&models.Certification{}).Count(&certCount).Error)
	assert.Equal(t, int64(2), genreCount)
	assert.Equal(t, int64(1), certCount)
}

func TestMovieCreate_ReusesExistingLookupsAcrossRequests(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	first, err := svc.Create(movieRequest("First", 2020))
	require.NoError(t, err)

	// Different casing must resolve to the same rows, not create new ones.
	req := movieRequest("Second", 2021)
	req.Genres = []string{"action"}
	req.Directors = []string{"main director"}
	req.Certification = "PG-13"
	second, err := svc.Create(req)
	require.NoError(t, err)

	var genreCount, directorCount, certCount int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&genreCount).Error)
	require.NoError(t, db.Model(&models.Director{}).Count(&directorCount).Error)
	require.NoError(t, db.Model(&models.Certification{}).Count(&certCount).Error)
	assert.Equal(t, int64(1), genreCount)
	assert.Equal(t, int64(1), directorCount)
	assert.Equal(t, int64(1), certCount)

	require.Len(t, second.Genres, 1)
	assert.Equal(t, first.Genres[0].ID, second.Genres[0].ID)
	assert.Equal(t, "Action", second.Genres[0].Name)
}

func TestMovieCreate_MemoDedupesNamesWithinRequest(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	req := movieRequest("Dramatic", 2019)
	req.Genres = []string{"Drama", "drama", "DRAMA"}

	movie, err := svc.Create(req)
	require.NoError(t, err)

	assert.Len(t, movie.Genres, 1)
	var genreCount int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&genreCount).Error)
	assert.Equal(t, int64(1), genreCount)
}

func TestMovieCreate_DuplicateNameAndYearConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	_, err := svc.Create(movieRequest("Heat", 1995))
	require.NoError(t, err)

	dup := movieRequest("Heat", 1995)
	dup.Genres = []string{"Crime"}
	_, err = svc.Create(dup)
	assert.ErrorIs(t, err, ErrMovieExists)

	// The conflicting request must not leave new lookup rows behind.
	var crime int64
	require.NoError(t, db.Model(&models.Genre{}).Where("name = ?", "Crime").Count(&crime).Error)
	assert.Zero(t, crime)
}

func TestMovieCreate_RollsBackLookupsOnIntegrityViolation(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	first := movieRequest("Original", 2018)
	first.UUID = "fixed-uuid-0001"
	_, err := svc.Create(first)
	require.NoError(t, err)

	// Different (name, year) passes the pre-check, but the duplicate UUID
	// violates the unique index inside the transaction. The genre created
	// before the movie insert must roll back with it.
	bad := movieRequest("Colliding", 2019)
	bad.UUID = "fixed-uuid-0001"
	bad.Genres = []string{"Fresh Genre"}
	_, err = svc.Create(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	var fresh int64
	require.NoError(t, db.Model(&models.Genre{}).Where("name = ?", "Fresh Genre").Count(&fresh).Error)
	assert.Zero(t, fresh)

	var movieCount int64
	require.NoError(t, db.Model(&models.Movie{}).Count(&movieCount).Error)
	assert.Equal(t, int64(1), movieCount)
}

func TestMovieList_CountNotInflatedByJoinFanOut(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	req := movieRequest("Multi Genre", 2022)
	req.Genres = []string{"Action", "Adventure"}
	_, err := svc.Create(req)
	require.NoError(t, err)

	// The pattern matches both of the movie's genres, so the join yields two
	// rows for one movie. The count and the page must both see one movie.
	params := listParams()
	params.Genre = "a"
	resp, err := svc.List(params)
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.TotalItems)
	assert.Len(t, resp.Movies, 1)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestMovieList_PaginationAndPageLinks(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	for i := 1; i <= 25; i++ {
		req := movieRequest(fmt.Sprintf("Movie %02d", i), 2000)
		req.Votes = i * 10
		_, err := svc.Create(req)
		require.NoError(t, err)
	}

	params := listParams()
	params.SortBy = "votes"
	params.Page = 2
	resp, err := svc.List(params)
	require.NoError(t, err)

	assert.Equal(t, int64(25), resp.TotalItems)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Movies, 10)
	require.NotNil(t, resp.PrevPage)
	require.NotNil(t, resp.NextPage)
	assert.Equal(t, "/movies/?page=1&per_page=10", *resp.PrevPage)
	assert.Equal(t, "/movies/?page=3&per_page=10", *resp.NextPage)

	// Walking every page yields each movie exactly once, in strictly
	// descending vote order.
	seen := map[uint]bool{}
	lastVotes := 1 << 30
	for page := 1; page <= 3; page++ {
		params.Page = page
		resp, err := svc.List(params)
		require.NoError(t, err)

		if page == 1 {
			assert.Nil(t, resp.PrevPage)
		}
		if page == 3 {
			assert.Nil(t, resp.NextPage)
			assert.Len(t, resp.Movies, 5)
		}
		for _, item := range resp.Movies {
			assert.False(t, seen[item.ID], "movie %d appeared twice", item.ID)
			seen[item.ID] = true

			var m models.Movie
			require.NoError(t, db.First(&m, item.ID).Error)
			assert.Less(t, m.Votes, lastVotes)
			lastVotes = m.Votes
		}
	}
	assert.Len(t, seen, 25)
}

func TestMovieList_DefaultSortIsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	older, err := svc.Create(movieRequest("Older", 2001))
	require.NoError(t, err)
	newer, err := svc.Create(movieRequest("Newer", 2002))
	require.NoError(t, err)

	resp, err := svc.List(listParams())
	require.NoError(t, err)
	require.Len(t, resp.Movies, 2)
	assert.Equal(t, newer.ID, resp.Movies[0].ID)
	assert.Equal(t, older.ID, resp.Movies[1].ID)
}

func TestMovieList_FiltersCombineWithAnd(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	a := movieRequest("Alpha", 2010)
	a.IMDb = 6.0
	_, err := svc.Create(a)
	require.NoError(t, err)

	b := movieRequest("Beta", 2010)
	b.IMDb = 8.5
	_, err = svc.Create(b)
	require.NoError(t, err)

	c := movieRequest("Gamma", 2011)
	c.IMDb = 9.0
	_, err = svc.Create(c)
	require.NoError(t, err)

	year := 2010
	minIMDb := 7.0
	params := listParams()
	params.Year = &year
	params.MinIMDb = &minIMDb
	resp, err := svc.List(params)
	require.NoError(t, err)

	require.Len(t, resp.Movies, 1)
	assert.Equal(t, "Beta", resp.Movies[0].Name)
}

func TestMovieList_SearchSpansNameDescriptionAndPeople(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	byName := movieRequest("Blade Runner", 1982)
	byName.Directors = []string{"Ridley Scott"}
	_, err := svc.Create(byName)
	require.NoError(t, err)

	byDirector := movieRequest("Alien", 1979)
	byDirector.Directors = []string{"Ridley Scott"}
	_, err = svc.Create(byDirector)
	require.NoError(t, err)

	unrelated := movieRequest("Casablanca", 1942)
	unrelated.Directors = []string{"Michael Curtiz"}
	_, err = svc.Create(unrelated)
	require.NoError(t, err)

	params := listParams()
	params.Search = "ridley"
	resp, err := svc.List(params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalItems)

	// Search joins must stay independent of the genre filter's joins.
	params.Genre = "action"
	resp, err = svc.List(params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalItems)
}

func TestMovieList_NoMatches(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	_, err := svc.Create(movieRequest("Lonely", 2000))
	require.NoError(t, err)

	year := 1900
	params := listParams()
	params.Year = &year
	_, err = svc.List(params)
	assert.ErrorIs(t, err, ErrNoMovies)
}

func TestMovieGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	_, err := svc.GetByID(999)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestMovieUpdate_PatchAppliesOnlyProvidedFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	created, err := svc.Create(movieRequest("Patchable", 2015))
	require.NoError(t, err)

	price := 4.99
	votes := 0
	err = svc.Update(created.ID, &dto.MovieUpdateRequest{Price: &price, Votes: &votes})
	require.NoError(t, err)

	got, err := svc.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.99, got.Price)
	assert.Equal(t, 0, got.Votes)
	// Untouched fields keep their values.
	assert.Equal(t, "Patchable", got.Name)
	assert.Equal(t, 2015, got.Year)
	assert.Equal(t, 7.5, got.IMDb)
}

func TestMovieUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	price := 1.0
	err := svc.Update(42, &dto.MovieUpdateRequest{Price: &price})
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestMovieUpdate_DuplicateIdentityRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	_, err := svc.Create(movieRequest("Taken", 2008))
	require.NoError(t, err)
	other, err := svc.Create(movieRequest("Renameable", 2009))
	require.NoError(t, err)

	name := "Taken"
	year := 2008
	err = svc.Update(other.ID, &dto.MovieUpdateRequest{Name: &name, Year: &year})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// The failed patch must not leave a partial update behind.
	got, err := svc.GetByID(other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renameable", got.Name)
	assert.Equal(t, 2009, got.Year)
}

func TestMovieDelete_ClearsLinksButKeepsLookups(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	shared := movieRequest("Survivor", 2016)
	shared.Genres = []string{"Thriller"}
	_, err := svc.Create(shared)
	require.NoError(t, err)

	doomed := movieRequest("Doomed", 2017)
	doomed.Genres = []string{"Thriller", "Horror"}
	created, err := svc.Create(doomed)
	require.NoError(t, err)

	var linksBefore int64
	require.NoError(t, db.Table("movies_genres").Count(&linksBefore).Error)
	assert.Equal(t, int64(3), linksBefore)

	require.NoError(t, svc.Delete(created.ID))

	_, err = svc.GetByID(created.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)

	var linksAfter int64
	require.NoError(t, db.Table("movies_genres").Count(&linksAfter).Error)
	assert.Equal(t, int64(1), linksAfter)

	// Shared lookup entities survive the delete.
	var genreCount int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&genreCount).Error)
	assert.Equal(t, int64(2), genreCount)
}

func TestMovieDelete_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	err := svc.Delete(7)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestListGenres_CountsLinkedMovies(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	one := movieRequest("One", 2001)
	one.Genres = []string{"Action", "Comedy"}
	_, err := svc.Create(one)
	require.NoError(t, err)

	two := movieRequest("Two", 2002)
	two.Genres = []string{"Action"}
	_, err = svc.Create(two)
	require.NoError(t, err)

	rows, err := svc.ListGenres()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, dto.GenreCount{Name: "Action", MovieCount: 2}, rows[0])
	assert.Equal(t, dto.GenreCount{Name: "Comedy", MovieCount: 1}, rows[1])
}

func TestListGenres_Empty(t *testing.T) {
	db := newTestDB(t)
	svc := NewMovieService(db)

	_, err := svc.ListGenres()
	assert.ErrorIs(t, err, ErrNoGenres)
}

func TestLookupOrCreate_ReturnsExistingRow(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Genre{Name: "Western"}).Error)

	memo := map[string]*models.Genre{}
	got, err := lookupOrCreate(db, memo, "Western",
		func(name string) *models.Genre { return &models.Genre{Name: name} })
	require.NoError(t, err)
	assert.NotZero(t, got.ID)

	var count int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// A second resolution through the memo must not touch the database; make
	// sure it returns the identical entity.
	again, err := lookupOrCreate(&gorm.DB{}, memo, "Western", nil)
	require.NoError(t, err)
	assert.Same(t, got, again)
}
