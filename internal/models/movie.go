package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Genre, Director, Star and Certification are deduplicated lookup entities
// keyed by unique name. They are created lazily during movie creation and
// shared across movies; deleting a movie never deletes them.

type Genre struct {
	ID     uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string  `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Movies []Movie `gorm:"many2many:movies_genres" json:"-"`
}

type Director struct {
	ID     uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string  `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Movies []Movie `gorm:"many2many:movies_directors" json:"-"`
}

type Star struct {
	ID     uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string  `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Movies []Movie `gorm:"many2many:movies_stars" json:"-"`
}

type Certification struct {
	ID     uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   *string `gorm:"size:255;uniqueIndex" json:"name"`
	Movies []Movie `gorm:"foreignKey:CertificationID" json:"-"`
}

// Movie is the catalog item. The internal uint ID orders rows by creation and
// backs the default listing sort; UUID is the stable external identifier.
type Movie struct {
	ID              uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID            string        `gorm:"size:36;not null;uniqueIndex" json:"uuid"`
	Name            string        `gorm:"size:255;not null;uniqueIndex:uq_movies_name_year_time" json:"name"`
	Year            int           `gorm:"not null;uniqueIndex:uq_movies_name_year_time" json:"year"`
	Time            int           `gorm:"not null;uniqueIndex:uq_movies_name_year_time" json:"time"`
	IMDb            float64       `gorm:"column:imdb;not null" json:"imdb"`
	Votes           int           `gorm:"not null;default:0" json:"votes"`
	MetaScore       *float64      `json:"meta_score"`
	Gross           *float64      `json:"gross"`
	Description     string        `gorm:"type:text;not null" json:"description"`
	Price           float64       `gorm:"type:decimal(10,2);not null" json:"price"`
	CertificationID uint          `gorm:"not null" json:"certification_id"`
	Certification   Certification `gorm:"foreignKey:CertificationID" json:"certification"`
	Genres          []Genre       `gorm:"many2many:movies_genres;constraint:OnDelete:CASCADE" json:"genres"`
	Directors       []Director    `gorm:"many2many:movies_directors;constraint:OnDelete:CASCADE" json:"directors"`
	Stars           []Star        `gorm:"many2many:movies_stars;constraint:OnDelete:CASCADE" json:"stars"`
}

func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == "" {
		m.UUID = uuid.NewString()
	}
	return nil
}
