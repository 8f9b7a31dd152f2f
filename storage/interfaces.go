package storage

import "where2eat/models"

// ShortlistWriter is the interface any export backend must satisfy.
type ShortlistWriter interface {
	Write(shortlist []models.Restaurant) error
	Close() error
}
