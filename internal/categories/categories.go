// Package categories exposes the static event category catalog.
package categories

import (
	"eventx/internal/apperr"
	"eventx/internal/models"
)

var catalog = []models.Category{
	{ID: 1, Name: "Music", Icon: "music", Description: "Concerts, festivals and live performances"},
	{ID: 2, Name: "Sports", Icon: "trophy", Description: "Matches, races and tournaments"},
	{ID: 3, Name: "Tech", Icon: "cpu", Description: "Conferences, meetups and hackathons"},
	{ID: 4, Name: "Arts", Icon: "palette", Description: "Theatre, exhibitions and readings"},
	{ID: 5, Name: "Food", Icon: "utensils", Description: "Festivals, tastings and pop-ups"},
	{ID: 6, Name: "Business", Icon: "briefcase", Description: "Networking, summits and workshops"},
	{ID: 7, Name: "Education", Icon: "book", Description: "Lectures, courses and seminars"},
	{ID: 8, Name: "Other", Icon: "tag", Description: "Everything else"},
}

// List returns the full catalog.
func List() []models.Category {
	out := make([]models.Category, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks a category up by id.
func Get(id int) (*models.Category, error) {
	for _, c := range catalog {
		if c.ID == id {
			category := c
			return &category, nil
		}
	}
	return nil, apperr.NotFound("Category not found")
}

// Valid reports whether a name is in the catalog.
func Valid(name string) bool {
	for _, c := range catalog {
		if c.Name == name {
			return true
		}
	}
	return false
}
