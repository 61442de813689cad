package entity

import "time"

// Category agrupa productos (destilados, vinos, cervezas...). Name es único.
type Category struct {
	ID          string
	Name        string
	Description string
	SortOrder   int
	CreatedAt   time.Time
}
