package domain

import "time"

type SpaceCategory string

const (
	SpaceTruck     SpaceCategory = "truck"
	SpaceCar       SpaceCategory = "car"
	SpaceWarehouse SpaceCategory = "warehouse"
	SpaceStorage   SpaceCategory = "storage"
)

// Space is a rentable location. Only the fields the account core needs to
// resolve a manager's branch are modelled here.
type Space struct {
	ID        string
	OwnerID   string
	Category  SpaceCategory
	Name      string
	Location  string
	CreatedAt time.Time
}
