// Package tank defines the fermentation tank entity, its status
// enumeration, and the validation rules applied to operator input.
package tank

// Status is the lifecycle label of a tank. The localized strings are the
// canonical values: they are stored, sent over the wire, and displayed
// as-is, with no internal/external naming split.
type Status string

const (
	StatusFermenting Status = "Fermentando"
	StatusMaturing   Status = "Madurando"
	StatusReady      Status = "Lista para envasar"
	StatusEmpty      Status = "Vacío"
)

// Tank is a fermentation/maturation vessel record. ID is assigned by the
// operator at creation time and immutable afterwards.
type Tank struct {
	ID             string  `json:"id"`
	BeerType       string  `json:"beerType"`
	VolumeLiters   float64 `json:"volumeLiters"`
	CapacityLiters float64 `json:"capacityLiters"`
	Status         Status  `json:"status"`
}

// Seed returns the eight canonical demo tanks inserted the first time the
// store is found empty.
func Seed() []Tank {
	return []Tank{
		{ID: "T-001", BeerType: "IPA", VolumeLiters: 1800, CapacityLiters: 2000, Status: StatusFermenting},
		{ID: "T-002", BeerType: "Stout", VolumeLiters: 1950, CapacityLiters: 2000, Status: StatusMaturing},
		{ID: "T-003", BeerType: "Lager", VolumeLiters: 2000, CapacityLiters: 2000, Status: StatusReady},
		{ID: "T-004", BeerType: "Pilsner", VolumeLiters: 0, CapacityLiters: 1500, Status: StatusEmpty},
		{ID: "T-005", BeerType: "IPA", VolumeLiters: 1200, CapacityLiters: 2000, Status: StatusMaturing},
		{ID: "T-006", BeerType: "Amber Ale", VolumeLiters: 1450, CapacityLiters: 1500, Status: StatusReady},
		{ID: "T-007", BeerType: "Lager", VolumeLiters: 1900, CapacityLiters: 2000, Status: StatusFermenting},
		{ID: "T-008", BeerType: "Stout", VolumeLiters: 1000, CapacityLiters: 2000, Status: StatusReady},
	}
}
