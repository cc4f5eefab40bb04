package locator

import (
	"time"

	"gorm.io/datatypes"
)

// Place is a cached geocoder result. Key is the normalized form of the
// spoken query; Raw keeps the provider's response for debugging mismatched
// resolutions.
type Place struct {
	ID          uint   `gorm:"primarykey"`
	Key         string `gorm:"uniqueIndex"`
	Query       string
	DisplayName string
	Lat         float64
	Lon         float64
	Raw         datatypes.JSON
	CreatedAt   time.Time
}
