package location

import (
	"fmt"
	"math"
	"strings"
)

// StoreLocation отслеживаемая точка интереса (магазин)
type StoreLocation struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Radius            float64 `json:"radius"`
	ListID            string  `json:"listId,omitempty"`
	ListName          string  `json:"listName,omitempty"`
	ListImage         string  `json:"listImage,omitempty"`
	ReservationNumber string  `json:"reservationNumber,omitempty"`
}

// Validate проверяет инварианты записи; пустой id допустим до присвоения реестром
func (l StoreLocation) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLocation)
	}
	if math.IsNaN(l.Radius) || l.Radius <= 0 {
		return fmt.Errorf("%w: radius must be positive", ErrInvalidLocation)
	}
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude out of range", ErrInvalidLocation)
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude out of range", ErrInvalidLocation)
	}
	return nil
}
