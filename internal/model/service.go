package model

// Service is a bookable studio offering. The catalog is immutable reference
// data loaded from configuration.
type Service struct {
	ID           string  `mapstructure:"id" json:"id"`
	Name         string  `mapstructure:"name" json:"name"`
	Category     string  `mapstructure:"category" json:"category"`
	Description  string  `mapstructure:"description" json:"description,omitempty"`
	Duration     int     `mapstructure:"duration_minutes" json:"duration_minutes"`
	Price        float64 `mapstructure:"price" json:"price"`
	BufferBefore int     `mapstructure:"buffer_before" json:"buffer_before"`
	BufferAfter  int     `mapstructure:"buffer_after" json:"buffer_after"`
	// PackageHours > 0 marks a flat-rate package product whose purchase credits
	// the client's hour bank.
	PackageHours float64 `mapstructure:"package_hours" json:"package_hours,omitempty"`
}

// Bookable reports whether the service can be scheduled into calendar slots.
// Zero-duration services are quote-based and never slotted.
func (s *Service) Bookable() bool {
	return s.Duration > 0
}
