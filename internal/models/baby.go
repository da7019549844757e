package models

// BabyProfile is overwritten wholesale by admin edits
type BabyProfile struct {
	Name         string   `json:"name"`
	BirthDateIso string   `json:"birthDateIso"` // local ISO-8601, no zone
	PhotoURL     string   `json:"photoUrl,omitempty"`
	WeightLbs    *float64 `json:"weightLbs,omitempty"`
}
