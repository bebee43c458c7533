package models

// Tag labels recipes, e.g. "breakfast".
type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex;size:150;not null"`
	Color string `json:"color" gorm:"uniqueIndex;size:7"`
	Slug  string `json:"slug" gorm:"uniqueIndex;size:200;not null"`
}

// Ingredient is a product with the unit it is measured in.
type Ingredient struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit;index"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:50;not null;uniqueIndex:idx_ingredient_name_unit"`
}
