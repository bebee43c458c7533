package models

import "time"

// Recipe is owned by its author. Its ingredient rows are replaced wholesale on update.
type Recipe struct {
	ID          uint               `gorm:"primaryKey"`
	Name        string             `gorm:"uniqueIndex;size:200;not null"`
	AuthorID    uint               `gorm:"not null;index"`
	Author      *User              `gorm:"constraint:OnDelete:CASCADE"`
	Text        string             `gorm:"type:text;not null"`
	Tags        []Tag              `gorm:"many2many:recipe_tags"`
	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
	Image       string             `gorm:"size:255;not null"`
	CookingTime int                `gorm:"not null;check:cooking_time BETWEEN 1 AND 32767"`
	CreatedAt   time.Time
}

// RecipeIngredient carries the amount of one ingredient within one recipe.
type RecipeIngredient struct {
	ID           uint        `gorm:"primaryKey"`
	RecipeID     uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index"`
	Ingredient   *Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int         `gorm:"not null;check:amount BETWEEN 1 AND 32767"`
}

// Favorite is a user's bookmark of a recipe.
type Favorite struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint    `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	User      *User   `gorm:"constraint:OnDelete:CASCADE"`
	Recipe    *Recipe `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// ShoppingCart marks a recipe whose ingredients the user plans to buy.
type ShoppingCart struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uint    `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index"`
	User      *User   `gorm:"constraint:OnDelete:CASCADE"`
	Recipe    *Recipe `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Follow{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&ShoppingCart{},
	}
}
