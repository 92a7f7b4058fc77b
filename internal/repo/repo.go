package repo

import (
	"errors"

	"gorm.io/gorm"
)

var ErrUserAlreadyExists = errors.New("user already exists")

type GormRepo struct {
	DB *gorm.DB
}

// ProductFilter narrows a catalog listing. Nil price bounds mean unbounded.
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// ProductPatch carries a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Category    *string
	Price       *float64
	Quantity    *int
}
