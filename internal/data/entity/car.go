package entity

import (
	"github.com/shopspring/decimal"
)

type Car struct {
	Base
	Brand     string          `db:"brand"`
	Model     string          `db:"model"`
	DailyRate decimal.Decimal `db:"daily_rate"`
	ImagePath *string         `db:"image_path"`
	Active    bool            `db:"active"`
}
