package models

import "time"

type ExpenseType string

const (
	ExpenseTypeFood          ExpenseType = "Food"
	ExpenseTypeRent          ExpenseType = "Rent"
	ExpenseTypeTransport     ExpenseType = "Transport"
	ExpenseTypeUtilities     ExpenseType = "Utilities"
	ExpenseTypeSubscriptions ExpenseType = "Subscriptions"
	ExpenseTypeEntertainment ExpenseType = "Entertainment"
	ExpenseTypeOther         ExpenseType = "Other"
)

// ExpenseTypes lists every accepted category.
var ExpenseTypes = []ExpenseType{
	ExpenseTypeFood,
	ExpenseTypeRent,
	ExpenseTypeTransport,
	ExpenseTypeUtilities,
	ExpenseTypeSubscriptions,
	ExpenseTypeEntertainment,
	ExpenseTypeOther,
}

func (t ExpenseType) Valid() bool {
	for _, known := range ExpenseTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Expense struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Date        time.Time   `json:"date"`
	Type        ExpenseType `json:"type"`
	UserID      string      `json:"user"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ExpensePatch carries a partial update; nil fields keep their stored value.
type ExpensePatch struct {
	Title       *string
	Description *string
	Amount      *float64
	Date        *time.Time
	Type        *ExpenseType
}

type TypeTotal struct {
	Type        ExpenseType `json:"type"`
	TotalAmount float64     `json:"totalAmount"`
}
