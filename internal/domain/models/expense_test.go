package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpenseTypeValid(t *testing.T) {
	for _, et := range ExpenseTypes {
		assert.True(t, et.Valid(), "%s should be valid", et)
	}

	assert.False(t, ExpenseType("").Valid())
	assert.False(t, ExpenseType("food").Valid())
	assert.False(t, ExpenseType("Groceries").Valid())
}
