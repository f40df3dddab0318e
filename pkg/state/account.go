package state

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jzx17/gotaskpool/pkg/types"
)

// Account is a mutable balance protected by an exclusive lock. Deposit
// and withdraw are linearizable: concurrent operations behave as if
// executed in some single total order, and the balance always equals
// the initial balance plus completed deposits minus successful
// withdrawals.
//
// The lock covers only the balance read-modify-write and is released
// on every exit path.
type Account struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

// NewAccount creates an account with the given initial balance.
func NewAccount(initial decimal.Decimal) *Account {
	return &Account{balance: initial}
}

// Deposit adds amount to the balance and returns the new balance.
// Amount must be positive; types.ErrInvalidAmount is returned before
// the lock is taken otherwise.
func (a *Account) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, types.ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.balance = a.balance.Add(amount)
	return a.balance, nil
}

// Withdraw subtracts amount from the balance and returns the new
// balance. If the balance is insufficient the account is left
// untouched and types.ErrInsufficientFunds is returned alongside the
// current balance. Amount must be positive.
func (a *Account) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, types.ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.balance.LessThan(amount) {
		return a.balance, types.ErrInsufficientFunds
	}

	a.balance = a.balance.Sub(amount)
	return a.balance, nil
}

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}
