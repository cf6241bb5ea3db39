package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountDeposit(t *testing.T) {
	a := &Account{}
	a.Open("user-1")

	require.NoError(t, a.Deposit(100_00))
	assert.Equal(t, int64(100_00), a.Balance)

	require.NoError(t, a.Deposit(50_00))
	assert.Equal(t, int64(150_00), a.Balance)
}

func TestAccountDepositRejectsNonPositiveAmount(t *testing.T) {
	a := &Account{Balance: 100_00}

	err := a.Deposit(0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	err = a.Deposit(-10_00)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, int64(100_00), a.Balance)
}

func TestAccountWithdraw(t *testing.T) {
	a := &Account{Balance: 150_00}

	require.NoError(t, a.Withdraw(50_00))
	assert.Equal(t, int64(100_00), a.Balance)
}

func TestAccountWithdrawInsufficientBalanceLeavesBalanceUnchanged(t *testing.T) {
	a := &Account{Balance: 150_00}

	err := a.Withdraw(200_00)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(150_00), a.Balance)
}

func TestAccountWithdrawRejectsNonPositiveAmount(t *testing.T) {
	a := &Account{Balance: 100_00}

	err := a.Withdraw(-50_00)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, int64(100_00), a.Balance)
}

func TestAccountBalanceNeverNegative(t *testing.T) {
	a := &Account{}
	a.Open("user-1")

	ops := []struct {
		deposit bool
		amount  int64
	}{
		{true, 100_00},
		{false, 30_00},
		{false, 200_00}, // fails, insufficient
		{true, 50_00},
		{false, 120_00},
		{false, 1},      // fails, insufficient
		{true, -5},      // fails, invalid
		{false, -10_00}, // fails, invalid
	}

	for _, op := range ops {
		if op.deposit {
			_ = a.Deposit(op.amount)
		} else {
			_ = a.Withdraw(op.amount)
		}
		assert.GreaterOrEqual(t, a.Balance, int64(0))
	}
	assert.Equal(t, int64(0), a.Balance)
}
