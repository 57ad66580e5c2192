package dispatch

import (
	"fmt"
	"sync/atomic"

	"github.com/mailpilot/mailpilot-backend/internal/model"
)

// AccountPool hands out sender accounts in round-robin order. The rotation
// cursor is a single atomic counter shared by every worker, so concurrent
// callers interleave on one global sequence instead of each mutating a
// shared index.
type AccountPool struct {
	accounts []model.Account
	cursor   atomic.Uint64
}

// NewAccountPool builds a pool for one campaign run. The account list is
// validated by the caller; an empty pool is a programming error here.
func NewAccountPool(accounts []model.Account) (*AccountPool, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("account pool cannot be empty")
	}
	pool := &AccountPool{accounts: make([]model.Account, len(accounts))}
	copy(pool.accounts, accounts)
	return pool, nil
}

// Next returns the next account, wrapping to the first after the last. The
// cursor advances on every call regardless of send outcome.
func (p *AccountPool) Next() model.Account {
	n := p.cursor.Add(1) - 1
	return p.accounts[n%uint64(len(p.accounts))]
}

// Size returns the number of accounts in rotation.
func (p *AccountPool) Size() int {
	return len(p.accounts)
}
