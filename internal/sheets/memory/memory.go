package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"finreport/internal/core"
	ports "finreport/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

var (
	_ ports.TransactionReader = (*Store)(nil)
	_ ports.TransactionWriter = (*Store)(nil)
)

func New(txs ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), txs...)}
}

// NewFromFile seeds a store from a JSON array of transactions using the
// export's English keys.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var txs []core.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return New(txs...), nil
}

// ReadTransactions returns a copy of the stored rows.
func (s *Store) ReadTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction{}, s.items...), nil
}

// SaveTransactions replaces the stored rows.
func (s *Store) SaveTransactions(_ context.Context, txs []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction(nil), txs...)
	return len(s.items), nil
}
