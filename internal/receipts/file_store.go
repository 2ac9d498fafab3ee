package receipts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileStore writes each receipt as a timestamped JSON file
type fileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a file-backed receipt store rooted at dir
func NewFileStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

// Save writes the receipt to booking_YYYYMMDD_HHMMSS.json
func (s *fileStore) Save(ctx context.Context, receipt *Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}

	name := fmt.Sprintf("booking_%s.json", receipt.BookedAt.Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write receipt %s: %w", path, err)
	}
	return nil
}
