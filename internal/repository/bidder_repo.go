package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/senyabanana/banner-auction/internal/models"
)

// BidderRepository - интерфейс для работы с реестром участников.
type BidderRepository interface {
	Load() (*models.BidderRegistry, error)
	Save(registry *models.BidderRegistry) error
}

// FileBidderRepository - реализация BidderRepository поверх JSON-файла.
type FileBidderRepository struct {
	path string
}

// NewFileBidderRepository создает новый экземпляр FileBidderRepository.
func NewFileBidderRepository(dataDir string) *FileBidderRepository {
	return &FileBidderRepository{path: filepath.Join(dataDir, "bidders.json")}
}

// Load читает реестр участников. Отсутствующий файл означает пустой реестр.
func (r *FileBidderRepository) Load() (*models.BidderRegistry, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return models.NewBidderRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bidder registry: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return models.NewBidderRegistry(), nil
	}

	var registry models.BidderRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if registry.Bidders == nil {
		registry.Bidders = make(map[string]*models.BidderRecord)
	}
	return &registry, nil
}

// Save записывает реестр целиком, заменяя файл.
func (r *FileBidderRepository) Save(registry *models.BidderRegistry) error {
	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bidder registry: %w", err)
	}
	return os.WriteFile(r.path, data, 0o644)
}
