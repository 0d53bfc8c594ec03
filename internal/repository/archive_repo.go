package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/senyabanana/banner-auction/internal/models"
)

// ArchiveRepository - интерфейс для неизменяемых снимков закрытых периодов.
type ArchiveRepository interface {
	Save(period *models.BiddingPeriod) error
}

// FileArchiveRepository - реализация ArchiveRepository, один файл на закрытый период.
type FileArchiveRepository struct {
	dir string
}

// NewFileArchiveRepository создает новый экземпляр FileArchiveRepository.
func NewFileArchiveRepository(dataDir string) *FileArchiveRepository {
	return &FileArchiveRepository{dir: filepath.Join(dataDir, "archive")}
}

// Save записывает снимок периода под его стабильным идентификатором.
// В нормальной работе каждое закрытие даёт новый period_id, перезаписи не происходит.
func (r *FileArchiveRepository) Save(period *models.BiddingPeriod) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	data, err := json.MarshalIndent(period, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal archived period: %w", err)
	}
	path := filepath.Join(r.dir, fmt.Sprintf("period-%s.json", period.ID))
	return os.WriteFile(path, data, 0o644)
}
