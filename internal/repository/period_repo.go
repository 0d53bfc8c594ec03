package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/senyabanana/banner-auction/internal/models"
)

// ErrCorrupted сигнализирует о нечитаемом файле состояния. Восстановление не выполняется.
var ErrCorrupted = errors.New("state file is corrupted")

// PeriodRepository - интерфейс для работы с текущим аукционным периодом.
type PeriodRepository interface {
	Load() (*models.BiddingPeriod, error)
	Save(period *models.BiddingPeriod) error
	Reset() error
}

// FilePeriodRepository - реализация PeriodRepository поверх JSON-файла.
// Файл сам является точкой синхронизации: каждая операция перечитывает его заново.
type FilePeriodRepository struct {
	path string
}

// NewFilePeriodRepository создает новый экземпляр FilePeriodRepository.
func NewFilePeriodRepository(dataDir string) *FilePeriodRepository {
	return &FilePeriodRepository{path: filepath.Join(dataDir, "current-period.json")}
}

// Load читает текущий период.
// Отсутствующий файл и пустое содержимое означают "активного периода нет" (nil, nil).
// Нечитаемый JSON - это ErrCorrupted, его нельзя путать с отсутствием периода.
func (r *FilePeriodRepository) Load() (*models.BiddingPeriod, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read period file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var period models.BiddingPeriod
	if err := json.Unmarshal(data, &period); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return &period, nil
}

// Save записывает период целиком, заменяя файл.
func (r *FilePeriodRepository) Save(period *models.BiddingPeriod) error {
	data, err := json.MarshalIndent(period, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal period: %w", err)
	}
	return os.WriteFile(r.path, data, 0o644)
}

// Reset очищает слот периода, чтобы следующее открытие могло его занять.
func (r *FilePeriodRepository) Reset() error {
	return os.WriteFile(r.path, []byte(""), 0o644)
}
