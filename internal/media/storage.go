package media

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	myErr "baraholka-main/internal/types/errors"
)

// Storage сохраняет загруженные файлы в локальный медиа-каталог и
// строит публичные URL от базового адреса из конфига
type Storage struct {
	Dir     string
	BaseURL string
	Logger  *zap.SugaredLogger
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func NewStorage(dir, baseURL string, logger *zap.SugaredLogger) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Storage{
		Dir:     dir,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Logger:  logger,
	}, nil
}

// Save записывает файл под уникальным именем и возвращает его публичный URL.
// Уникальное имя исключает перезапись при одновременных загрузках
// файлов с одинаковыми именами
func (s *Storage) Save(filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", myErr.ErrUnsupportedMediaType
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		s.Logger.Errorf("Error creating media file %s: %v", path, err)
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		s.Logger.Errorf("Error writing media file %s: %v", path, err)
		return "", err
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	return s.BaseURL + "/media/" + name, nil
}
