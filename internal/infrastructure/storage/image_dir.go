package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidImageRef имя файла выходит за пределы каталога изображений
var ErrInvalidImageRef = errors.New("invalid image reference")

// ImageDir каталог с сохранёнными изображениями образцов
type ImageDir struct {
	root string
}

// NewImageDir создаёт каталог, если его нет
func NewImageDir(root string) (*ImageDir, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &ImageDir{root: root}, nil
}

// NewRef возвращает новое уникальное имя файла
func (d *ImageDir) NewRef() string {
	return "chapa_" + uuid.NewString() + ".jpg"
}

// Write записывает файл через временное имя, чтобы не оставить обрезанный JPEG.
func (d *ImageDir) Write(ref string, data []byte) error {
	path, err := d.path(ref)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(d.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename image: %w", err)
	}
	return nil
}

// Read возвращает содержимое файла
func (d *ImageDir) Read(ref string) ([]byte, error) {
	path, err := d.path(ref)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Remove удаляет файл; отсутствие файла не ошибка
func (d *ImageDir) Remove(ref string) error {
	path, err := d.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (d *ImageDir) path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidImageRef, ref)
	}
	return filepath.Join(d.root, ref), nil
}
