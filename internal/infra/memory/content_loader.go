package memory

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"movie-knowledge-service/internal/domain"
)

//go:embed sample_catalog.yaml
var sampleCatalog []byte

// StaticContentLoader is a loader backed by an in-memory slice (useful for tests/demos).
type StaticContentLoader struct {
	categories []domain.Category
}

func NewStaticContentLoader(categories []domain.Category) *StaticContentLoader {
	return &StaticContentLoader{categories: categories}
}

func (l *StaticContentLoader) LoadCatalog(_ context.Context) ([]domain.Category, error) {
	return l.categories, nil
}

// ContentFile is the YAML layout of a content file.
type ContentFile struct {
	Categories []domain.Category `yaml:"categories"`
}

// ParseContent decodes and validates a YAML content file.
func ParseContent(data []byte) ([]domain.Category, error) {
	var file ContentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := domain.ValidateCategories(file.Categories); err != nil {
		return nil, err
	}
	return file.Categories, nil
}

// SampleContent returns the bundled demo catalog.
func SampleContent() ([]domain.Category, error) {
	return ParseContent(sampleCatalog)
}

// FileContentLoader reads the catalog from a YAML file on every load.
type FileContentLoader struct {
	path string
}

func NewFileContentLoader(path string) *FileContentLoader {
	return &FileContentLoader{path: path}
}

func (l *FileContentLoader) LoadCatalog(_ context.Context) ([]domain.Category, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	return ParseContent(data)
}
