package feed

import (
	"context"
	"fmt"
	"os"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"gopkg.in/yaml.v3"
)

// fileFeed es el formato del fichero: {listings: [...]}. JSON también vale,
// yaml.v3 lo parsea como YAML.
type fileFeed struct {
	Listings []domain.Listing `yaml:"listings"`
}

// FileProvider implementa ports.ListingProvider leyendo un fichero local.
// Se relee en cada ciclo, así que se puede editar en caliente.
type FileProvider struct {
	path     string
	platform string
}

// NewFileProvider crea un provider para el fichero en path.
func NewFileProvider(path, platform string) *FileProvider {
	return &FileProvider{path: path, platform: platform}
}

// FetchListings lee y normaliza los anuncios del fichero.
func (p *FileProvider) FetchListings(ctx context.Context) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("feed.FileProvider: %w", err)
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("feed.FileProvider: read %q: %w", p.path, err)
	}

	var f fileFeed
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("feed.FileProvider: parse %q: %w", p.path, err)
	}
	return normalize(f.Listings, p.platform), nil
}
