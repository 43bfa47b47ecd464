package meta

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"gopkg.in/yaml.v3"
)

// Service loads YAML or JSON documents from any afs supported location
type Service struct {
	fs afs.Service
}

// New creates a meta service
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}

// Load downloads URL, expands ${env.KEY} expressions and decodes it into target
func (s *Service) Load(ctx context.Context, URL string, target interface{}, options ...storage.Option) error {
	data, err := s.fs.DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return fmt.Errorf("failed to download %v: %w", URL, err)
	}
	if err = yaml.Unmarshal([]byte(ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("failed to decode %v: %w", URL, err)
	}
	return nil
}
