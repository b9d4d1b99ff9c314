// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package recallit

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/ai/openai"
	"github.com/poiesic/recallit/ingestion"
	"github.com/poiesic/recallit/search"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/storage/badger"
	"github.com/poiesic/recallit/transcript"
)

// Service bundles a vector index with an AI provider and hands out
// ingestion pipelines and query engines wired to both.
type Service struct {
	index    storage.VectorIndex
	provider ai.AIProvider
	aiConfig *ai.Config
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig *ai.Config
	index    storage.VectorIndex
	provider ai.AIProvider
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithIndex supplies a pre-opened vector index instead of the default
// BadgerDB index at the service path. The caller keeps ownership of
// indexes it supplies here only until Close.
func WithIndex(index storage.VectorIndex) ServiceOption {
	return func(o *serviceOptions) {
		o.index = index
	}
}

// WithProvider supplies a pre-built AI provider, primarily for tests.
func WithProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// NewService opens (or creates) the service's vector index at filePath
// and connects the AI provider. Pass WithIndex to ignore filePath and
// use another backend.
func NewService(filePath string, opts ...ServiceOption) (*Service, error) {
	// Apply options
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	index := options.index
	if index == nil {
		var err error
		index, err = badger.NewIndex(filePath)
		if err != nil {
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			index.Close()
			return nil, err
		}
	}

	return &Service{
		index:    index,
		provider: provider,
		aiConfig: options.aiConfig,
		logger:   slog.Default(),
	}, nil
}

func (s *Service) Close() error {
	// Close AI provider first
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.index.Close(); err != nil {
		s.logger.Error("error closing vector index", "err", err)
		return err
	}
	return nil
}

// Index returns the underlying vector index.
func (s *Service) Index() storage.VectorIndex {
	return s.index
}

// ModelInfo describes the embedding model the service is configured with.
func (s *Service) ModelInfo() storage.ModelInfo {
	return storage.ModelInfo{
		Model:      s.aiConfig.EmbeddingModel,
		Dimensions: s.aiConfig.EmbeddingDimensions,
	}
}

// NewIngestionPipeline creates a pipeline writing into the service's
// index, pinned to the configured embedding model.
func (s *Service) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithModelInfo(s.ModelInfo())}, opts...)
	return ingestion.NewPipeline(s.index, s.provider, opts...)
}

// NewEngine creates a query engine over the service's index, verifying
// the configured embedding model on every query.
func (s *Service) NewEngine(opts ...search.Option) (*search.Engine, error) {
	opts = append([]search.Option{search.WithExpectedModel(s.ModelInfo())}, opts...)
	return search.NewEngine(s.index, s.provider, opts...)
}

// IngestDocument parses a chat export document and ingests every
// transcript in it. Reports are returned in document order; a parse
// failure aborts before anything is written.
func (s *Service) IngestDocument(ctx context.Context, r io.Reader, opts ...ingestion.Option) ([]*ingestion.Report, error) {
	transcripts, err := transcript.Parse(r)
	if err != nil {
		return nil, err
	}

	pipeline, err := s.NewIngestionPipeline(opts...)
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()

	reports := make([]*ingestion.Report, 0, len(transcripts))
	for _, t := range transcripts {
		report, err := pipeline.IngestTranscript(ctx, t)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}
