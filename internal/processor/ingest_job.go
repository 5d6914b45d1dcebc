// Package processor bridges queued payloads to the ingestion engine.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fraglog/internal/ingest"
	"fraglog/internal/logging"
)

// JobPayload is the JSON envelope for a queued log document. Bare text
// payloads are accepted as the document itself.
type JobPayload struct {
	Document string `json:"document"`
}

// LogProcessor handles log-document jobs from the queue.
type LogProcessor struct {
	ctx      context.Context
	ingestor *ingest.Ingestor
}

// NewLogProcessor creates a processor bound to the service context.
func NewLogProcessor(ctx context.Context, ingestor *ingest.Ingestor) *LogProcessor {
	return &LogProcessor{ctx: ctx, ingestor: ingestor}
}

// Handle processes a single queued document.
func (p *LogProcessor) Handle(payload []byte) error {
	logger := logging.Logger()
	start := time.Now()

	var job JobPayload
	if err := json.Unmarshal(payload, &job); err != nil || job.Document == "" {
		job.Document = string(payload)
	}

	if err := p.ingestor.Ingest(p.ctx, job.Document); err != nil {
		return fmt.Errorf("ingest document: %w", err)
	}

	logger.Infof("ingest job completed in %v", time.Since(start))
	return nil
}
