package workflows

import (
	"context"
	"fmt"
	"strings"

	"medrag/internal/config"
	"medrag/internal/util"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

// Starter launches CorpusIngestWorkflow runs on the configured task queue.
type Starter struct {
	client tclient.Client
	cfg    config.Config
}

func NewStarter(c tclient.Client, cfg config.Config) *Starter {
	return &Starter{client: c, cfg: cfg}
}

// StartIngest starts an ingest over dir, resolved inside the data-in root.
// An empty dir ingests the root itself.
func (s *Starter) StartIngest(ctx context.Context, dir string) (string, error) {
	inputDir := s.cfg.DataInRoot
	if d := strings.TrimSpace(dir); d != "" {
		inputDir = util.SafeJoin(s.cfg.DataInRoot, d)
	}
	runID := uuid.NewString()
	_, err := s.client.ExecuteWorkflow(ctx, tclient.StartWorkflowOptions{
		ID:                                       "ingest-" + runID,
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, CorpusIngestWorkflow, CorpusIngestInput{
		RunID:                 runID,
		InputDir:              inputDir,
		MaxConcurrentChildren: s.cfg.IngestWorkers,
		ChunkSize:             s.cfg.ChunkSize,
		ChunkOverlap:          s.cfg.ChunkOverlap,
	})
	if err != nil {
		return "", fmt.Errorf("start ingest workflow: %w", err)
	}
	return runID, nil
}
