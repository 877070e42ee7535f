package workflows

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"medrag/internal/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryGetDocumentStatus = "GetDocumentStatus"
	QueryGetProgress       = "GetProgress"
)

const (
	statusProcessing = "processing"
	statusProcessed  = "processed"
	statusFailed     = "failed"
	statusQueued     = "queued"
)

func CorpusIngestWorkflow(ctx workflow.Context, input CorpusIngestInput) (string, error) {
	progress := CorpusIngestProgress{
		RunID:         input.RunID,
		PerDocument:   map[string]string{},
		ChildWorkflow: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetProgress, func() (CorpusIngestProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	var listOut activities.ListSourcesOutput
	if err := workflow.ExecuteActivity(ctx, "ListSourcesActivity", activities.ListSourcesInput{InputDir: input.InputDir}).Get(ctx, &listOut); err != nil {
		return "", err
	}
	paths := listOut.Paths
	progress.Total = len(paths)
	maxChildren := input.MaxConcurrentChildren
	if maxChildren <= 0 {
		maxChildren = 3
	}

	for i := 0; i < len(paths); i += maxChildren {
		end := min(i+maxChildren, len(paths))
		futures := make([]workflow.ChildWorkflowFuture, 0, end-i)
		for _, path := range paths[i:end] {
			name := filepath.Base(path)
			progress.PerDocument[name] = statusProcessing
			workflowID := "doc-" + sanitizeID(input.RunID) + "-" + sanitizeID(name)
			childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{WorkflowID: workflowID})
			futures = append(futures, workflow.ExecuteChildWorkflow(childCtx, DocumentIngestWorkflow, DocumentIngestInput{
				RunID:        input.RunID,
				Path:         path,
				ChunkSize:    input.ChunkSize,
				ChunkOverlap: input.ChunkOverlap,
			}))
			progress.ChildWorkflow[name] = workflowID
		}

		for idx, f := range futures {
			name := filepath.Base(paths[i+idx])
			var childStatus string
			if err := f.Get(ctx, &childStatus); err != nil {
				progress.Failed++
				progress.PerDocument[name] = statusFailed
				continue
			}
			if childStatus == statusFailed {
				progress.Failed++
			}
			progress.Done++
			progress.PerDocument[name] = childStatus
		}
	}

	_ = workflow.ExecuteActivity(ctx, "WriteIngestSummaryActivity", activities.WriteIngestSummaryInput{
		RunID: input.RunID,
		Summary: map[string]any{
			"run_id":              input.RunID,
			"input_dir":           input.InputDir,
			"total":               progress.Total,
			"done":                progress.Done,
			"failed":              progress.Failed,
			"per_document_status": progress.PerDocument,
			"generated_at":        workflow.Now(ctx),
		},
	}).Get(ctx, nil)

	return "completed", nil
}

func DocumentIngestWorkflow(ctx workflow.Context, input DocumentIngestInput) (string, error) {
	status := DocumentStatus{
		Path:        input.Path,
		CurrentStep: "init",
		Status:      statusProcessing,
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetDocumentStatus, func() (DocumentStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	filename := filepath.Base(input.Path)

	step := func(name string) {
		status.CurrentStep = name
		status.Steps[name] = statusProcessing
	}
	done := func() {
		status.Steps[status.CurrentStep] = "done"
	}
	fail := func(reason string) (string, error) {
		status.Status = statusFailed
		status.FailReason = reason
		status.Steps[status.CurrentStep] = statusFailed
		_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
			DocID:      status.DocID,
			Filename:   filename,
			Status:     statusFailed,
			FailReason: reason,
		}).Get(ctx, nil)
		return status.Status, nil
	}

	step("compute_doc_id")
	var idOut activities.ComputeDocIDOutput
	if err := workflow.ExecuteActivity(ctx, "ComputeDocIDActivity", activities.ComputeDocIDInput{Path: input.Path}).Get(ctx, &idOut); err != nil {
		return "", err
	}
	status.DocID = idOut.DocID
	done()

	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{DocID: idOut.DocID, Filename: filename, Status: statusQueued}).Get(ctx, nil)

	step("extract_text")
	var textOut activities.ExtractTextOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractTextActivity", activities.ExtractTextInput{Path: input.Path}).Get(ctx, &textOut); err != nil {
		if reason, ok := documentFailure(err); ok {
			return fail(reason)
		}
		return "", err
	}
	done()

	step("chunk_document")
	var chunkOut activities.ChunkDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ChunkDocumentActivity", activities.ChunkDocumentInput{
		DocID:        idOut.DocID,
		Path:         input.Path,
		Text:         textOut.Text,
		ChunkSize:    input.ChunkSize,
		ChunkOverlap: input.ChunkOverlap,
	}).Get(ctx, &chunkOut); err != nil {
		if reason, ok := documentFailure(err); ok {
			return fail(reason)
		}
		return "", err
	}
	status.ChunkCount = len(chunkOut.Chunks)
	done()

	step("upsert_chunks")
	if err := workflow.ExecuteActivity(ctx, "UpsertChunksActivity", activities.UpsertChunksInput{DocID: idOut.DocID, Chunks: chunkOut.Chunks}).Get(ctx, nil); err != nil {
		if isInvalidTextEncodingError(err) {
			return fail("document contains invalid text encoding after extraction")
		}
		return "", err
	}
	done()

	step("mark_processed")
	if err := workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
		DocID:      idOut.DocID,
		Filename:   filename,
		Title:      chunkOut.Title,
		SourceURL:  chunkOut.SourceURL,
		Status:     statusProcessed,
		ChunkCount: len(chunkOut.Chunks),
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	done()
	status.CurrentStep = "done"
	status.Status = statusProcessed
	return status.Status, nil
}

// documentFailure maps terminal per-document errors to a fail reason.
func documentFailure(err error) (string, bool) {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case activities.ErrTypeNoText:
			return "no extractable text found (OCR not enabled)", true
		case activities.ErrTypeUnsupported:
			return "unsupported document format", true
		}
	}
	return "", false
}

func isInvalidTextEncodingError(err error) bool {
	e := strings.ToLower(err.Error())
	return strings.Contains(e, "invalid byte sequence") || strings.Contains(e, "sqlstate 22021")
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}
