package workflows

import (
	"context"
	"errors"
	"testing"

	"medrag/internal/activities"
	"medrag/internal/config"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	tclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerDocumentActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "ComputeDocIDActivity", func(context.Context, activities.ComputeDocIDInput) (activities.ComputeDocIDOutput, error) {
		return activities.ComputeDocIDOutput{}, nil
	})
	registerActivityName(env, "UpdateDocumentStatusActivity", func(context.Context, activities.UpdateDocumentStatusInput) error { return nil })
	registerActivityName(env, "ExtractTextActivity", func(context.Context, activities.ExtractTextInput) (activities.ExtractTextOutput, error) {
		return activities.ExtractTextOutput{}, nil
	})
	registerActivityName(env, "ChunkDocumentActivity", func(context.Context, activities.ChunkDocumentInput) (activities.ChunkDocumentOutput, error) {
		return activities.ChunkDocumentOutput{}, nil
	})
	registerActivityName(env, "UpsertChunksActivity", func(context.Context, activities.UpsertChunksInput) error { return nil })
}

func TestDocumentIngestWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerDocumentActivities(env)

	chunks := []activities.ChunkItem{{ChunkID: "c1", DocID: "doc123", Title: "Asthma", Section: "Treatment", Content: "Inhalers."}}
	env.OnActivity("ComputeDocIDActivity", mock.Anything, activities.ComputeDocIDInput{Path: "/in/asthma.md"}).Return(activities.ComputeDocIDOutput{DocID: "doc123"}, nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, activities.ExtractTextInput{Path: "/in/asthma.md"}).Return(activities.ExtractTextOutput{Text: "# Asthma\nTreatment\nInhalers."}, nil)
	env.OnActivity("ChunkDocumentActivity", mock.Anything, mock.Anything).Return(activities.ChunkDocumentOutput{Title: "Asthma", Sections: []string{"Treatment"}, Chunks: chunks}, nil)
	env.OnActivity("UpsertChunksActivity", mock.Anything, activities.UpsertChunksInput{DocID: "doc123", Chunks: chunks}).Return(nil)

	var finalStatus activities.UpdateDocumentStatusInput
	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(func(_ context.Context, in activities.UpdateDocumentStatusInput) error {
		finalStatus = in
		return nil
	})

	env.ExecuteWorkflow(DocumentIngestWorkflow, DocumentIngestInput{RunID: "r1", Path: "/in/asthma.md"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "processed", out)
	require.Equal(t, "processed", finalStatus.Status)
	require.Equal(t, 1, finalStatus.ChunkCount)
	require.Equal(t, "Asthma", finalStatus.Title)
	require.Equal(t, "asthma.md", finalStatus.Filename)
}

func TestDocumentIngestWorkflowNoTextFailsGracefully(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("ComputeDocIDActivity", mock.Anything, mock.Anything).Return(activities.ComputeDocIDOutput{DocID: "doc123"}, nil)
	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)
	noText := errors.New("no extractable text found in document")
	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).Return(activities.ExtractTextOutput{}, temporal.NewNonRetryableApplicationError(noText.Error(), activities.ErrTypeNoText, noText))

	env.ExecuteWorkflow(DocumentIngestWorkflow, DocumentIngestInput{RunID: "r1", Path: "/in/scan.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
	env.AssertNotCalled(t, "UpsertChunksActivity", mock.Anything, mock.Anything)
}

func TestCorpusIngestWorkflowCountsChildOutcomes(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(CorpusIngestWorkflow)
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerActivityName(env, "ListSourcesActivity", func(context.Context, activities.ListSourcesInput) (activities.ListSourcesOutput, error) {
		return activities.ListSourcesOutput{}, nil
	})
	registerActivityName(env, "WriteIngestSummaryActivity", func(context.Context, activities.WriteIngestSummaryInput) (activities.WriteIngestSummaryOutput, error) {
		return activities.WriteIngestSummaryOutput{}, nil
	})

	env.OnActivity("ListSourcesActivity", mock.Anything, activities.ListSourcesInput{InputDir: "/in"}).Return(activities.ListSourcesOutput{Paths: []string{"/in/a.md", "/in/b.pdf", "/in/c.txt"}}, nil)
	env.OnWorkflow(DocumentIngestWorkflow, mock.Anything, mock.Anything).Return(func(_ workflow.Context, in DocumentIngestInput) (string, error) {
		if in.Path == "/in/b.pdf" {
			return "failed", nil
		}
		return "processed", nil
	})

	var summary map[string]any
	env.OnActivity("WriteIngestSummaryActivity", mock.Anything, mock.Anything).Return(func(_ context.Context, in activities.WriteIngestSummaryInput) (activities.WriteIngestSummaryOutput, error) {
		summary = in.Summary
		return activities.WriteIngestSummaryOutput{Path: "/out/runs/r1/ingest_summary.json"}, nil
	})

	env.ExecuteWorkflow(CorpusIngestWorkflow, CorpusIngestInput{RunID: "r1", InputDir: "/in", MaxConcurrentChildren: 2})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "completed", out)

	res, err := env.QueryWorkflow(QueryGetProgress)
	require.NoError(t, err)
	var progress CorpusIngestProgress
	require.NoError(t, res.Get(&progress))
	require.Equal(t, 3, progress.Total)
	require.Equal(t, 3, progress.Done)
	require.Equal(t, 1, progress.Failed)
	require.Equal(t, map[string]string{"a.md": "processed", "b.pdf": "failed", "c.txt": "processed"}, progress.PerDocument)
	require.Equal(t, "doc-r1-a-md", progress.ChildWorkflow["a.md"])
	require.Equal(t, "r1", summary["run_id"])
}

func TestStarterStartsIngestUnderDataRoot(t *testing.T) {
	c := &mocks.Client{}
	cfg := config.Config{DataInRoot: "/data/in", TemporalTaskQueue: "medrag", ChunkSize: 1500, ChunkOverlap: 150, IngestWorkers: 4}
	c.On("ExecuteWorkflow", mock.Anything,
		mock.MatchedBy(func(o tclient.StartWorkflowOptions) bool { return o.TaskQueue == "medrag" && len(o.ID) > len("ingest-") }),
		mock.Anything,
		mock.MatchedBy(func(in CorpusIngestInput) bool {
			return in.InputDir == "/data/in/medline" && in.MaxConcurrentChildren == 4 && in.RunID != ""
		}),
	).Return(&mocks.WorkflowRun{}, nil).Once()

	runID, err := NewStarter(c, cfg).StartIngest(context.Background(), "../../medline")
	require.NoError(t, err)
	require.NotEmpty(t, runID)
	c.AssertExpectations(t)
}

func TestStarterWrapsClientError(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))

	_, err := NewStarter(c, config.Config{DataInRoot: "/data/in"}).StartIngest(context.Background(), "")
	require.ErrorContains(t, err, "start ingest workflow")
}
