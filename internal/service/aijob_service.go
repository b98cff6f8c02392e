package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/smd-api/internal/dto"
	appErrors "github.com/noah-isme/smd-api/pkg/errors"
	"github.com/noah-isme/smd-api/pkg/jobs"
)

// AI task types routed through the dispatch queue.
const (
	aiTaskSemanticDiff = "semantic-diff"
	aiTaskSummary      = "summarize"
	aiTaskCLOPLOCheck  = "check-clo-plo"
	aiTaskOCR          = "ocr"
)

type aiTaskPayload struct {
	TaskID string      `json:"task_id"`
	Body   interface{} `json:"body"`
}

// AIJobService hands syllabus analysis work to the external AI service.
// Dispatch is fire-and-forget: the caller gets a task id immediately and
// polls the AI service for results.
type AIJobService struct {
	queue      *jobs.Queue
	client     *http.Client
	serviceURL string
	logger     *zap.Logger
}

// NewAIJobService constructs the service and its dispatch queue. Call
// Start before enqueueing and Stop on shutdown.
func NewAIJobService(serviceURL string, client *http.Client, cfg jobs.QueueConfig, logger *zap.Logger) *AIJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	s := &AIJobService{client: client, serviceURL: serviceURL, logger: logger}
	s.queue = jobs.NewQueue("ai-dispatch", s.dispatch, cfg)
	return s
}

// Start launches the dispatch workers.
func (s *AIJobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains and stops the dispatch workers.
func (s *AIJobService) Stop() {
	s.queue.Stop()
}

// SemanticDiff queues a comparison between two syllabi.
func (s *AIJobService) SemanticDiff(req dto.SemanticDiffRequest) (*dto.AITaskResponse, error) {
	return s.enqueue(aiTaskSemanticDiff, req)
}

// Summary queues a syllabus summarization task.
func (s *AIJobService) Summary(req dto.SummaryRequest) (*dto.AITaskResponse, error) {
	return s.enqueue(aiTaskSummary, req)
}

// CLOPLOCheck queues an outcome alignment check.
func (s *AIJobService) CLOPLOCheck(req dto.CLOPLOCheckRequest) (*dto.AITaskResponse, error) {
	return s.enqueue(aiTaskCLOPLOCheck, req)
}

// OCR queues a document text extraction task.
func (s *AIJobService) OCR(req dto.OCRRequest) (*dto.AITaskResponse, error) {
	return s.enqueue(aiTaskOCR, req)
}

func (s *AIJobService) enqueue(taskType string, body interface{}) (*dto.AITaskResponse, error) {
	taskID := uuid.NewString()
	err := s.queue.Enqueue(jobs.Job{
		ID:      taskID,
		Type:    taskType,
		Payload: aiTaskPayload{TaskID: taskID, Body: body},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue AI task")
	}
	return &dto.AITaskResponse{TaskID: taskID}, nil
}

func (s *AIJobService) dispatch(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(aiTaskPayload)
	if !ok {
		s.logger.Error("unexpected AI job payload", zap.String("job_id", job.ID))
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode AI task", zap.String("task_id", payload.TaskID), zap.Error(err))
		return nil
	}

	url := fmt.Sprintf("%s/api/v1/%s", s.serviceURL, job.Type)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build AI request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch AI task %s: %w", payload.TaskID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("AI service rejected task %s: status %d", payload.TaskID, resp.StatusCode)
	}

	s.logger.Info("AI task dispatched",
		zap.String("task_id", payload.TaskID),
		zap.String("type", job.Type))
	return nil
}
