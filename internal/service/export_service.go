package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"
	"liftlog/workout-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	ErrExportUploadFailed      = errors.New("failed to upload export")
)

const exportLogLimit = 1000

// ExportResult describes an uploaded dump of the user's training history.
type ExportResult struct {
	ObjectKey   string `json:"objectKey"`
	DownloadURL string `json:"downloadUrl"`
	ContentType string `json:"contentType"`
	LogCount    int    `json:"logCount"`
}

// ExportService dumps a user's logs and sets to object storage and returns a
// short-lived download URL.
type ExportService interface {
	ExportLogs(ctx context.Context, userID primitive.ObjectID, format string) (*ExportResult, error)
}

// exportService implements the ExportService interface.
type exportService struct {
	logRepo     repository.WorkoutLogRepository
	fileStorage storage.FileStorage
}

// NewExportService creates a new instance of exportService.
func NewExportService(logRepo repository.WorkoutLogRepository, fileStorage storage.FileStorage) ExportService {
	return &exportService{
		logRepo:     logRepo,
		fileStorage: fileStorage,
	}
}

// exportedLog is the JSON dump shape: a log with its sets nested.
type exportedLog struct {
	LogID       string        `json:"logId"`
	PlanID      *string       `json:"planId,omitempty"`
	SessionID   *string       `json:"generatedSessionId,omitempty"`
	PerformedAt time.Time     `json:"performedAt"`
	Notes       string        `json:"notes,omitempty"`
	Sets        []exportedSet `json:"sets"`
}

type exportedSet struct {
	ExerciseName string   `json:"exerciseName"`
	SetNumber    int      `json:"setNumber"`
	Reps         int      `json:"reps"`
	WeightKg     *float64 `json:"weightKg,omitempty"`
	RPE          *float64 `json:"rpe,omitempty"`
}

// ExportLogs builds the dump in the requested format, uploads it under a
// unique key, and presigns a download URL.
func (s *exportService) ExportLogs(ctx context.Context, userID primitive.ObjectID, format string) (*ExportResult, error) {
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return nil, ErrUnsupportedExportFormat
	}

	logs, err := s.logRepo.ListByUser(ctx, userID, exportLogLimit)
	if err != nil {
		return nil, err
	}

	var body []byte
	var contentType string
	switch format {
	case "json":
		body, err = s.renderJSON(ctx, logs)
		contentType = "application/json"
	case "csv":
		body, err = s.renderCSV(ctx, logs)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("exports/%s/%s-logs.%s", userID.Hex(), uuid.NewString(), format)
	if err := s.fileStorage.UploadObject(ctx, objectKey, contentType, bytes.NewReader(body)); err != nil {
		return nil, ErrExportUploadFailed
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		ObjectKey:   objectKey,
		DownloadURL: downloadURL,
		ContentType: contentType,
		LogCount:    len(logs),
	}, nil
}

func (s *exportService) renderJSON(ctx context.Context, logs []domain.WorkoutLog) ([]byte, error) {
	out := make([]exportedLog, 0, len(logs))
	for _, l := range logs {
		sets, err := s.logRepo.GetSetsByLog(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		entry := exportedLog{
			LogID:       l.ID.Hex(),
			PerformedAt: l.PerformedAt,
			Notes:       l.Notes,
			Sets:        make([]exportedSet, len(sets)),
		}
		if l.PlanID != nil {
			hex := l.PlanID.Hex()
			entry.PlanID = &hex
		}
		if l.GeneratedSessionID != nil {
			hex := l.GeneratedSessionID.Hex()
			entry.SessionID = &hex
		}
		for i, set := range sets {
			entry.Sets[i] = exportedSet{
				ExerciseName: set.ExerciseName,
				SetNumber:    set.SetNumber,
				Reps:         set.Reps,
				WeightKg:     set.WeightKg,
				RPE:          set.RPE,
			}
		}
		out = append(out, entry)
	}
	return json.MarshalIndent(out, "", "  ")
}

func (s *exportService) renderCSV(ctx context.Context, logs []domain.WorkoutLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"logId", "performedAt", "exerciseName", "setNumber", "reps", "weightKg", "rpe"}); err != nil {
		return nil, err
	}
	for _, l := range logs {
		sets, err := s.logRepo.GetSetsByLog(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		for _, set := range sets {
			row := []string{
				l.ID.Hex(),
				l.PerformedAt.UTC().Format(time.RFC3339),
				set.ExerciseName,
				strconv.Itoa(set.SetNumber),
				strconv.Itoa(set.Reps),
				"",
				"",
			}
			if set.WeightKg != nil {
				row[5] = strconv.FormatFloat(*set.WeightKg, 'f', 1, 64)
			}
			if set.RPE != nil {
				row[6] = strconv.FormatFloat(*set.RPE, 'f', 1, 64)
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
