package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/curesight/client-go/internal/models"
	"github.com/curesight/client-go/pkg/logger"
)

// Store keeps a local trail of the submissions this client made and the
// verdicts it received. The backend keeps the authoritative log; this one
// exists so a kiosk can show its own recent activity offline.
type Store struct {
	db *sql.DB
}

type Submission struct {
	ID             string
	Modality       models.InputType
	SymptomText    string
	Language       string
	Category       string
	Severity       string
	Recommendation string
	Reason         string
	CreatedAt      time.Time
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("History store initialized", zap.String("path", dbPath))

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		modality TEXT NOT NULL,
		symptom_text TEXT,
		language TEXT NOT NULL,
		category TEXT NOT NULL,
		severity TEXT NOT NULL,
		recommendation TEXT NOT NULL,
		reason TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (s *Store) Record(ctx context.Context, modality models.InputType, symptoms, lang string, result *models.AnalysisResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, modality, symptom_text, language, category, severity, recommendation, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(),
		string(modality),
		symptoms,
		lang,
		result.Category,
		result.Severity,
		result.Recommendation,
		result.Reason,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// Recent returns up to n submissions, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, modality, symptom_text, language, category, severity, recommendation, reason, created_at
		 FROM submissions ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var sub Submission
		var modality string
		var createdAt int64
		if err := rows.Scan(&sub.ID, &modality, &sub.SymptomText, &sub.Language,
			&sub.Category, &sub.Severity, &sub.Recommendation, &sub.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		sub.Modality = models.InputType(modality)
		sub.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}
	return out, nil
}
