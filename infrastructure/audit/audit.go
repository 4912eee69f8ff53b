package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"

	"adminconsole/infrastructure/sqlite"
	"adminconsole/models"
)

// Entity types recorded in the journal.
const (
	EntityUser    = "users"
	EntityProject = "projects"
)

// Entry is one console mutation accepted by the backend.
type Entry struct {
	OperatorID int64
	Action     string
	EntityType string
	EntityID   int64
	Before     any
	After      any
	Message    string
}

// Service writes journal rows.
type Service struct {
	db *sqlite.DB
}

func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Write inserts e inside the caller's transaction.
func (s *Service) Write(ctx context.Context, tx bun.Tx, e Entry) error {
	beforeJSON, err := marshal(e.Before)
	if err != nil {
		return fmt.Errorf("marshal before: %w", err)
	}
	afterJSON, err := marshal(e.After)
	if err != nil {
		return fmt.Errorf("marshal after: %w", err)
	}
	row := &models.AuditLog{
		OperatorID: e.OperatorID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   strconv.FormatInt(e.EntityID, 10),
		RequestID:  middleware.GetReqID(ctx),
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
		Message:    e.Message,
	}
	_, err = tx.NewInsert().Model(row).Exec(ctx)
	return err
}

// Record writes e in its own transaction. Entries without an operator are
// skipped.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil || e.OperatorID <= 0 {
		return nil
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return s.Write(ctx, tx, e)
	})
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
