package activity

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"adminconsole/frontend/shared/paging"
	"adminconsole/infrastructure/audit"
	"adminconsole/infrastructure/sqlite"
)

var entityOptions = []EntityOption{
	{Value: "", Label: "Todas"},
	{Value: audit.EntityUser, Label: "Usuarios"},
	{Value: audit.EntityProject, Label: "Proyectos"},
}

// NormalizeEntityType returns t when it is a journaled entity type, else "".
func NormalizeEntityType(t string) string {
	t = strings.TrimSpace(strings.ToLower(t))
	for _, opt := range entityOptions {
		if opt.Value == t {
			return t
		}
	}
	return ""
}

// LoadRows returns one page of the journal, newest first.
func LoadRows(ctx context.Context, db *sqlite.DB, f Filter) (paging.Page[Row], error) {
	var out paging.Page[Row]
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var total int
		if err := tx.NewRaw(`
SELECT COUNT(*) FROM audit_logs al
WHERE (? = '' OR al.entity_type = ?)`, f.EntityType, f.EntityType).Scan(ctx, &total); err != nil {
			return err
		}
		out = paging.Bounds[Row](total, f.Page, f.Size)

		type row struct {
			ID         int64  `bun:"id"`
			CreatedAt  string `bun:"created_at_local"`
			Actor      string `bun:"actor"`
			Action     string `bun:"action"`
			EntityType string `bun:"entity_type"`
			EntityID   string `bun:"entity_id"`
			RequestID  string `bun:"request_id"`
			Message    string `bun:"message"`
			BeforeJSON string `bun:"before_json"`
			AfterJSON  string `bun:"after_json"`
		}
		var raw []row
		if err := tx.NewRaw(`
SELECT
	al.id,
	COALESCE(strftime('%d/%m/%Y %H:%M', al.created_at), '') AS created_at_local,
	COALESCE(o.username, '-') AS actor,
	al.action,
	al.entity_type,
	al.entity_id,
	al.request_id,
	al.message,
	al.before_json,
	al.after_json
FROM audit_logs al
LEFT JOIN operators o ON o.id = al.operator_id
WHERE (? = '' OR al.entity_type = ?)
ORDER BY al.created_at DESC, al.id DESC
LIMIT ? OFFSET ?`,
			f.EntityType, f.EntityType, out.Size, out.Offset(),
		).Scan(ctx, &raw); err != nil {
			return err
		}

		out.Items = make([]Row, 0, len(raw))
		for _, r := range raw {
			out.Items = append(out.Items, Row{
				ID:         r.ID,
				CreatedAt:  strings.TrimSpace(r.CreatedAt),
				Actor:      defaultActor(r.Actor),
				Action:     r.Action,
				EntityType: r.EntityType,
				EntityID:   entityID(r.EntityID),
				RequestID:  r.RequestID,
				Message:    r.Message,
				BeforeJSON: strings.TrimSpace(r.BeforeJSON),
				AfterJSON:  strings.TrimSpace(r.AfterJSON),
			})
		}
		return nil
	})
	if err != nil {
		return paging.Page[Row]{}, err
	}
	return out, nil
}

func defaultActor(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return "-"
	}
	return actor
}

// entityID hides the zero id of creations, whose id the backend does not
// return.
func entityID(id string) string {
	if id == "" || id == "0" {
		return "-"
	}
	return id
}
