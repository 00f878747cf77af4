package persist

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/matzehuels/nodecanvas/pkg/db"
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

const sqlSchema = `
	CREATE TABLE IF NOT EXISTS diagrams (
		name TEXT PRIMARY KEY,
		revision TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS diagram_revisions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS diagram_revisions_name ON diagram_revisions (name, id);`

// Revision is one stored version of a diagram.
type Revision struct {
	ID        string
	CreatedAt time.Time
}

// SQLSink stores diagrams through a [db.Service]. Every save appends a
// revision with a ULID id, so ids sort by creation time, and moves the
// diagram's head to it in the same transaction.
type SQLSink struct {
	svc db.Service
}

// NewSQLSink creates the tables if needed and returns a sink over svc. The
// sink closes svc on Close.
func NewSQLSink(ctx context.Context, svc db.Service) (*SQLSink, error) {
	if _, err := svc.Exec(ctx, sqlSchema); err != nil {
		return nil, storageErr(err, "create schema")
	}
	return &SQLSink{svc: svc}, nil
}

// Name implements [Sink].
func (s *SQLSink) Name() string { return "sql" }

// Save implements [Sink].
func (s *SQLSink) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	rev := ulid.Make().String()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := s.svc.Transaction(ctx, func(q db.Querier) error {
		if _, err := q.Exec(ctx,
			`INSERT INTO diagram_revisions (id, name, data, created_at) VALUES (?, ?, ?, ?)`,
			rev, name, string(data), now,
		); err != nil {
			return err
		}
		_, err := q.Exec(ctx,
			`INSERT INTO diagrams (name, revision, updated_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET
				revision = excluded.revision,
				updated_at = excluded.updated_at`,
			name, rev, now,
		)
		return err
	})
	if err != nil {
		return storageErr(err, "save %s", name)
	}
	return nil
}

// Load implements [Sink]. It returns the head revision.
func (s *SQLSink) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	rows, err := s.svc.Query(ctx,
		`SELECT r.data AS data FROM diagrams d
		 JOIN diagram_revisions r ON r.id = d.revision
		 WHERE d.name = ?`, name)
	if err != nil {
		return nil, storageErr(err, "load %s", name)
	}
	if len(rows) == 0 {
		return nil, notFound(name)
	}
	return []byte(rows[0].String("data")), nil
}

// LoadRevision returns a specific revision of name.
func (s *SQLSink) LoadRevision(ctx context.Context, name, rev string) ([]byte, error) {
	rows, err := s.svc.Query(ctx,
		`SELECT data FROM diagram_revisions WHERE name = ? AND id = ?`, name, rev)
	if err != nil {
		return nil, storageErr(err, "load %s@%s", name, rev)
	}
	if len(rows) == 0 {
		return nil, notFound(name + "@" + rev)
	}
	return []byte(rows[0].String("data")), nil
}

// Revisions lists the revisions of name, oldest first.
func (s *SQLSink) Revisions(ctx context.Context, name string) ([]Revision, error) {
	rows, err := s.svc.Query(ctx,
		`SELECT id FROM diagram_revisions WHERE name = ? ORDER BY id`, name)
	if err != nil {
		return nil, storageErr(err, "revisions %s", name)
	}
	out := make([]Revision, 0, len(rows))
	for _, r := range rows {
		id, err := ulid.Parse(r.String("id"))
		if err != nil {
			return nil, storageErr(err, "revision id %q", r.String("id"))
		}
		out = append(out, Revision{ID: id.String(), CreatedAt: ulid.Time(id.Time())})
	}
	return out, nil
}

// Delete implements [Sink]. It removes the diagram and all its revisions.
func (s *SQLSink) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	err := s.svc.Transaction(ctx, func(q db.Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM diagram_revisions WHERE name = ?`, name); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `DELETE FROM diagrams WHERE name = ?`, name)
		return err
	})
	if err != nil {
		return storageErr(err, "delete %s", name)
	}
	return nil
}

// List implements [Sink].
func (s *SQLSink) List(ctx context.Context) ([]string, error) {
	rows, err := s.svc.Query(ctx, `SELECT name FROM diagrams ORDER BY name`)
	if err != nil {
		return nil, storageErr(err, "list")
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.String("name"))
	}
	return names, nil
}

// Close closes the underlying service.
func (s *SQLSink) Close() error { return s.svc.Close() }

var _ Sink = (*SQLSink)(nil)
