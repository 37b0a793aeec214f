// Package store persists topologies, clients and the message history the
// relay replays to joining editors. It is backed by SQLite with an embedded
// migration set.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ha1tch/netui/pkg/messages"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrUnknownTopology is returned for a topology id with no row.
var ErrUnknownTopology = errors.New("unknown topology")

// Store is a handle on the relay database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the database at path and brings its schema up to date.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, path: path}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies every pending up migration.
func (s *Store) Migrate() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, fmt.Sprintf("sqlite3://%s?_foreign_keys=on", s.path))
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// WithTx runs fn in a transaction, rolling back when it fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Topology is a topology row without its snapshot.
type Topology struct {
	ID          int
	Name        string
	Scale       float64
	PanX, PanY  float64
	DeviceIDSeq int
	LinkIDSeq   int
	GroupIDSeq  int
	StreamIDSeq int
}

// Message returns t as the Topology message sent to joining editors.
func (t Topology) Message() *messages.Topology {
	return &messages.Topology{
		TopologyID:  t.ID,
		Name:        t.Name,
		PanX:        t.PanX,
		PanY:        t.PanY,
		Scale:       t.Scale,
		DeviceIDSeq: t.DeviceIDSeq,
		LinkIDSeq:   t.LinkIDSeq,
		GroupIDSeq:  t.GroupIDSeq,
		StreamIDSeq: t.StreamIDSeq,
	}
}

// CreateTopology adds an empty topology at scale 1.
func (s *Store) CreateTopology(ctx context.Context, name string) (Topology, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO topology(name) VALUES(?)`, name)
	if err != nil {
		return Topology{}, fmt.Errorf("create topology: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Topology{}, err
	}
	return Topology{ID: int(id), Name: name, Scale: 1}, nil
}

// GetTopology loads a topology row.
func (s *Store) GetTopology(ctx context.Context, id int) (Topology, error) {
	t := Topology{ID: id}
	err := s.db.QueryRowContext(ctx, `
	SELECT name, scale, pan_x, pan_y, device_id_seq, link_id_seq, group_id_seq, stream_id_seq
	FROM topology WHERE topology_id = ?`, id).
		Scan(&t.Name, &t.Scale, &t.PanX, &t.PanY, &t.DeviceIDSeq, &t.LinkIDSeq, &t.GroupIDSeq, &t.StreamIDSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return Topology{}, fmt.Errorf("topology %d: %w", id, ErrUnknownTopology)
	}
	if err != nil {
		return Topology{}, fmt.Errorf("get topology %d: %w", id, err)
	}
	return t, nil
}

// ListTopologies returns every topology, newest first.
func (s *Store) ListTopologies(ctx context.Context) ([]Topology, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT topology_id, name, scale, pan_x, pan_y, device_id_seq, link_id_seq, group_id_seq, stream_id_seq
	FROM topology ORDER BY topology_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Topology
	for rows.Next() {
		var t Topology
		if err := rows.Scan(&t.ID, &t.Name, &t.Scale, &t.PanX, &t.PanY,
			&t.DeviceIDSeq, &t.LinkIDSeq, &t.GroupIDSeq, &t.StreamIDSeq); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveSnapshot stores the topology's viewport, id sequences and full state
// in one transaction.
func (s *Store) SaveSnapshot(ctx context.Context, info *messages.Topology, snap *messages.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
		UPDATE topology SET scale = ?, pan_x = ?, pan_y = ?,
		 device_id_seq = ?, link_id_seq = ?, group_id_seq = ?, stream_id_seq = ?,
		 snapshot = ?, updated_at = CURRENT_TIMESTAMP
		WHERE topology_id = ?`,
			info.Scale, info.PanX, info.PanY,
			info.DeviceIDSeq, info.LinkIDSeq, info.GroupIDSeq, info.StreamIDSeq,
			string(data), info.TopologyID)
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("topology %d: %w", info.TopologyID, ErrUnknownTopology)
		}
		return nil
	})
}

// LoadSnapshot returns the stored state of a topology, or an empty
// snapshot when none has been saved yet.
func (s *Store) LoadSnapshot(ctx context.Context, topologyID int) (*messages.Snapshot, error) {
	var data sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM topology WHERE topology_id = ?`, topologyID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("topology %d: %w", topologyID, ErrUnknownTopology)
	}
	if err != nil {
		return nil, err
	}
	snap := &messages.Snapshot{TopologyID: topologyID}
	if !data.Valid || data.String == "" {
		return snap, nil
	}
	if err := json.Unmarshal([]byte(data.String), snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", topologyID, err)
	}
	snap.TopologyID = topologyID
	return snap, nil
}

// CreateClient allocates a client id for a new connection.
func (s *Store) CreateClient(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO client(connection_id) VALUES(?)`, uuid.NewString())
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	id, err := res.LastInsertId()
	return int(id), err
}
