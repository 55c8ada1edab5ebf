// Package db provides the persistence layer for the playlist library: a small
// SQLite store of previously generated playlists keyed by an application-level
// user ID. The streaming-provider session is never persisted here; the library
// is plain bookkeeping so users can revisit what was generated for them.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"Feel-The-Beats-Go/pkg/generator"
)

// DB wraps a sql.DB connection and exposes the library helper methods.
type DB struct {
	*sql.DB
}

// New opens the SQLite database located at path, creating the file and schema
// when absent. Callers open a single DB at startup and reuse it.
func New(path string) (*DB, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS library_playlists (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		mood TEXT,
		platform TEXT,
		name TEXT NOT NULL,
		description TEXT,
		payload TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`
	if _, err := d.Exec(schema); err != nil {
		d.Close()
		return nil, fmt.Errorf("init db: %w", err)
	}
	return &DB{d}, nil
}

// SavedPlaylist is one library entry. Playlist carries the full generated
// content including songs and any cover art.
type SavedPlaylist struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Mood      string             `json:"mood,omitempty"`
	Platform  string             `json:"platform,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	Playlist  generator.Playlist `json:"playlist"`
}

// SavePlaylist stores a generated playlist for userID and returns the stored
// record with its new ID.
func (db *DB) SavePlaylist(ctx context.Context, userID, mood, platform string, pl generator.Playlist) (SavedPlaylist, error) {
	payload, err := json.Marshal(pl)
	if err != nil {
		return SavedPlaylist{}, err
	}
	rec := SavedPlaylist{
		ID:        uuid.New().String(),
		UserID:    userID,
		Mood:      mood,
		Platform:  platform,
		CreatedAt: time.Now().UTC(),
		Playlist:  pl,
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO library_playlists(id, user_id, mood, platform, name, description, payload, created_at) VALUES(?,?,?,?,?,?,?,?)`,
		rec.ID, rec.UserID, rec.Mood, rec.Platform, pl.PlaylistName, pl.Description, string(payload), rec.CreatedAt)
	if err != nil {
		return SavedPlaylist{}, err
	}
	return rec, nil
}

// ListPlaylists returns the library entries for userID, newest first.
func (db *DB) ListPlaylists(ctx context.Context, userID string) ([]SavedPlaylist, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, mood, platform, payload, created_at FROM library_playlists WHERE user_id=? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavedPlaylist
	for rows.Next() {
		var rec SavedPlaylist
		var payload string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Mood, &rec.Platform, &payload, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &rec.Playlist); err != nil {
			return nil, fmt.Errorf("corrupt payload for %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeletePlaylist removes the entry owned by userID. sql.ErrNoRows is returned
// when no such entry exists so callers can respond with a 404.
func (db *DB) DeletePlaylist(ctx context.Context, id, userID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM library_playlists WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
