package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"sprintline/internal/game"
)

// RecordSession inserts a session row and returns its journal id. Journal
// ids are never reused even when allocator slots are, so two lifetimes of
// the same slot keep separate histories.
func (j *Journal) RecordSession(ctx context.Context, slot int64) (int64, error) {
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (slot) VALUES (?)
	`, slot)
	if err != nil {
		return 0, fmt.Errorf("record session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record session: %w", err)
	}
	return id, nil
}

// RecordJoin appends a user registration. Duplicate (session, user) pairs
// are silently ignored for idempotency.
func (j *Journal) RecordJoin(ctx context.Context, sessionID int64, u game.User, tokens int64) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO joins (session_id, user_id, name, authcode, role, tokens)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, user_id) DO NOTHING
	`, sessionID, int64(u.ID), u.Name, u.Authcode, int64(u.Role), tokens)
	if err != nil {
		return fmt.Errorf("record join: %w", err)
	}
	return nil
}

// RecordRequest appends a submitted request in arrival order. Args are
// stored as JSON with sorted keys so two equal requests serialize
// identically. Duplicate (session, request) pairs are silently ignored.
func (j *Journal) RecordRequest(ctx context.Context, sessionID int64, req game.Request) error {
	args := req.Args
	if args == nil {
		args = map[string]int64{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("record request: marshal args: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO requests
		(session_id, request_id, user_id, authcode, target_tick, target, operation, args)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, request_id) DO NOTHING
	`,
		sessionID,
		int64(req.RequestID),
		int64(req.UserID),
		req.Authcode,
		int64(req.TargetTick),
		int64(req.Target),
		req.Op,
		string(argsJSON),
	)
	if err != nil {
		return fmt.Errorf("record request: %w", err)
	}
	return nil
}
