package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"sprintline/internal/game"
)

// Join is one recorded user registration.
type Join struct {
	User   game.User
	Tokens int64
}

// Slot returns the allocator slot a journaled session lived in.
func (j *Journal) Slot(ctx context.Context, sessionID int64) (int64, error) {
	var slot int64
	err := j.db.QueryRowContext(ctx,
		`SELECT slot FROM sessions WHERE id = ?`, sessionID).Scan(&slot)
	if err != nil {
		return 0, fmt.Errorf("read session %d: %w", sessionID, err)
	}
	return slot, nil
}

// Sessions returns every recorded session id in ascending order.
func (j *Journal) Sessions(ctx context.Context) ([]int64, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("read sessions: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	return ids, nil
}

// Joins returns a session's user registrations in arrival order.
func (j *Journal) Joins(ctx context.Context, sessionID int64) ([]Join, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT user_id, name, authcode, role, tokens
		FROM joins WHERE session_id = ? ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read joins: %w", err)
	}
	defer rows.Close()

	var joins []Join
	for rows.Next() {
		var (
			userID, authcode, role, tokens int64
			name                           string
		)
		if err := rows.Scan(&userID, &name, &authcode, &role, &tokens); err != nil {
			return nil, fmt.Errorf("read joins: %w", err)
		}
		joins = append(joins, Join{
			User: game.User{
				ID:       game.UserID(userID),
				Name:     name,
				Authcode: authcode,
				Role:     game.Role(role),
			},
			Tokens: tokens,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read joins: %w", err)
	}
	return joins, nil
}

// Requests returns a session's submissions in arrival order.
func (j *Journal) Requests(ctx context.Context, sessionID int64) ([]game.Request, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT request_id, user_id, authcode, target_tick, target, operation, args
		FROM requests WHERE session_id = ? ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}
	defer rows.Close()

	var reqs []game.Request
	for rows.Next() {
		var (
			requestID, userID, authcode, tick, target int64
			op, argsJSON                              string
		)
		if err := rows.Scan(&requestID, &userID, &authcode, &tick, &target, &op, &argsJSON); err != nil {
			return nil, fmt.Errorf("read requests: %w", err)
		}
		args := map[string]int64{}
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return nil, fmt.Errorf("read requests: decode args for %d: %w", requestID, err)
		}
		if len(args) == 0 {
			args = nil
		}
		reqs = append(reqs, game.Request{
			UserID:     game.UserID(userID),
			Authcode:   authcode,
			RequestID:  game.RequestID(requestID),
			TargetTick: game.Tick(tick),
			Target:     game.ObjectID(target),
			Op:         op,
			Args:       args,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}
	return reqs, nil
}
