package journal

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"sprintline/internal/engine"
	"sprintline/internal/game"
)

// Report summarizes one session's determinism check.
type Report struct {
	SessionID   int64  `json:"session_id"`
	Slot        int64  `json:"slot"`
	Users       int    `json:"users"`
	Requests    int    `json:"requests"`
	Committed   int    `json:"committed"`
	Match       bool   `json:"match"`
	StateDigest string `json:"state_digest"`
}

// Rebuild reconstructs a session's game by re-submitting its journaled
// history in arrival order. Rule rejections during rebuild are expected;
// they were rejections the first time too. A consistency error is not.
func (j *Journal) Rebuild(ctx context.Context, sessionID int64, log *slog.Logger) (*engine.Game, error) {
	joins, err := j.Joins(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	reqs, err := j.Requests(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	g := engine.NewGame(log)
	for _, join := range joins {
		if err := g.Join(join.User, join.Tokens); err != nil {
			return nil, fmt.Errorf("rebuild session %d: join user %d: %w", sessionID, join.User.ID, err)
		}
	}
	for _, req := range reqs {
		if _, err := g.Submit(req); err != nil {
			return nil, fmt.Errorf("rebuild session %d: request %d: %w", sessionID, req.RequestID, err)
		}
	}
	return g, nil
}

// Verify rebuilds the session twice and compares the resulting worlds
// byte for byte. A mismatch means some rule broke the determinism
// contract between the two rebuilds.
func (j *Journal) Verify(ctx context.Context, sessionID int64, log *slog.Logger) (Report, error) {
	first, err := j.Rebuild(ctx, sessionID, log)
	if err != nil {
		return Report{}, err
	}
	second, err := j.Rebuild(ctx, sessionID, log)
	if err != nil {
		return Report{}, err
	}

	a, err := json.Marshal(game.TakeSnapshot(first.State()))
	if err != nil {
		return Report{}, fmt.Errorf("verify session %d: %w", sessionID, err)
	}
	b, err := json.Marshal(game.TakeSnapshot(second.State()))
	if err != nil {
		return Report{}, fmt.Errorf("verify session %d: %w", sessionID, err)
	}

	reqs, err := j.Requests(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	joins, err := j.Joins(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	slot, err := j.Slot(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}

	digest := sha256.Sum256(a)
	return Report{
		SessionID:   sessionID,
		Slot:        slot,
		Users:       len(joins),
		Requests:    len(reqs),
		Committed:   len(first.Timeline()),
		Match:       bytes.Equal(a, b),
		StateDigest: hex.EncodeToString(digest[:]),
	}, nil
}
