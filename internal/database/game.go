// internal/database/game.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/flipseven/internal/models"
)

// Beginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Archive persists finished games and the action log.
type Archive struct {
	db Beginner
}

func NewArchive(db Beginner) *Archive {
	return &Archive{db: db}
}

// RecordGameResults stores the final outcome of a game: the game row plus one
// result row per seated player.
func (a *Archive) RecordGameResults(ctx context.Context, res models.GameResult) error {
	err := pgx.BeginTxFunc(ctx, a.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, end_time, rounds, winner_id)
			VALUES ($1, 'completed', NOW(), $2, $3)
			ON CONFLICT (id) DO UPDATE
			SET status = 'completed', end_time = NOW(), rounds = $2, winner_id = $3
		`
		if _, e := tx.Exec(ctx, upsertGame, res.RoomID, res.Rounds, res.WinnerID); e != nil {
			return e
		}

		q := `
			INSERT INTO game_results (game_id, player_id, player_name, seat, score, did_win)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (game_id, player_id)
			DO UPDATE SET score = $5, did_win = $6
		`
		for seat, pl := range res.Players {
			if _, e := tx.Exec(ctx, q, res.RoomID, pl.ID, pl.Name, seat, res.Scores[pl.ID], pl.ID == res.WinnerID); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}

var actionColumns = []string{"game_id", "action_index", "actor_id", "action_type", "action_payload", "created_at"}

// InsertGameActions writes a batch of actions in one transaction. Game rows are
// upserted first and a game_end action marks its game completed.
func (a *Archive) InsertGameActions(ctx context.Context, actions []models.GameAction) error {
	if len(actions) == 0 {
		return nil
	}
	rooms, ended := roomsOf(actions)

	err := pgx.BeginTxFunc(ctx, a.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, start_time)
			VALUES ($1, 'in_progress', NOW())
			ON CONFLICT (id) DO NOTHING
		`
		for _, id := range rooms {
			if _, e := tx.Exec(ctx, upsertGame, id); e != nil {
				return e
			}
		}

		if _, e := tx.CopyFrom(ctx, pgx.Identifier{"game_actions"}, actionColumns, pgx.CopyFromRows(actionRows(actions))); e != nil {
			return fmt.Errorf("copy game_actions: %w", e)
		}

		finalize := `
			UPDATE games
			SET status = 'completed', end_time = COALESCE(end_time, NOW())
			WHERE id = $1 AND status = 'in_progress'
		`
		for _, id := range ended {
			if _, e := tx.Exec(ctx, finalize, id); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert %d game action(s): %w", len(actions), err)
	}
	return nil
}

// MarkAbandoned flags a game that stopped producing actions before finishing.
func (a *Archive) MarkAbandoned(ctx context.Context, gameID uuid.UUID) error {
	q := `
		UPDATE games
		SET status = 'abandoned', end_time = NOW()
		WHERE id = $1 AND status = 'in_progress'
	`
	return pgx.BeginTxFunc(ctx, a.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, gameID)
		return e
	})
}

// roomsOf lists the distinct rooms in actions in first-seen order, plus those
// with a game_end action.
func roomsOf(actions []models.GameAction) (rooms, ended []uuid.UUID) {
	seen := make(map[uuid.UUID]bool)
	for _, act := range actions {
		if !seen[act.RoomID] {
			seen[act.RoomID] = true
			rooms = append(rooms, act.RoomID)
		}
		if act.ActionType == models.ActionTypeGameEnd {
			ended = append(ended, act.RoomID)
		}
	}
	return rooms, ended
}

func actionRows(actions []models.GameAction) [][]any {
	rows := make([][]any, 0, len(actions))
	for _, act := range actions {
		payload := act.Payload
		if payload == nil {
			payload = map[string]interface{}{}
		}
		rows = append(rows, []any{
			act.RoomID,
			act.ActionIndex,
			act.ActorID,
			act.ActionType,
			payload,
			time.UnixMilli(act.Timestamp).UTC(),
		})
	}
	return rows
}
