package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RaffleStore is the Postgres-backed Raffles implementation.
type RaffleStore struct {
	db *sqlx.DB
}

// NewRaffleStore constructs a RaffleStore on the shared pool.
func NewRaffleStore(db *sqlx.DB) *RaffleStore {
	return &RaffleStore{db: db}
}

// Active returns the chat's ACTIVE session, or nil when none exists.
func (s *RaffleStore) Active(ctx context.Context, chatID int64) (*Lottery, error) {
	var l Lottery
	err := s.db.GetContext(ctx, &l, `
		SELECT chat_id, start_time, duration_minutes, winner_count, required_groups, state, message_id
		FROM lotteries WHERE chat_id = $1 AND state = $2`,
		chatID, LotteryActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active lottery: %w", err)
	}
	return &l, nil
}

// Start opens a session for the chat. The conditional upsert only fires when
// the existing row is ENDED, so two concurrent starts cannot both win.
func (s *RaffleStore) Start(ctx context.Context, lottery Lottery) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO lotteries (chat_id, start_time, duration_minutes, winner_count, required_groups, state, message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chat_id) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    duration_minutes = EXCLUDED.duration_minutes,
		    winner_count = EXCLUDED.winner_count,
		    required_groups = EXCLUDED.required_groups,
		    state = EXCLUDED.state,
		    message_id = EXCLUDED.message_id
		WHERE lotteries.state = $8`,
		lottery.ChatID, lottery.StartTime, lottery.DurationMinutes, lottery.WinnerCount,
		lottery.RequiredGroups, LotteryActive, lottery.MessageID, LotteryEnded,
	)
	if err != nil {
		return false, fmt.Errorf("start lottery: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("start lottery: %w", err)
	}
	return affected > 0, nil
}

// End transitions ACTIVE to ENDED and clears the participant set in one
// transaction.
func (s *RaffleStore) End(ctx context.Context, chatID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("end lottery: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE lotteries SET state = $1 WHERE chat_id = $2 AND state = $3`,
		LotteryEnded, chatID, LotteryActive); err != nil {
		return fmt.Errorf("end lottery: update: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM lottery_participants WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("end lottery: clear participants: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("end lottery: commit: %w", err)
	}
	return nil
}

// AddParticipant joins a user; duplicates are reported, not silently merged.
func (s *RaffleStore) AddParticipant(ctx context.Context, p Participant) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO lottery_participants (chat_id, user_id, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, user_id) DO NOTHING`,
		p.ChatID, p.UserID, p.Username,
	)
	if err != nil {
		return false, fmt.Errorf("add participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add participant: %w", err)
	}
	return affected > 0, nil
}

// Participants lists joined users in insertion order.
func (s *RaffleStore) Participants(ctx context.Context, chatID int64) ([]Participant, error) {
	var participants []Participant
	err := s.db.SelectContext(ctx, &participants, `
		SELECT chat_id, user_id, username, joined_at
		FROM lottery_participants WHERE chat_id = $1 ORDER BY joined_at, user_id`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// SetMessageID remembers the announcement message of the active session.
func (s *RaffleStore) SetMessageID(ctx context.Context, chatID, messageID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE lotteries SET message_id = $1 WHERE chat_id = $2 AND state = $3`,
		messageID, chatID, LotteryActive,
	)
	if err != nil {
		return fmt.Errorf("set lottery message: %w", err)
	}
	return nil
}
