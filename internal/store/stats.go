package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// LeaderboardSize is the number of ranked rows returned above the caller's own.
const LeaderboardSize = 10

// rankColumn computes standard competition ranking over all users with stats.
const rankColumn = "RANK() OVER (ORDER BY s.wins DESC, s.total_guesses ASC) AS rank"

// Result is the outcome of one finished game.
type Result struct {
	UserID  string
	Won     bool
	Guesses int
	Hints   int
}

// Standing is one ranked leaderboard row.
type Standing struct {
	UserID       string
	DisplayName  string
	Handle       *string
	Wins         int
	Losses       int
	TotalGuesses int
	TotalHints   int
	Rank         int
}

// Leaderboard holds the top rows and the caller's own row, if ranked.
type Leaderboard struct {
	Top    []Standing
	Caller *Standing
}

// RecordResult adds one finished game to the user's counters as an atomic
// upsert increment.
func (s *DB) RecordResult(ctx context.Context, r Result) error {
	wins, losses := 0, 1
	if r.Won {
		wins, losses = 1, 0
	}
	query, args, err := s.builder.Insert("user_stats").
		Columns("user_id", "wins", "losses", "total_hints", "total_guesses").
		Values(r.UserID, wins, losses, r.Hints, r.Guesses).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			wins = user_stats.wins + excluded.wins,
			losses = user_stats.losses + excluded.losses,
			total_hints = user_stats.total_hints + excluded.total_hints,
			total_guesses = user_stats.total_guesses + excluded.total_guesses`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert stats sql: %w", err)
	}
	if _, err := s.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert stats: %w", err)
	}
	return nil
}

func (s *DB) rankedUsers() sq.SelectBuilder {
	return s.builder.
		Select("u.user_id", "u.username", "u.x_handle", "s.wins", "s.losses",
			"s.total_guesses", "s.total_hints", rankColumn).
		From("user_stats s").
		Join("users u ON u.user_id = s.user_id")
}

// Leaderboard returns the top LeaderboardSize standings and userID's standing.
func (s *DB) Leaderboard(ctx context.Context, userID string) (Leaderboard, error) {
	var lb Leaderboard

	query, args, err := s.rankedUsers().OrderBy("rank", "u.user_id").Limit(LeaderboardSize).ToSql()
	if err != nil {
		return lb, fmt.Errorf("build leaderboard sql: %w", err)
	}
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return lb, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		st, err := scanStanding(rows)
		if err != nil {
			return lb, err
		}
		lb.Top = append(lb.Top, st)
	}
	if err := rows.Err(); err != nil {
		return lb, err
	}

	query, args, err = s.builder.Select("*").
		FromSelect(s.rankedUsers(), "ranked").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return lb, fmt.Errorf("build standing sql: %w", err)
	}
	st, err := scanStanding(s.QueryRowContext(ctx, query, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return lb, err
	default:
		lb.Caller = &st
	}
	return lb, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStanding(row scanner) (Standing, error) {
	var (
		st     Standing
		handle sql.NullString
	)
	err := row.Scan(&st.UserID, &st.DisplayName, &handle, &st.Wins, &st.Losses,
		&st.TotalGuesses, &st.TotalHints, &st.Rank)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return st, err
		}
		return st, fmt.Errorf("scan standing: %w", err)
	}
	if handle.Valid {
		st.Handle = &handle.String
	}
	return st, nil
}
