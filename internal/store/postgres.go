// Package store persists computed totals and award assignments in Postgres
// and serves as the awards engine's totals source. Every period query is
// restricted to subjects with qualifying games in that period.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/courtline/stat-engine/internal/awards"
	"github.com/courtline/stat-engine/pkg/models"
)

// Client wraps the stat-engine Postgres database.
type Client struct {
	db *sql.DB
}

// NewClient opens a connection pool and verifies it.
func NewClient(dsn string) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// UpsertPlayerGame stores one player's game totals, replacing any previous
// row for the same player and game. The quarter breakdown is kept as JSON
// alongside the summed columns.
func (c *Client) UpsertPlayerGame(ctx context.Context, totals models.PlayerGameTotals) error {
	quarters, err := json.Marshal(totals.Quarters)
	if err != nil {
		return fmt.Errorf("marshaling quarters: %w", err)
	}

	query := `
		INSERT INTO player_game_totals (
			player_id, game_id, team_id,
			fg2_made, fg2_att, fg3_made, fg3_att, ft_made, ft_att, fouls,
			points, quarters, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (player_id, game_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			fg2_made = EXCLUDED.fg2_made,
			fg2_att = EXCLUDED.fg2_att,
			fg3_made = EXCLUDED.fg3_made,
			fg3_att = EXCLUDED.fg3_att,
			ft_made = EXCLUDED.ft_made,
			ft_att = EXCLUDED.ft_att,
			fouls = EXCLUDED.fouls,
			points = EXCLUDED.points,
			quarters = EXCLUDED.quarters,
			updated_at = NOW()
	`

	_, err = c.db.ExecContext(ctx, query,
		totals.PlayerID, totals.GameID, totals.TeamID,
		totals.FG2Made, totals.FG2Att, totals.FG3Made, totals.FG3Att,
		totals.FTMade, totals.FTAtt, totals.Fouls,
		totals.Points(), quarters,
	)
	if err != nil {
		return fmt.Errorf("upserting player game totals: %w", err)
	}
	return nil
}

// UpsertTeamGame stores one team's game totals.
func (c *Client) UpsertTeamGame(ctx context.Context, totals models.TeamGameTotals) error {
	quarterPoints, err := json.Marshal(totals.QuarterPoints)
	if err != nil {
		return fmt.Errorf("marshaling quarter points: %w", err)
	}

	query := `
		INSERT INTO team_game_totals (
			team_id, game_id,
			fg2_made, fg2_att, fg3_made, fg3_att, ft_made, ft_att, fouls,
			points, quarter_points, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (team_id, game_id) DO UPDATE SET
			fg2_made = EXCLUDED.fg2_made,
			fg2_att = EXCLUDED.fg2_att,
			fg3_made = EXCLUDED.fg3_made,
			fg3_att = EXCLUDED.fg3_att,
			ft_made = EXCLUDED.ft_made,
			ft_att = EXCLUDED.ft_att,
			fouls = EXCLUDED.fouls,
			points = EXCLUDED.points,
			quarter_points = EXCLUDED.quarter_points,
			updated_at = NOW()
	`

	_, err = c.db.ExecContext(ctx, query,
		totals.TeamID, totals.GameID,
		totals.FG2Made, totals.FG2Att, totals.FG3Made, totals.FG3Att,
		totals.FTMade, totals.FTAtt, totals.Fouls,
		totals.Points(), quarterPoints,
	)
	if err != nil {
		return fmt.Errorf("upserting team game totals: %w", err)
	}
	return nil
}

// GamePlayerTotals returns every player stat line recorded for a game.
func (c *Client) GamePlayerTotals(ctx context.Context, gameID string) ([]models.PlayerGameTotals, error) {
	query := `
		SELECT player_id, game_id, team_id,
		       fg2_made, fg2_att, fg3_made, fg3_att, ft_made, ft_att, fouls,
		       quarters
		FROM player_game_totals
		WHERE game_id = $1
	`

	rows, err := c.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying player game totals: %w", err)
	}
	defer rows.Close()

	var totals []models.PlayerGameTotals
	for rows.Next() {
		t, err := scanPlayerGame(rows)
		if err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// GameTeamTotals returns both teams' stat lines for a game.
func (c *Client) GameTeamTotals(ctx context.Context, gameID string) ([]models.TeamGameTotals, error) {
	query := `
		SELECT team_id, game_id,
		       fg2_made, fg2_att, fg3_made, fg3_att, ft_made, ft_att, fouls,
		       quarter_points
		FROM team_game_totals
		WHERE game_id = $1
	`

	rows, err := c.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying team game totals: %w", err)
	}
	defer rows.Close()

	var totals []models.TeamGameTotals
	for rows.Next() {
		var t models.TeamGameTotals
		var quarterPoints []byte
		err := rows.Scan(&t.TeamID, &t.GameID,
			&t.FG2Made, &t.FG2Att, &t.FG3Made, &t.FG3Att,
			&t.FTMade, &t.FTAtt, &t.Fouls, &quarterPoints)
		if err != nil {
			return nil, fmt.Errorf("scanning team game totals: %w", err)
		}
		if err := json.Unmarshal(quarterPoints, &t.QuarterPoints); err != nil {
			return nil, fmt.Errorf("unmarshaling quarter points: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// WeekPlayerGames returns every player game line whose game date falls in
// the week window. Only participants appear: the join produces rows solely
// for players with a recorded game in the window.
func (c *Client) WeekPlayerGames(ctx context.Context, seasonID string, week models.Week) ([]models.PlayerGameTotals, error) {
	query := `
		SELECT p.player_id, p.game_id, p.team_id,
		       p.fg2_made, p.fg2_att, p.fg3_made, p.fg3_att, p.ft_made, p.ft_att, p.fouls,
		       p.quarters
		FROM player_game_totals p
		JOIN games g ON g.game_id = p.game_id
		WHERE g.season_id = $1
		  AND g.game_date >= $2
		  AND g.game_date < $3
	`

	rows, err := c.db.QueryContext(ctx, query, seasonID, week.Start, week.End())
	if err != nil {
		return nil, fmt.Errorf("querying week player games: %w", err)
	}
	defer rows.Close()

	var totals []models.PlayerGameTotals
	for rows.Next() {
		t, err := scanPlayerGame(rows)
		if err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// SeasonPlayerTotals rolls up per-game rows into season totals in SQL,
// restricted to players who actually played in the season. Games played is
// a row count, so a zero-attempt game still counts.
func (c *Client) SeasonPlayerTotals(ctx context.Context, season models.Season) ([]models.PlayerSeasonTotals, error) {
	query := `
		SELECT p.player_id,
		       SUM(p.fg2_made), SUM(p.fg2_att), SUM(p.fg3_made), SUM(p.fg3_att),
		       SUM(p.ft_made), SUM(p.ft_att), SUM(p.fouls),
		       COUNT(*) AS games_played
		FROM player_game_totals p
		JOIN games g ON g.game_id = p.game_id
		WHERE g.season_id = $1
		GROUP BY p.player_id
	`

	rows, err := c.db.QueryContext(ctx, query, season.ID)
	if err != nil {
		return nil, fmt.Errorf("querying season player totals: %w", err)
	}
	defer rows.Close()

	var totals []models.PlayerSeasonTotals
	for rows.Next() {
		t := models.PlayerSeasonTotals{SeasonID: season.ID}
		err := rows.Scan(&t.PlayerID,
			&t.FG2Made, &t.FG2Att, &t.FG3Made, &t.FG3Att,
			&t.FTMade, &t.FTAtt, &t.Fouls, &t.GamesPlayed)
		if err != nil {
			return nil, fmt.Errorf("scanning season player totals: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// SeasonTeamTotals rolls up team game rows into season totals.
func (c *Client) SeasonTeamTotals(ctx context.Context, season models.Season) ([]models.TeamSeasonTotals, error) {
	query := `
		SELECT t.team_id,
		       SUM(t.fg2_made), SUM(t.fg2_att), SUM(t.fg3_made), SUM(t.fg3_att),
		       SUM(t.ft_made), SUM(t.ft_att), SUM(t.fouls),
		       COUNT(*) AS games_played
		FROM team_game_totals t
		JOIN games g ON g.game_id = t.game_id
		WHERE g.season_id = $1
		GROUP BY t.team_id
	`

	rows, err := c.db.QueryContext(ctx, query, season.ID)
	if err != nil {
		return nil, fmt.Errorf("querying season team totals: %w", err)
	}
	defer rows.Close()

	var totals []models.TeamSeasonTotals
	for rows.Next() {
		t := models.TeamSeasonTotals{SeasonID: season.ID}
		err := rows.Scan(&t.TeamID,
			&t.FG2Made, &t.FG2Att, &t.FG3Made, &t.FG3Att,
			&t.FTMade, &t.FTAtt, &t.Fouls, &t.GamesPlayed)
		if err != nil {
			return nil, fmt.Errorf("scanning season team totals: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// PlayerSeason returns one player's season totals. sql.ErrNoRows surfaces
// when the player has no games in the season.
func (c *Client) PlayerSeason(ctx context.Context, seasonID, playerID string) (models.PlayerSeasonTotals, error) {
	query := `
		SELECT SUM(p.fg2_made), SUM(p.fg2_att), SUM(p.fg3_made), SUM(p.fg3_att),
		       SUM(p.ft_made), SUM(p.ft_att), SUM(p.fouls),
		       COUNT(*) AS games_played
		FROM player_game_totals p
		JOIN games g ON g.game_id = p.game_id
		WHERE g.season_id = $1 AND p.player_id = $2
		GROUP BY p.player_id
	`

	t := models.PlayerSeasonTotals{PlayerID: playerID, SeasonID: seasonID}
	err := c.db.QueryRowContext(ctx, query, seasonID, playerID).Scan(
		&t.FG2Made, &t.FG2Att, &t.FG3Made, &t.FG3Att,
		&t.FTMade, &t.FTAtt, &t.Fouls, &t.GamesPlayed)
	if err != nil {
		return models.PlayerSeasonTotals{}, err
	}
	return t, nil
}

func scanPlayerGame(rows *sql.Rows) (models.PlayerGameTotals, error) {
	var t models.PlayerGameTotals
	var quarters []byte
	err := rows.Scan(&t.PlayerID, &t.GameID, &t.TeamID,
		&t.FG2Made, &t.FG2Att, &t.FG3Made, &t.FG3Att,
		&t.FTMade, &t.FTAtt, &t.Fouls, &quarters)
	if err != nil {
		return models.PlayerGameTotals{}, fmt.Errorf("scanning player game totals: %w", err)
	}
	if err := json.Unmarshal(quarters, &t.Quarters); err != nil {
		return models.PlayerGameTotals{}, fmt.Errorf("unmarshaling quarters: %w", err)
	}
	return t, nil
}

// Replace clears the assignments for exactly one scope/period and inserts
// the recomputed set inside a single transaction, so a repeated
// recalculation can never accumulate duplicates and a failed one never
// leaves a half-cleared period behind.
func (c *Client) Replace(ctx context.Context, scope models.AwardScope, period awards.Period, assignments []models.AwardAssignment) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	switch scope {
	case models.ScopeGame:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM award_assignments WHERE season_id = $1 AND game_id = $2 AND week_start IS NULL`,
			period.Season.ID, period.GameID)
	case models.ScopeWeekly:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM award_assignments WHERE season_id = $1 AND week_start = $2`,
			period.Season.ID, period.Week.Start)
	case models.ScopeSeason:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM award_assignments WHERE season_id = $1 AND game_id IS NULL AND week_start IS NULL`,
			period.Season.ID)
	default:
		return fmt.Errorf("unknown award scope %q", scope)
	}
	if err != nil {
		return fmt.Errorf("clearing %s assignments: %w", scope, err)
	}

	insert := `
		INSERT INTO award_assignments (id, award_id, subject_id, season_id, game_id, week_start, value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, a := range assignments {
		var gameID sql.NullString
		if a.GameID != "" {
			gameID = sql.NullString{String: a.GameID, Valid: true}
		}
		var weekStart sql.NullTime
		if a.WeekStart != nil {
			weekStart = sql.NullTime{Time: *a.WeekStart, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, insert,
			a.ID, a.AwardID, a.SubjectID, a.SeasonID, gameID, weekStart, a.Value); err != nil {
			return fmt.Errorf("inserting assignment for award %s: %w", a.AwardID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing assignment replacement: %w", err)
	}
	return nil
}

// Assignments returns stored assignments for a season, optionally filtered
// by award.
func (c *Client) Assignments(ctx context.Context, seasonID, awardID string) ([]models.AwardAssignment, error) {
	query := `
		SELECT id, award_id, subject_id, season_id, game_id, week_start, value
		FROM award_assignments
		WHERE season_id = $1
	`
	args := []interface{}{seasonID}
	if awardID != "" {
		query += " AND award_id = $2"
		args = append(args, awardID)
	}
	query += " ORDER BY award_id, subject_id"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.AwardAssignment
	for rows.Next() {
		var a models.AwardAssignment
		var gameID sql.NullString
		var weekStart sql.NullTime
		if err := rows.Scan(&a.ID, &a.AwardID, &a.SubjectID, &a.SeasonID, &gameID, &weekStart, &a.Value); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		if gameID.Valid {
			a.GameID = gameID.String
		}
		if weekStart.Valid {
			ws := weekStart.Time
			a.WeekStart = &ws
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// UpsertGame records a game's season and date, the period keys every
// restricted query joins on.
func (c *Client) UpsertGame(ctx context.Context, gameID, seasonID string, gameDate time.Time) error {
	query := `
		INSERT INTO games (game_id, season_id, game_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id) DO UPDATE SET
			season_id = EXCLUDED.season_id,
			game_date = EXCLUDED.game_date
	`
	if _, err := c.db.ExecContext(ctx, query, gameID, seasonID, gameDate); err != nil {
		return fmt.Errorf("upserting game: %w", err)
	}
	return nil
}
