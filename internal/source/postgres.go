package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"pvpleaderboard.com/viewer/internal/logging"
	"pvpleaderboard.com/viewer/internal/model"
)

const findCharacterSQL string = `
SELECT id, name, realm, class, race, faction, guild, updated_at
FROM characters
WHERE name = $1 AND realm = $2
LIMIT 1`

const snapshotsSQL string = `
SELECT id, character_id, bracket, rating, won, lost, played, recorded_at
FROM rating_snapshots
WHERE character_id = $1
ORDER BY recorded_at ASC`

// Postgres reads the remote store directly from its database.
type Postgres struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenPostgres connects with lib/pq. The pool is opened lazily, so a bad
// server only surfaces on the first query.
func OpenPostgres(dbURL string, logger *log.Logger) (*Postgres, error) {
	logger = logging.OrDefault(logger)
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.Printf("%s Unable to connect to database: %s", logging.ErrPrefix, err)
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newPostgres(db, logger), nil
}

func newPostgres(db *sql.DB, logger *log.Logger) *Postgres {
	return &Postgres{db: db, logger: logging.OrDefault(logger)}
}

func (p *Postgres) Name() string {
	return "postgres"
}

// Close releases the pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// FindCharacter looks a character up by exact name and realm.
func (p *Postgres) FindCharacter(ctx context.Context, name, realm string) (*model.CharacterRecord, error) {
	var c model.CharacterRecord
	var class, race, faction, guild sql.NullString
	var updated sql.NullTime
	err := p.db.QueryRowContext(ctx, findCharacterSQL, name, realm).
		Scan(&c.ID, &c.Name, &c.Realm, &class, &race, &faction, &guild, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		p.logger.Printf("%s character query for %s-%s failed: %s", logging.ErrPrefix, name, realm, err)
		return nil, fmt.Errorf("find character: %w: %w", model.ErrSourceUnavailable, err)
	}
	c.Class = class.String
	c.Race = race.String
	c.Faction = faction.String
	c.Guild = guild.String
	if updated.Valid {
		t := updated.Time
		c.UpdatedAt = &t
	}
	return &c, nil
}

// Snapshots loads a character's rating history, oldest first.
func (p *Postgres) Snapshots(ctx context.Context, characterID int64) ([]model.RatingSnapshot, error) {
	rows, err := p.db.QueryContext(ctx, snapshotsSQL, characterID)
	if err != nil {
		p.logger.Printf("%s snapshot query for %d failed: %s", logging.ErrPrefix, characterID, err)
		return nil, fmt.Errorf("snapshots: %w: %w", model.ErrSourceUnavailable, err)
	}
	defer rows.Close()
	snapshots := make([]model.RatingSnapshot, 0)
	for rows.Next() {
		var (
			s       model.RatingSnapshot
			bracket string
			played  sql.NullInt64
			at      time.Time
		)
		if err := rows.Scan(&s.ID, &s.CharacterID, &bracket, &s.Rating, &s.Won, &s.Lost, &played, &at); err != nil {
			return nil, fmt.Errorf("snapshots: %w: %w", model.ErrSourceUnavailable, err)
		}
		s.Bracket = model.Bracket(bracket)
		s.Played = int(played.Int64)
		s.RecordedAt = at
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshots: %w: %w", model.ErrSourceUnavailable, err)
	}
	return snapshots, nil
}
