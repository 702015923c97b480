package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"

	"pvpleaderboard.com/viewer/internal/logging"
	"pvpleaderboard.com/viewer/internal/model"
)

const (
	metaFile        = "meta.json"
	extrasFile      = "all_characters.json"
	talentDefsFile  = "talent_defs.json"
	bracketFileTmpl = "%s.json"
)

// Local reads the bundled dataset from a directory.
type Local struct {
	fsys   fs.FS
	logger *log.Logger
}

// NewLocal : dataset rooted at fsys
func NewLocal(fsys fs.FS, logger *log.Logger) *Local {
	return &Local{fsys: fsys, logger: logging.OrDefault(logger)}
}

// Meta loads the summary document.
func (l *Local) Meta(ctx context.Context) (*model.Meta, error) {
	var meta model.Meta
	if err := l.readJSON(ctx, metaFile, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Bracket loads one bracket's standings. file may be empty to use the default name.
func (l *Local) Bracket(ctx context.Context, bracket model.Bracket, file string) ([]model.LeaderboardEntry, error) {
	if file == "" {
		file = fmt.Sprintf(bracketFileTmpl, bracket)
	}
	var entries []model.LeaderboardEntry
	if err := l.readJSON(ctx, file, &entries); err != nil {
		return nil, err
	}
	return parseEntries(entries), nil
}

// Extras loads the per-character detail records.
func (l *Local) Extras(ctx context.Context) ([]model.CharacterRecord, error) {
	var records []model.CharacterRecord
	if err := l.readJSON(ctx, extrasFile, &records); err != nil {
		return nil, err
	}
	return parseExtras(records), nil
}

// TalentDefinitions loads the static talent layouts.
func (l *Local) TalentDefinitions(ctx context.Context) (model.TalentDefinitions, error) {
	var defs model.TalentDefinitions
	if err := l.readJSON(ctx, talentDefsFile, &defs); err != nil {
		return nil, err
	}
	l.logger.Printf("Found talent definitions for %d classes", len(defs))
	return defs, nil
}

func (l *Local) readJSON(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w: %w", name, model.ErrSourceUnavailable, err)
	}
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		l.logger.Printf("%s reading '%s' failed: %s", logging.ErrPrefix, name, err)
		return fmt.Errorf("%s: %w: %w", name, model.ErrSourceUnavailable, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		l.logger.Printf("%s json parsing of '%s' failed: %s", logging.ErrPrefix, name, err)
		return fmt.Errorf("%s: %w: %w", name, model.ErrSourceUnavailable, err)
	}
	return nil
}

// parseEntries re-derives winrates from the win/loss counters.
func parseEntries(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	parsed := make([]model.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if e.Won < 0 {
			e.Won = 0
		}
		if e.Lost < 0 {
			e.Lost = 0
		}
		if e.Rating < 0 {
			e.Rating = 0
		}
		e.Winrate = model.Winrate(e.Won, e.Lost)
		parsed = append(parsed, e)
	}
	return parsed
}

// parseExtras normalizes talent icon references to icon keys.
func parseExtras(records []model.CharacterRecord) []model.CharacterRecord {
	for i := range records {
		for g := range records[i].SpecGroups {
			trees := records[i].SpecGroups[g].Trees
			for t := range trees {
				for k := range trees[t].Talents {
					trees[t].Talents[k].Icon = IconKey(trees[t].Talents[k].Icon)
				}
			}
		}
	}
	return records
}
