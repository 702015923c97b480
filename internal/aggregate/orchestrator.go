// Package aggregate loads every source a view needs concurrently and joins
// the results into a view model. A failing source only blanks its own
// section; nothing here aborts a view because one source is down.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/sync/errgroup"
	"pvpleaderboard.com/viewer/internal/history"
	"pvpleaderboard.com/viewer/internal/identity"
	"pvpleaderboard.com/viewer/internal/leaderboard"
	"pvpleaderboard.com/viewer/internal/logging"
	"pvpleaderboard.com/viewer/internal/model"
	"pvpleaderboard.com/viewer/internal/source"
	"pvpleaderboard.com/viewer/internal/talents"
)

const defaultFetchTimeout time.Duration = 10 * time.Second

// Dataset : the bundled documents
type Dataset interface {
	Meta(ctx context.Context) (*model.Meta, error)
	Bracket(ctx context.Context, bracket model.Bracket, file string) ([]model.LeaderboardEntry, error)
	Extras(ctx context.Context) ([]model.CharacterRecord, error)
	TalentDefinitions(ctx context.Context) (model.TalentDefinitions, error)
}

// SourceStatus : how one source load settled
type SourceStatus string

const (
	StatusOK          SourceStatus = "ok"
	StatusUnavailable SourceStatus = "unavailable"
	StatusDisabled    SourceStatus = "disabled"
)

const (
	sourceMeta       = "meta"
	sourceExtras     = "extras"
	sourceTalentDefs = "talent_defs"
	sourceCharacter  = "remote_character"
	sourceHistory    = "remote_history"
)

// Orchestrator fans source loads out and assembles view models.
type Orchestrator struct {
	dataset Dataset
	remote  source.Remote
	timeout time.Duration
	logger  *log.Logger
}

// New : orchestrator over dataset and an optional remote (nil disables it)
func New(dataset Dataset, remote source.Remote, timeout time.Duration, logger *log.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Orchestrator{dataset: dataset, remote: remote, timeout: timeout, logger: logging.OrDefault(logger)}
}

// outcome : tagged result of one source load, read only after the join
type outcome[T any] struct {
	value T
	err   error
}

func (o outcome[T]) ok() bool {
	return o.err == nil
}

// join runs tasks on an errgroup and records how each source settled.
type join struct {
	ctx      context.Context
	group    errgroup.Group
	statuses cmap.ConcurrentMap[string, SourceStatus]
	timeout  time.Duration
	logger   *log.Logger
}

func (o *Orchestrator) newJoin(ctx context.Context) *join {
	return &join{ctx: ctx, statuses: cmap.New[SourceStatus](), timeout: o.timeout, logger: o.logger}
}

// launch starts load under its own timeout. The task never fails the group;
// its error is carried in the outcome instead.
func launch[T any](j *join, name string, load func(context.Context) (T, error)) *outcome[T] {
	out := &outcome[T]{}
	j.group.Go(func() error {
		ctx, cancel := context.WithTimeout(j.ctx, j.timeout)
		defer cancel()
		out.value, out.err = load(ctx)
		if out.err != nil {
			j.logger.Printf("%s source '%s' unavailable: %s", logging.WarnPrefix, name, out.err)
			j.statuses.Set(name, StatusUnavailable)
			return nil
		}
		j.statuses.Set(name, StatusOK)
		return nil
	})
	return out
}

func (j *join) disable(name string) {
	j.statuses.Set(name, StatusDisabled)
}

func (j *join) wait() {
	// tasks always return nil
	_ = j.group.Wait()
}

func (j *join) report() map[string]SourceStatus {
	return j.statuses.Items()
}

// Leaderboard loads the summary document and every bracket concurrently.
// A bracket that fails to load is present with no entries.
func (o *Orchestrator) Leaderboard(ctx context.Context) (leaderboard.Standings, map[string]SourceStatus) {
	start := time.Now()
	j := o.newJoin(ctx)
	meta := launch(j, sourceMeta, o.dataset.Meta)
	brackets := make(map[model.Bracket]*outcome[[]model.LeaderboardEntry], len(model.Brackets))
	for _, b := range model.Brackets {
		b := b
		brackets[b] = launch(j, string(b), func(ctx context.Context) ([]model.LeaderboardEntry, error) {
			return o.dataset.Bracket(ctx, b, "")
		})
	}
	j.wait()

	standings := leaderboard.Standings{Brackets: make(map[model.Bracket][]model.LeaderboardEntry, len(brackets))}
	if meta.ok() {
		standings.Meta = meta.value
	}
	for b, out := range brackets {
		if out.ok() {
			standings.Brackets[b] = out.value
		} else {
			standings.Brackets[b] = []model.LeaderboardEntry{}
		}
	}
	o.logger.Printf("Loaded leaderboards in %v", time.Since(start))
	return standings, j.report()
}

// Character resolves name on realm across the remote store and the local
// dataset and assembles its detail view. When neither source knows the
// character the view is marked NotFound and the error wraps model.ErrNotFound.
func (o *Orchestrator) Character(ctx context.Context, name, realm string) (CharacterView, error) {
	name, realm = strings.TrimSpace(name), strings.TrimSpace(realm)
	if name == "" || realm == "" {
		return CharacterView{NotFound: true}, fmt.Errorf("missing name or realm: %w", model.ErrNotFound)
	}

	j := o.newJoin(ctx)
	extras := launch(j, sourceExtras, o.dataset.Extras)
	defs := launch(j, sourceTalentDefs, o.dataset.TalentDefinitions)
	var remote *outcome[*model.CharacterRecord]
	if o.remote != nil {
		remote = launch(j, sourceCharacter, func(ctx context.Context) (*model.CharacterRecord, error) {
			return o.remote.FindCharacter(ctx, name, realm)
		})
	} else {
		j.disable(sourceCharacter)
		j.disable(sourceHistory)
	}
	j.wait()

	var remoteRecord, localRecord *model.CharacterRecord
	if remote != nil && remote.ok() {
		remoteRecord = remote.value
	}
	if extras.ok() {
		localRecord = identity.FindLocal(extras.value, name, realm)
	}
	res, err := identity.Resolve(name, realm, remoteRecord, localRecord)
	if err != nil {
		o.logger.Printf("No character found for %s-%s", name, realm)
		return CharacterView{NotFound: true, Sources: j.report()}, err
	}

	var snapshots []model.RatingSnapshot
	if res.HasHistory() && o.remote != nil {
		hj := o.newJoin(ctx)
		hist := launch(hj, sourceHistory, func(ctx context.Context) ([]model.RatingSnapshot, error) {
			return o.remote.Snapshots(ctx, res.Record.ID)
		})
		hj.wait()
		if hist.ok() {
			snapshots = hist.value
		}
		for k, v := range hj.report() {
			j.statuses.Set(k, v)
		}
	}

	var definitions model.TalentDefinitions
	if defs.ok() {
		definitions = defs.value
	}
	view := assemble(res, snapshots, definitions)
	view.Sources = j.report()
	for _, note := range view.Notes {
		o.logger.Printf("%s %s-%s: %s", logging.WarnPrefix, name, realm, note)
	}
	return view, nil
}

// IsNotFound reports whether err is the expected "no such character" outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}

func assemble(res identity.Resolution, snapshots []model.RatingSnapshot, defs model.TalentDefinitions) CharacterView {
	record := res.Record
	view := CharacterView{
		Character: record,
		Origin:    res.Origin,
		Header:    HeaderLine(record),
		snapshots: snapshots,
	}

	if len(snapshots) > 0 {
		p := history.Project(snapshots, "")
		view.History = &p
		view.Sections.History = true
	}

	if items := VisibleEquipment(record.Equipment); len(items) > 0 {
		view.Equipment = SortEquipment(items)
		view.Sections.Equipment = true
	}

	if len(record.SpecGroups) > 0 {
		view.Talents, view.ActiveSpec = talents.ReconstructGroups(record.SpecGroups, record.Class, defs)
		view.Sections.Talents = true
		for _, l := range view.Talents {
			if l.Degraded() {
				view.Notes = append(view.Notes, fmt.Sprintf("talents for class %q: %s, showing flat list", record.Class, model.ErrDegraded))
				break
			}
		}
	}
	return view
}
