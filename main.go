package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"pvpleaderboard.com/viewer/internal/aggregate"
	"pvpleaderboard.com/viewer/internal/config"
	"pvpleaderboard.com/viewer/internal/leaderboard"
	"pvpleaderboard.com/viewer/internal/logging"
	"pvpleaderboard.com/viewer/internal/model"
	"pvpleaderboard.com/viewer/internal/server"
	"pvpleaderboard.com/viewer/internal/source"
)

var logger = logging.Default()

const (
	modeServe  string = "serve"
	modeBrowse string = "browse"
)

func main() {
	start := time.Now()
	mode := modeServe
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("%s %s", logging.FatalPrefix, err)
	}
	remote, err := source.NewRemote(cfg.Remote(), logger)
	if err != nil {
		logger.Fatalf("%s Opening remote store failed: %s", logging.FatalPrefix, err)
	}
	if closer, ok := remote.(io.Closer); ok {
		defer closer.Close()
	}
	views := aggregate.New(source.NewLocal(os.DirFS(cfg.DataDir), logger), remote, cfg.FetchTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case modeServe:
		err = server.New(views, cfg.IssueRepo, logger).Run(ctx, cfg.Addr)
	case modeBrowse:
		err = browse(ctx, views, cfg.SearchDebounce, os.Stdin, os.Stdout)
	default:
		logger.Fatalf("%s Unknown mode '%s', expected %s or %s", logging.FatalPrefix, mode, modeServe, modeBrowse)
	}
	if err != nil {
		logger.Fatalf("%s %s", logging.FatalPrefix, err)
	}
	logger.Printf("Viewer stopped after %v", time.Since(start))
}

type commandKind int

const (
	cmdSearch commandKind = iota
	cmdBracket
	cmdSort
	cmdCharacter
	cmdReload
	cmdQuit
	cmdInvalid
)

type command struct {
	kind commandKind
	args []string
}

// parseCommand reads one line of browse input. Lines not starting with ':'
// are search text.
func parseCommand(line string) command {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return command{kind: cmdSearch, args: []string{trimmed}}
	}
	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return command{kind: cmdInvalid}
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "bracket", "b":
		if len(args) == 1 && model.Bracket(args[0]).Valid() {
			return command{kind: cmdBracket, args: args}
		}
	case "sort", "s":
		if len(args) == 1 && leaderboard.ParseSortKey(args[0]) != leaderboard.SortNone {
			return command{kind: cmdSort, args: args}
		}
	case "char", "c":
		if len(args) == 2 {
			return command{kind: cmdCharacter, args: args}
		}
	case "reload", "r":
		return command{kind: cmdReload}
	case "quit", "q":
		return command{kind: cmdQuit}
	}
	return command{kind: cmdInvalid, args: fields}
}

// browse runs an interactive session on a leaderboard board until input ends,
// ":quit" is read or ctx is cancelled.
func browse(ctx context.Context, views *aggregate.Orchestrator, quiet time.Duration, in io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	out := &lockedWriter{w: w}

	standings, _ := views.Leaderboard(ctx)
	board := leaderboard.NewBoard(standings, quiet, func(v leaderboard.View) {
		var buf bytes.Buffer
		printView(&buf, v)
		out.Write(buf.Bytes())
	})
	defer board.Close()
	board.Refresh()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}
		cmd := parseCommand(line)
		switch cmd.kind {
		case cmdSearch:
			board.Search(cmd.args[0])
		case cmdBracket:
			board.SelectBracket(model.Bracket(cmd.args[0]))
		case cmdSort:
			board.SelectSort(leaderboard.ParseSortKey(cmd.args[0]))
		case cmdCharacter:
			view, err := views.Character(ctx, cmd.args[1], cmd.args[0])
			if err != nil {
				fmt.Fprintf(out, "캐릭터를 찾을 수 없습니다: %s\n", err)
				continue
			}
			var buf bytes.Buffer
			printCharacter(&buf, view)
			out.Write(buf.Bytes())
		case cmdReload:
			standings, _ := views.Leaderboard(ctx)
			board.Reload(standings)
		case cmdQuit:
			return nil
		default:
			fmt.Fprintln(out, "commands: <search text> | :bracket 2v2|3v3|5v5 | :sort rating|winrate | :char <realm> <name> | :reload | :quit")
		}
	}
}

// lockedWriter serializes writes from the board's render goroutine and the
// command loop. Each view is written in a single call.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func printView(out io.Writer, v leaderboard.View) {
	header := fmt.Sprintf("[%s]", v.Context.Bracket)
	if v.Context.Sort.Key != leaderboard.SortNone {
		header += fmt.Sprintf(" sort=%s %s", v.Context.Sort.Key, v.Context.Sort.Dir)
	}
	if v.Context.Query != "" {
		header += fmt.Sprintf(" q=%q", v.Context.Query)
	}
	fmt.Fprintln(out, header)
	if meta := v.Meta.String(); meta != "" {
		fmt.Fprintln(out, meta)
	}
	if v.Empty {
		fmt.Fprintln(out, "결과 없음")
		return
	}
	for _, e := range v.Entries {
		fmt.Fprintf(out, "%4d  %-14s %-12s %-8s %5d  %d승 %d패  %.1f%%\n",
			e.Rank, e.Name, leaderboard.RealmDisplayName(e), e.Class, e.Rating, e.Won, e.Lost, e.Winrate)
	}
}

func printCharacter(out io.Writer, v aggregate.CharacterView) {
	fmt.Fprintf(out, "%s (%s)\n", v.Character.Name, leaderboard.RealmLabel(v.Character.Realm))
	if v.Header != "" {
		fmt.Fprintln(out, v.Header)
	}
	if v.Sections.History {
		for _, c := range v.History.Cards {
			fmt.Fprintf(out, "  %s %d\n", c.Bracket, c.Rating)
		}
		for _, r := range v.History.Rows {
			fmt.Fprintf(out, "  %s  %d  %s\n", r.RecordedAt.Local().Format("2006-01-02 15:04"), r.Rating, r.DeltaLabel())
		}
	}
	if v.Sections.Equipment {
		for _, item := range v.Equipment {
			fmt.Fprintf(out, "  %-10s %s\n", item.SlotType, item.Name)
		}
	}
	if layout, ok := v.SelectedTalents(); ok {
		fmt.Fprintf(out, "  talents %s (%s)\n", layout.PointSplit, layout.Mode)
	}
	for _, note := range v.Notes {
		fmt.Fprintf(out, "  ! %s\n", note)
	}
}
