package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/studyace/internal/domain"
	engine "github.com/phrazzld/studyace/internal/domain/practice"
	"github.com/phrazzld/studyace/internal/domain/similarity"
	"github.com/phrazzld/studyace/internal/events"
	"github.com/phrazzld/studyace/internal/interchange"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/platform/memory"
	"github.com/phrazzld/studyace/internal/service"
	"github.com/phrazzld/studyace/internal/service/account"
	"github.com/phrazzld/studyace/internal/service/auth"
	"github.com/phrazzld/studyace/internal/service/practice"
)

// quitCommand ends a play session early.
const quitCommand = ":q"

const playerName = "player"

type playOptions struct {
	mode   string
	format string
	title  string
	seed   uint64
	seeded bool
}

func newPlayCommand() *cobra.Command {
	var opts playOptions
	cmd := &cobra.Command{
		Use:   "play <deck-file>",
		Short: "Practise a JSON or CSV deck",
		Long: "Practise a deck file in one of the practice modes (classic, multiple_choice, fill_blank).\n" +
			"Type " + quitCommand + " to stop early. In multiple choice, answer with the option number or its text.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seeded = cmd.Flags().Changed("seed")
			verbose, _ := cmd.Flags().GetBool("verbose")

			level := slog.LevelError
			if verbose {
				level = slog.LevelDebug
			}
			log := logger.New(cmd.ErrOrStderr(), level)

			return runPlay(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), log, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(domain.DisciplineClassic), "practice mode")
	cmd.Flags().StringVar(&opts.format, "format", "", "deck format (json or csv); defaults to the file extension")
	cmd.Flags().StringVar(&opts.title, "title", "", "set title, overriding the one in the file")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed the question order for a repeatable run")
	return cmd
}

// player bundles the in-memory services a local play session runs on.
type player struct {
	accounts account.Service
	sets     service.SetService
	practice practice.Service
	actor    domain.Actor
}

func newPlayer(ctx context.Context, out io.Writer, log *slog.Logger, opts playOptions) (*player, error) {
	db := memory.NewDB()
	users := memory.NewUserStore(db, bcrypt.MinCost)
	sets := memory.NewSetStore(db)
	tx := memory.NewTransactor(db, users, sets)
	sessions := memory.NewSessionStore(24*time.Hour, log)

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(newConsoleNotifier(out))

	accounts := account.NewService(users, tx, sessions, auth.NewBcryptVerifier(), emitter, log)
	setService, err := service.NewSetService(sets, tx, log)
	if err != nil {
		return nil, err
	}

	var practiceOpts []practice.Option
	if opts.seeded {
		practiceOpts = append(practiceOpts, practice.WithRandom(rand.New(rand.NewPCG(opts.seed, opts.seed))))
	}

	// The local account only exists for this run; nobody signs in with it.
	password, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate local password: %w", err)
	}
	user, err := accounts.Register(ctx, playerName, password)
	if err != nil {
		return nil, fmt.Errorf("failed to create local player: %w", err)
	}

	return &player{
		accounts: accounts,
		sets:     setService,
		practice: practice.NewService(sets, tx, sessions, emitter, log, practiceOpts...),
		actor:    domain.UserActor(user.ID),
	}, nil
}

func runPlay(ctx context.Context, in io.Reader, out io.Writer, log *slog.Logger, path string, opts playOptions) error {
	d, err := domain.ParseDiscipline(opts.mode)
	if err != nil {
		return err
	}
	formatName := opts.format
	if formatName == "" {
		formatName = filepath.Ext(path)
	}
	format, err := interchange.ParseFormat(formatName)
	if err != nil {
		return err
	}

	p, err := newPlayer(ctx, out, log, opts)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	// CSV decks carry no title of their own.
	title := opts.title
	if title == "" && format == interchange.FormatCSV {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	set, err := p.sets.ImportSet(ctx, p.actor.UserID, title, format, f)
	if err != nil {
		return fmt.Errorf("failed to load deck: %w", err)
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s (%d cards, %s)", set.Title, len(set.Cards), d)))
	fmt.Fprintln(out, dimStyle.Render("type "+quitCommand+" to stop"))

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		q, err := p.practice.StartOrResume(ctx, p.actor, set.ID, d)
		if err != nil {
			return err
		}
		printQuestion(out, q)

		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == quitCommand {
			break
		}

		outcome, err := p.practice.SubmitAnswer(ctx, p.actor, set.ID, d, parseAnswer(d, line))
		if err != nil {
			if errors.Is(err, engine.ErrNoActiveSession) {
				continue
			}
			return err
		}
		printOutcome(out, outcome)
		if outcome.Finished() {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	dash, err := p.accounts.Dashboard(ctx, p.actor.UserID)
	if err != nil {
		return err
	}
	printDashboard(out, dash)
	return nil
}

// parseAnswer treats a bare number as an option pick in multiple choice.
func parseAnswer(d domain.Discipline, line string) engine.Answer {
	a := engine.Answer{Text: line}
	if d == domain.DisciplineMultipleChoice {
		if n, err := strconv.Atoi(line); err == nil && n > 0 {
			a.Choice = n
		}
	}
	return a
}

func printQuestion(w io.Writer, q *engine.Question) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("[%d/%d] score %d", q.Position, q.Total, q.Score)))
	fmt.Fprintln(w, promptStyle.Render(q.Prompt))
	for i, opt := range q.Options {
		fmt.Fprintf(w, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprint(w, "> ")
}

func printOutcome(w io.Writer, o *practice.Outcome) {
	line := verdictLabel(o.Verdict)
	if o.PointsAwarded > 0 {
		line += fmt.Sprintf(" +%d", o.PointsAwarded)
	}
	fmt.Fprintln(w, line)

	switch o.Verdict {
	case similarity.Partial:
		if o.Hint != "" {
			fmt.Fprintln(w, dimStyle.Render("hint: "+o.Hint))
		}
	case similarity.Wrong:
		if o.Expected != "" {
			fmt.Fprintln(w, dimStyle.Render("answer: "+o.Expected))
		}
	}

	if o.Summary != nil {
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Finished: %d/%d", o.Summary.Score, o.Summary.Total)))
	}
}

func printDashboard(w io.Writer, d *account.Dashboard) {
	lines := []string{
		fmt.Sprintf("Points  %d", d.Points),
		fmt.Sprintf("Level   %s", d.Level),
		fmt.Sprintf("Streak  %d", d.Streak),
		fmt.Sprintf("Today   %d/%d", d.Challenge.Progress, d.Challenge.Goal),
	}
	if len(d.Badges) > 0 {
		lines = append(lines, "Badges  "+strings.Join(d.Badges, ", "))
	}
	fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
}
