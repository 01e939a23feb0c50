package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"tadoku-client/internal/api"
	"tadoku-client/internal/config"
	"tadoku-client/internal/logger"
	"tadoku-client/internal/models"
	"tadoku-client/internal/quota"
	"tadoku-client/internal/session"
	"tadoku-client/internal/stories"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const usage = `Usage: reader <command> [flags]

Commands:
  signup    -email E -password P   Register a new account
  login     -email E -password P   Log in and persist the session token
  logout                           Clear the persisted session
  list      [-page N]              List your stories
  show      -id N                  Show one story with its read count
  generate  -prompt S              Generate a new story from a prompt
  retitle   -id N -title S         Rename a story
  read      -id N [-confirm]       Mark a story as read
  unread    -id N -confirm         Undo the most recent read
  delete    -id N [-confirm]       Delete a story
  quota                            Show today's generation quota
  stats                            Show aggregate reading statistics
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env необязателен - отсутствие файла не ошибка.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return err
	}
	defer log.Sync()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("no command given")
	}
	command := os.Args[1]
	args := os.Args[2:]

	sess, err := session.NewStore(cfg.SessionDir, log)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Restore(); err != nil {
		log.Warn("Failed to restore session, continuing unauthenticated", zap.Error(err))
	}

	client, err := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, sess, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout+5*time.Second)
	defer cancel()

	switch command {
	case "signup":
		return runSignup(ctx, client, args)
	case "login":
		return runLogin(ctx, client, sess, args)
	case "logout":
		return sess.Logout()
	case "list":
		return runList(ctx, client, cfg.PageSize, log, args)
	case "show":
		return runShow(ctx, client, log, args)
	case "generate":
		return runGenerate(ctx, client, log, args)
	case "retitle":
		return runRetitle(ctx, client, log, args)
	case "read":
		return runRead(ctx, client, log, args)
	case "unread":
		return runUnread(ctx, client, log, args)
	case "delete":
		return runDelete(ctx, client, cfg.PageSize, log, args)
	case "quota":
		return runQuota(ctx, client, log)
	case "stats":
		return runStats(ctx, client)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runSignup(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if err := client.SignUp(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Println("Account created. Log in with: reader login -email ... -password ...")
	return nil
}

func runLogin(ctx context.Context, client *api.Client, sess *session.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	token, err := client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := sess.Login(token); err != nil {
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

func runList(ctx context.Context, client *api.Client, pageSize int, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	fs.Parse(args)

	collection := stories.NewCollection(client, pageSize, log)
	if err := collection.Load(ctx, *page); err != nil {
		return err
	}

	sp := collection.Page()
	if sp == nil || len(sp.Stories) == 0 {
		fmt.Println("You haven't generated any stories yet.")
		return nil
	}
	for _, s := range sp.Stories {
		fmt.Printf("%6d  %-40s  %5d words  %s\n", s.ID, s.Title, s.WordCount, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("Page %d of %d\n", sp.Page, sp.TotalPages)
	return nil
}

func runShow(ctx context.Context, client *api.Client, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.Int("id", 0, "story id")
	fs.Parse(args)

	detail := stories.NewDetail(client, log)
	if err := detail.Load(ctx, *id); err != nil {
		return err
	}

	s := detail.Story()
	fmt.Printf("%s\n\n%s\n\n(%d words, read %d times, created %s)\n",
		s.Title, s.Content, s.WordCount, s.ReadCount, s.CreatedAt.Format("2006-01-02"))
	return nil
}

func runGenerate(ctx context.Context, client *api.Client, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	prompt := fs.String("prompt", "", "story prompt")
	fs.Parse(args)

	tracker := quota.NewTracker(client, log)
	if err := tracker.Refresh(ctx); err != nil {
		return err
	}
	if !tracker.CanGenerate() {
		status, _ := tracker.Status()
		return fmt.Errorf("%w (%d/%d used today)", models.ErrRateLimited, status.CurrentCount, status.Limit)
	}

	story, err := client.GenerateStory(ctx, *prompt)
	if err != nil {
		return err
	}
	tracker.RecordSuccess()

	status, _ := tracker.Status()
	fmt.Printf("%s\n\n%s\n\n(%d words; %d/%d generations used today)\n",
		story.Title, story.Content, story.WordCount, status.CurrentCount, status.Limit)
	return nil
}

func runRetitle(ctx context.Context, client *api.Client, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("retitle", flag.ExitOnError)
	id := fs.Int("id", 0, "story id")
	title := fs.String("title", "", "new title")
	fs.Parse(args)

	detail := stories.NewDetail(client, log)
	if err := detail.Load(ctx, *id); err != nil {
		return err
	}
	if err := detail.EditTitle(ctx, *title); err != nil {
		return err
	}
	fmt.Printf("Title updated to %q.\n", detail.Story().Title)
	return nil
}

func runRead(ctx context.Context, client *api.Client, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	id := fs.Int("id", 0, "story id")
	confirm := fs.Bool("confirm", false, "confirm a repeated read")
	fs.Parse(args)

	detail := stories.NewDetail(client, log)
	if err := detail.Load(ctx, *id); err != nil {
		return err
	}

	err := detail.MarkAsRead(ctx)
	if errors.Is(err, models.ErrConfirmationRequired) {
		if !*confirm {
			detail.Cancel()
			fmt.Printf("You already read this story %d times. Re-run with -confirm to record another read.\n",
				detail.Story().ReadCount)
			return nil
		}
		err = detail.Confirm(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Marked as read (%d times total).\n", detail.Story().ReadCount)
	return nil
}

func runUnread(ctx context.Context, client *api.Client, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("unread", flag.ExitOnError)
	id := fs.Int("id", 0, "story id")
	confirm := fs.Bool("confirm", false, "confirm removing the last read event")
	fs.Parse(args)

	detail := stories.NewDetail(client, log)
	if err := detail.Load(ctx, *id); err != nil {
		return err
	}

	err := detail.UndoLastRead(ctx)
	if errors.Is(err, models.ErrConfirmationRequired) {
		if !*confirm {
			detail.Cancel()
			fmt.Println("Undoing a read removes history and cannot be redone. Re-run with -confirm.")
			return nil
		}
		err = detail.Confirm(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Read count is now %d.\n", detail.Story().ReadCount)
	return nil
}

func runDelete(ctx context.Context, client *api.Client, pageSize int, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Int("id", 0, "story id")
	page := fs.Int("page", 1, "page the story is listed on")
	confirm := fs.Bool("confirm", false, "confirm the deletion")
	fs.Parse(args)

	collection := stories.NewCollection(client, pageSize, log)
	if err := collection.Load(ctx, *page); err != nil {
		return err
	}
	if err := collection.RequestDelete(*id); err != nil {
		return err
	}
	if !*confirm {
		collection.CancelDelete()
		fmt.Printf("Deletion is irreversible. Re-run with -confirm to delete story %d.\n", *id)
		return nil
	}
	if err := collection.ConfirmDelete(ctx); err != nil {
		return err
	}
	fmt.Printf("Story %d deleted.\n", *id)
	return nil
}

func runQuota(ctx context.Context, client *api.Client, log *zap.Logger) error {
	tracker := quota.NewTracker(client, log)
	if err := tracker.Refresh(ctx); err != nil {
		return err
	}
	status, _ := tracker.Status()
	fmt.Printf("Generations used today: %d of %d\n", status.CurrentCount, status.Limit)
	if !status.CanGenerate() {
		fmt.Println("Daily limit reached - the quota resets on the server's daily boundary.")
	}
	return nil
}

func runStats(ctx context.Context, client *api.Client) error {
	stats, err := client.UserStats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Total words read:   %d\n", stats.TotalWordCount)
	fmt.Printf("Today:              %d\n", stats.TodayWordCount)
	fmt.Printf("This week:          %d\n", stats.WeeklyWordCount)
	fmt.Printf("This month:         %d\n", stats.MonthlyWordCount)
	fmt.Printf("This year:          %d\n", stats.YearlyWordCount)
	if len(stats.Last7DaysWordCount) > 0 {
		fmt.Println("Last 7 days:")
		for date, count := range stats.Last7DaysWordCount {
			fmt.Printf("  %s  %d\n", date, count)
		}
	}
	return nil
}
