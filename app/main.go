package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	"github.com/joho/godotenv"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/AncaElena10/MERN-jobify/app/client"
	"github.com/AncaElena10/MERN-jobify/app/persistence"
	"github.com/AncaElena10/MERN-jobify/app/store"
)

var opts struct {
	API       string        `short:"a" long:"api" env:"JOBIFY_API" default:"http://localhost:5000/api/v1" description:"backend API root"`
	StateFile string        `short:"s" long:"state" env:"JOBIFY_STATE" default:"jobify-session.db" description:"session database location"`
	Timeout   time.Duration `long:"timeout" env:"JOBIFY_TIMEOUT" default:"30s" description:"http client timeout"`

	Filter struct {
		Search string `long:"search" env:"SEARCH" description:"search term"`
		Status string `long:"status" env:"STATUS" description:"status filter (pending/interview/declined/all)"`
		Type   string `long:"type" env:"TYPE" description:"job type filter (full-time/part-time/remote/internship/all)"`
		Sort   string `long:"sort" env:"SORT" description:"sort order (latest/oldest/a-z/z-a)"`
		Page   int    `long:"page" env:"PAGE" description:"page number"`
	} `group:"filter" namespace:"filter" env-namespace:"JOBIFY_FILTER"`

	Repeater struct {
		Attempts int           `long:"attempts" env:"ATTEMPTS" default:"3" description:"how many times to repeat a failed call"`
		Duration time.Duration `long:"duration" env:"DURATION" default:"500ms" description:"initial retry delay"`
		Factor   float64       `long:"factor" env:"FACTOR" default:"2" description:"backoff factor"`
		Jitter   bool          `long:"jitter" env:"JITTER" description:"add jitter to retries"`
	} `group:"repeater" namespace:"repeater" env-namespace:"JOBIFY_REPEATER"`

	LogEnabled bool   `long:"log" env:"JOBIFY_LOG" description:"enable logging"`
	LogFile    string `long:"log-file" env:"JOBIFY_LOG_FILE" description:"also log to a rotated file"`
	Dbg        bool   `long:"dbg" env:"DEBUG" description:"debug mode"`
}

var revision = "unknown"

func main() {
	fmt.Printf("jobify %s\n", revision)

	_ = godotenv.Load() // optional .env, real env vars win

	p := flags.NewParser(&opts, flags.Default)
	p.Usage = "[OPTIONS] command [args...]"
	args, err := p.Parse()
	if err != nil {
		os.Exit(2)
	}
	setupLogs(opts.LogEnabled, opts.Dbg, opts.LogFile)

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	if len(args) == 0 {
		fmt.Println("expected a command: register, login, logout, whoami, update, jobs, add, edit, delete, stats, overview")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	signals(cancel) // handle SIGTERM and SIGINT

	if err := run(ctx, args[0], args[1:]); err != nil {
		log.Printf("[ERROR] %s failed: %v", args[0], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	sessions, err := persistence.NewSessionStore(opts.StateFile)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Printf("[WARN] failed to close session store: %v", err)
		}
	}()
	if err := sessions.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	user, token, location := sessions.Load()
	st := store.New(store.Config{Initial: store.Initial(user, token, location)})

	rptr := repeater.New(&strategy.Backoff{Repeats: opts.Repeater.Attempts, Duration: opts.Repeater.Duration,
		Factor: opts.Repeater.Factor, Jitter: opts.Repeater.Jitter})

	jobify := client.New(client.Config{
		Store:    st,
		Sessions: sessions,
		BaseURL:  opts.API,
		Client:   &http.Client{Timeout: opts.Timeout},
		Repeater: rptr,
	})
	applyFilters(jobify)

	err = dispatch(ctx, jobify, st, command, args)
	reportAlert(st)
	return err
}

// dispatch maps a CLI command to its dispatcher call.
func dispatch(ctx context.Context, jobify *client.Client, st *store.Store, command string, args []string) error {
	switch command {
	case "register":
		if len(args) != 3 {
			return fmt.Errorf("usage: register <name> <email> <password>")
		}
		creds := client.Credentials{Name: args[0], Email: args[1], Password: args[2]}
		return jobify.SetupUser(ctx, creds, "register", "User created! Redirecting...")

	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		creds := client.Credentials{Email: args[0], Password: args[1]}
		return jobify.SetupUser(ctx, creds, "login", "Login successful! Redirecting...")

	case "logout":
		jobify.LogoutUser()
		fmt.Println("logged out")
		return nil

	case "whoami":
		if err := jobify.FetchUser(ctx); err != nil {
			return err
		}
		printUser(st.State().User)
		return nil

	case "update":
		if len(args) != 3 {
			return fmt.Errorf("usage: update <name> <email> <location>")
		}
		profile := client.Profile{Name: args[0], Email: args[1], Location: args[2]}
		if err := jobify.UpdateUser(ctx, profile); err != nil {
			return err
		}
		printUser(st.State().User)
		return nil

	case "jobs":
		if err := jobify.GetJobs(ctx); err != nil {
			return err
		}
		printJobs(st.State())
		return nil

	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: add <position> <company> [location]")
		}
		jobify.HandleChange("position", args[0])
		jobify.HandleChange("company", args[1])
		if len(args) > 2 {
			jobify.HandleChange("jobLocation", args[2])
		}
		return jobify.CreateJob(ctx)

	case "edit":
		if len(args) < 1 {
			return fmt.Errorf("usage: edit <job-id> [field=value...]")
		}
		if err := jobify.GetJobs(ctx); err != nil { // the edit target is looked up in the fetched list
			return err
		}
		jobify.SetEditJob(args[0])
		if !st.State().IsEditing {
			return fmt.Errorf("job %s not found on the current page", args[0])
		}
		for _, kv := range args[1:] {
			field, value, ok := strings.Cut(kv, "=")
			if !ok || field == "" {
				return fmt.Errorf("expected field=value, got %q", kv)
			}
			jobify.HandleChange(field, value)
		}
		return jobify.EditJob(ctx)

	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: delete <job-id>")
		}
		return jobify.DeleteJob(ctx, args[0])

	case "stats":
		if err := jobify.GetStatistics(ctx); err != nil {
			return err
		}
		printStats(st.State())
		return nil

	case "overview":
		if err := jobify.Refresh(ctx); err != nil {
			return err
		}
		printJobs(st.State())
		printStats(st.State())
		return nil
	}

	return fmt.Errorf("unknown command %q", command)
}

// applyFilters pushes the filter options into the store before list commands.
func applyFilters(jobify *client.Client) {
	if opts.Filter.Search != "" {
		jobify.HandleChange("search", opts.Filter.Search)
	}
	if opts.Filter.Status != "" {
		jobify.HandleChange("filterByStatus", opts.Filter.Status)
	}
	if opts.Filter.Type != "" {
		jobify.HandleChange("filterByJobType", opts.Filter.Type)
	}
	if opts.Filter.Sort != "" {
		jobify.HandleChange("sort", opts.Filter.Sort)
	}
	if opts.Filter.Page > 0 {
		jobify.ChangePage(opts.Filter.Page)
	}
}

func printUser(u *store.User) {
	if u == nil {
		fmt.Println("not logged in")
		return
	}
	fmt.Printf("%s <%s> %s\n", u.Name, u.Email, u.Location)
}

func printJobs(st store.AppState) {
	fmt.Printf("jobs: %d total, page %d of %d\n", st.TotalJobs, st.Page, st.NumOfPages)
	for _, j := range st.Jobs {
		fmt.Printf("  %s  %-20s %-20s %-10s %-10s %s\n", j.ID, j.Position, j.Company,
			j.Status, j.JobType, j.CreatedAt.Format("2006-01-02"))
	}
}

func printStats(st store.AppState) {
	fmt.Printf("pending: %d, interview: %d, declined: %d\n",
		st.Statistics[store.StatusPending], st.Statistics[store.StatusInterview], st.Statistics[store.StatusDeclined])
	for _, m := range st.MonthlyApplications {
		fmt.Printf("  %s %d: %d\n", m.Month, m.Year, m.Count)
	}
}

// reportAlert prints the transient alert resulting from the last operation.
func reportAlert(st *store.Store) {
	state := st.State()
	if state.ShowAlert {
		fmt.Printf("[%s] %s\n", state.AlertType, state.AlertText)
	}
}

func setupLogs(enabled, dbg bool, logFile string) io.Writer {
	if !enabled {
		log.Setup(log.Out(io.Discard), log.Err(io.Discard))
		return io.Discard
	}

	logOpts := []log.Option{log.Msec}
	if dbg {
		logOpts = append(logOpts, log.Debug, log.CallerFunc, log.CallerPkg, log.CallerFile)
	}

	var out io.Writer = os.Stderr
	if logFile != "" {
		out = &lumberjack.Logger{Filename: logFile, MaxSize: 10, MaxBackups: 3, MaxAge: 30, Compress: true}
	}
	logOpts = append(logOpts, log.Out(out))
	log.Setup(logOpts...)
	return out
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		for range sigChan {
			cancel() // terminate in-flight requests on SIGTERM/SIGINT
		}
	}()
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
}
