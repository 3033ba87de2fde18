package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-school-portal/auth"
	"github.com/jrsteele09/go-school-portal/internal/config"
	"github.com/jrsteele09/go-school-portal/school"
	"github.com/jrsteele09/go-school-portal/server"
	"github.com/jrsteele09/go-school-portal/users"
	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	nowFunc          = time.Now          // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("not logged in, run: schoolctl login -phone PHONE")
)

type commandLine struct {
	cfg     config.Config
	manager *auth.Manager
	school  *school.Client
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -phone PHONE [-password PASSWORD] - log in, the password is prompted when omitted")
	fmt.Fprintln(cli.out, "  logout                                  - end the session")
	fmt.Fprintln(cli.out, "  status [-verify]                        - show the current session")
	fmt.Fprintln(cli.out, "  get PATH                                - authenticated GET, body written to stdout")
	fmt.Fprintln(cli.out, "  homework                                - list homework")
	fmt.Fprintln(cli.out, "  schedule                                - show the weekly schedule (students)")
	fmt.Fprintln(cli.out, "  grades                                  - list grades (students)")
	fmt.Fprintln(cli.out, "  serve [-port :PORT]                     - run the local portal")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "login":
		return cli.login(ctx, args[2:])
	case "logout":
		cli.manager.Logout()
		fmt.Fprintln(cli.out, "Logged out")
		return nil
	case "status":
		return cli.status(ctx, args[2:])
	case "get":
		return cli.get(ctx, args[2:])
	case "homework":
		return cli.homework(ctx)
	case "schedule":
		return cli.schedule(ctx)
	case "grades":
		return cli.grades(ctx)
	case "serve":
		return cli.serve(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, args []string) error {
	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginCmd.SetOutput(cli.out)
	phone := loginCmd.String("phone", "", "Phone number, 998XXXXXXXXX")
	password := loginCmd.String("password", "", "Password. Prompted when omitted.")
	if err := loginCmd.Parse(args); err != nil {
		return errHelp
	}
	if *phone == "" {
		loginCmd.Usage()
		return errHelp
	}

	if *password == "" {
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		*password = string(pwd)
	}

	creds, err := auth.NewValidator().ValidateCredentials(*phone, *password)
	if err != nil {
		return err
	}

	session, err := cli.manager.Login(ctx, creds.Phone, creds.Password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s (%s), dashboard %s\n", session.Name, session.Role, auth.RoleHomePath(session.Role))
	return nil
}

func (cli *commandLine) status(ctx context.Context, args []string) error {
	statusCmd := flag.NewFlagSet("status", flag.ContinueOnError)
	statusCmd.SetOutput(cli.out)
	verify := statusCmd.Bool("verify", false, "Ask the backend whether the session is still valid")
	if err := statusCmd.Parse(args); err != nil {
		return errHelp
	}

	session, ok := cli.manager.Current()
	if !ok {
		fmt.Fprintln(cli.out, "Not logged in")
		return nil
	}
	if *verify && !cli.manager.CheckSession(ctx) {
		fmt.Fprintln(cli.out, "Session is no longer valid, logged out")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name\t%s\n", session.Name)
	fmt.Fprintf(w, "Role\t%s\n", session.Role)
	fmt.Fprintf(w, "User ID\t%s\n", session.UserID)
	fmt.Fprintf(w, "Dashboard\t%s\n", auth.RoleHomePath(session.Role))
	if tok, err := cli.manager.TokenSource().Token(); err == nil && !tok.Expiry.IsZero() {
		fmt.Fprintf(w, "Access token expires\t%s\n", tok.Expiry.Local().Format(time.RFC1123))
	}
	return w.Flush()
}

func (cli *commandLine) get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		cli.printUsage()
		return errHelp
	}
	if !cli.manager.RequireRole("") {
		return errNotLoggedIn
	}

	path := args[0]
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	resp, err := cli.manager.Get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(cli.out, resp.Body); err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: %s", path, http.StatusText(resp.StatusCode))
	}
	return nil
}

func (cli *commandLine) homework(ctx context.Context) error {
	if !cli.manager.RequireRole("") {
		return errNotLoggedIn
	}
	items, err := cli.school.Homework(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(cli.out, "No homework")
		return nil
	}

	now := nowFunc()
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOURSE\tSTATUS\tREMAINING")
	for _, hw := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", hw.ID, hw.Title, hw.Course, hw.Status, remaining(hw, now))
	}
	return w.Flush()
}

func (cli *commandLine) schedule(ctx context.Context) error {
	if err := cli.requireStudent(); err != nil {
		return err
	}
	items, err := cli.school.MySchedule(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tTIME\tCOURSE\tTEACHER\tROOM")
	for _, s := range items {
		fmt.Fprintf(w, "%s\t%s-%s\t%s\t%s\t%s\n", s.DayOfWeek, s.StartTime, s.EndTime, s.CourseName, s.TeacherName, s.Room)
	}
	return w.Flush()
}

func (cli *commandLine) grades(ctx context.Context) error {
	if err := cli.requireStudent(); err != nil {
		return err
	}
	items, err := cli.school.MyGrades(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HOMEWORK\tCOURSE\tGRADE\tFEEDBACK")
	for _, g := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.HomeworkTitle, g.Course, g.Grade, g.Feedback)
	}
	return w.Flush()
}

func (cli *commandLine) requireStudent() error {
	role := cli.manager.Role()
	if cli.manager.RequireRole(users.RoleStudent) {
		return nil
	}
	if role == "" {
		return errNotLoggedIn
	}
	return fmt.Errorf("only available to students, logged in as %s", role)
}

func (cli *commandLine) serve(ctx context.Context, args []string) error {
	serveCmd := flag.NewFlagSet("serve", flag.ContinueOnError)
	serveCmd.SetOutput(cli.out)
	port := serveCmd.String("port", cli.cfg.GetPort(), "Listen address of the portal")
	if err := serveCmd.Parse(args); err != nil {
		return errHelp
	}

	handler, err := server.New(cli.cfg, cli.manager, cli.school)
	if err != nil {
		return err
	}

	displayAppname(cli.cfg.GetAppName())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cli.manager.Start(ctx)
	defer cli.manager.Close()

	srv := &http.Server{Addr: *port, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go listenAndServe(srv, errc)
	if err := waitForStopSignal(errc); err != nil {
		return err
	}
	return shutdown(srv)
}

func remaining(hw school.Homework, now time.Time) string {
	if _, ok := hw.DeadlineTime(); !ok {
		return "-"
	}
	left := hw.TimeRemaining(now)
	if left <= 0 {
		return "expired"
	}
	days := int(left / (24 * time.Hour))
	hours := int(left % (24 * time.Hour) / time.Hour)
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", int(left/time.Minute))
}
