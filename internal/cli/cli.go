// Package cli implements the fiscalizo command line client. It drives the same services
// as the HTTP API against a locally persisted session.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/noah-isme/eufiscalizo-api/internal/dto"
	"github.com/noah-isme/eufiscalizo-api/internal/models"
	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
)

// ErrUsage is returned for unknown commands or malformed flags.
var ErrUsage = errors.New("usage error")

type identity interface {
	Restore(ctx context.Context)
	Current() *models.User
	SignIn(ctx context.Context, email, password string) (bool, error)
	SignUp(ctx context.Context, req models.RegisterRequest) (bool, error)
	SignOut(ctx context.Context) error
	Users(ctx context.Context) ([]models.User, error)
}

type inspections interface {
	Submit(ctx context.Context, actor models.Actor, req dto.CreateInspectionRequest) (*models.Inspection, error)
	Advance(ctx context.Context, actor models.Actor, id string, req dto.AdvanceStatusRequest) (*models.Inspection, error)
	RateResolution(ctx context.Context, actor models.Actor, id string, req dto.FeedbackRequest) (*models.Inspection, error)
	List(ctx context.Context, actor models.Actor, filter models.InspectionFilter) ([]models.Inspection, error)
	Stats(ctx context.Context, actor models.Actor) (models.InspectionStats, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, actor models.Actor, id string) (*dto.InspectionDetail, error)
	Export(ctx context.Context, actor models.Actor, format dto.ExportFormat, filter models.InspectionFilter) (*dto.ExportResult, error)
}

type command struct {
	summary string
	auth    bool
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":      {summary: "sign in with -email and -password", run: (*App).login},
	"register":   {summary: "create an account and sign in", run: (*App).register},
	"logout":     {summary: "clear the local session", run: (*App).logout},
	"whoami":     {summary: "show the signed-in principal", run: (*App).whoami},
	"users":      {summary: "list registered principals (admin)", auth: true, run: (*App).users},
	"report":     {summary: "submit a new inspection (student)", auth: true, run: (*App).report},
	"list":       {summary: "list visible inspections", auth: true, run: (*App).list},
	"show":       {summary: "show one inspection by -id", auth: true, run: (*App).show},
	"stats":      {summary: "count visible inspections by status", auth: true, run: (*App).stats},
	"categories": {summary: "list inspection categories", auth: true, run: (*App).categories},
	"advance":    {summary: "move an inspection to its next status (admin)", auth: true, run: (*App).advance},
	"feedback":   {summary: "rate a resolved inspection (student)", auth: true, run: (*App).feedback},
	"export":     {summary: "write the inspection list as csv or pdf (admin)", auth: true, run: (*App).export},
}

// App dispatches commands.
type App struct {
	identity    identity
	inspections inspections
	out         io.Writer
}

// New builds an App writing human readable output to out.
func New(id identity, svc inspections, out io.Writer) *App {
	if out == nil {
		out = os.Stdout
	}
	return &App{identity: id, inspections: svc, out: out}
}

// Run restores the session and executes args[0] with the remaining flags.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		a.usage()
		if len(args) == 0 {
			return ErrUsage
		}
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	a.identity.Restore(ctx)
	if cmd.auth && a.identity.Current() == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "not signed in, run: fiscalizo login")
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "usage: fiscalizo <command> [flags]")
	fmt.Fprintln(a.out)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", name, commands[name].summary)
	}
	_ = tw.Flush()
}

func (a *App) actor() models.Actor {
	return models.ActorFromUser(a.identity.Current())
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "shared access code")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("%w: -email and -password are required", ErrUsage)
	}

	ok, err := a.identity.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.ErrInvalidCredentials
	}
	user := a.identity.Current()
	fmt.Fprintf(a.out, "signed in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "access code (not stored)")
	role := fs.String("role", string(models.RoleStudent), "student or admin")
	matricula := fs.String("matricula", "", "student enrolment number")
	curso := fs.String("curso", "", "student course")
	if err := parse(fs, args); err != nil {
		return err
	}

	req := models.RegisterRequest{
		Name:     strings.TrimSpace(*name),
		Email:    strings.TrimSpace(*email),
		Password: *password,
		Role:     models.UserRole(*role),
	}
	if req.Name == "" || req.Email == "" {
		return fmt.Errorf("%w: -name and -email are required", ErrUsage)
	}
	if !req.Role.Valid() {
		return fmt.Errorf("%w: -role must be student or admin", ErrUsage)
	}
	if *matricula != "" {
		req.Matricula = matricula
	}
	if *curso != "" {
		req.Curso = curso
	}

	if _, err := a.identity.SignUp(ctx, req); err != nil {
		return err
	}
	user := a.identity.Current()
	fmt.Fprintf(a.out, "registered %s (%s) with id %s\n", user.Name, user.Role, user.ID)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.identity.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *App) whoami(context.Context, []string) error {
	user := a.identity.Current()
	if user == nil {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s id=%s\n", user.Name, user.Email, user.Role, user.ID)
	return nil
}

func (a *App) users(ctx context.Context, _ []string) error {
	if a.actor().Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can list users")
	}
	items, err := a.identity.Users(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
	}
	return tw.Flush()
}

func (a *App) report(ctx context.Context, args []string) error {
	fs := a.flags("report")
	var req dto.CreateInspectionRequest
	fs.StringVar(&req.Title, "title", "", "short title")
	fs.StringVar(&req.Description, "description", "", "what is wrong")
	fs.StringVar(&req.Category, "category", "", "one of the known categories")
	fs.StringVar(&req.Location, "location", "", "building and room")
	media := fs.String("media", "", "optional photo URL")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *media != "" {
		req.MediaURL = media
	}

	created, err := a.inspections.Submit(ctx, a.actor(), req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "inspection %s recorded as %s\n", created.ID, created.Status.Label())
	return nil
}

func (a *App) filterFlags(fs *flag.FlagSet) *dto.InspectionQuery {
	q := &dto.InspectionQuery{}
	fs.StringVar(&q.Search, "search", "", "match title, description or location")
	fs.StringVar(&q.Category, "category", "", "category or all")
	fs.StringVar(&q.Status, "status", "", "recebida, em_processo, concluida or all")
	return q
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	q := a.filterFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	items, err := a.inspections.List(ctx, a.actor(), q.Filter())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "no inspections found")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCATEGORY\tTITLE\tLOCATION\tCREATED")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", item.ID, item.Status.Label(), item.Category, item.Title, item.Location,
			item.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (a *App) show(ctx context.Context, args []string) error {
	fs := a.flags("show")
	id := fs.String("id", "", "inspection id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}

	detail, err := a.inspections.Get(ctx, a.actor(), *id)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", detail.ID)
	fmt.Fprintf(tw, "title:\t%s\n", detail.Title)
	fmt.Fprintf(tw, "status:\t%s\n", detail.Status.Label())
	fmt.Fprintf(tw, "category:\t%s\n", detail.Category)
	fmt.Fprintf(tw, "location:\t%s\n", detail.Location)
	fmt.Fprintf(tw, "student:\t%s\n", detail.StudentName)
	fmt.Fprintf(tw, "description:\t%s\n", detail.Description)
	if detail.MediaURL != nil {
		fmt.Fprintf(tw, "media:\t%s\n", *detail.MediaURL)
	}
	if detail.AdminResponse != nil {
		fmt.Fprintf(tw, "response:\t%s\n", *detail.AdminResponse)
	}
	if detail.Feedback != nil {
		fmt.Fprintf(tw, "rating:\t%d (%s)\n", detail.Feedback.Rating, detail.RatingLabel)
		if detail.Feedback.Comment != "" {
			fmt.Fprintf(tw, "comment:\t%s\n", detail.Feedback.Comment)
		}
	}
	if len(detail.AllowedActions) > 0 {
		fmt.Fprintf(tw, "actions:\t%s\n", strings.Join(detail.AllowedActions, ", "))
	}
	return tw.Flush()
}

func (a *App) stats(ctx context.Context, _ []string) error {
	stats, err := a.inspections.Stats(ctx, a.actor())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "total:\t%d\n", stats.Total)
	fmt.Fprintf(tw, "%s:\t%d\n", models.StatusReceived.Label(), stats.Received)
	fmt.Fprintf(tw, "%s:\t%d\n", models.StatusInProgress.Label(), stats.InProgress)
	fmt.Fprintf(tw, "%s:\t%d\n", models.StatusResolved.Label(), stats.Resolved)
	if stats.AverageRating > 0 {
		fmt.Fprintf(tw, "average rating:\t%.1f\n", stats.AverageRating)
	}
	return tw.Flush()
}

func (a *App) categories(ctx context.Context, _ []string) error {
	items, err := a.inspections.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range items {
		fmt.Fprintln(a.out, c)
	}
	return nil
}

func (a *App) advance(ctx context.Context, args []string) error {
	fs := a.flags("advance")
	id := fs.String("id", "", "inspection id")
	status := fs.String("status", "", "target status; defaults to the next stage")
	resp := fs.String("response", "", "message shown to the student")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}

	req := dto.AdvanceStatusRequest{Status: models.InspectionStatus(*status)}
	if req.Status == "" {
		current, err := a.inspections.Get(ctx, a.actor(), *id)
		if err != nil {
			return err
		}
		next, ok := current.Status.NextStatus()
		if !ok {
			return appErrors.Clone(appErrors.ErrIllegalTransition, "inspection is already resolved")
		}
		req.Status = next
	}
	if *resp != "" {
		req.AdminResponse = resp
	}

	updated, err := a.inspections.Advance(ctx, a.actor(), *id, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "inspection %s is now %s\n", updated.ID, updated.Status.Label())
	return nil
}

func (a *App) feedback(ctx context.Context, args []string) error {
	fs := a.flags("feedback")
	id := fs.String("id", "", "inspection id")
	rating := fs.Int("rating", 0, "1 to 5")
	comment := fs.String("comment", "", "optional comment")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", ErrUsage)
	}

	updated, err := a.inspections.RateResolution(ctx, a.actor(), *id, dto.FeedbackRequest{Rating: *rating, Comment: *comment})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "rated inspection %s: %s\n", updated.ID, models.RatingLabel(updated.Feedback.Rating))
	return nil
}

func (a *App) export(ctx context.Context, args []string) error {
	fs := a.flags("export")
	format := fs.String("format", string(dto.ExportCSV), "csv or pdf")
	out := fs.String("out", "", "output file; defaults to the generated name")
	q := a.filterFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	result, err := a.inspections.Export(ctx, a.actor(), dto.ExportFormat(*format), q.Filter())
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = result.Filename
	}
	if err := os.WriteFile(path, result.Body, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(a.out, "wrote %d bytes to %s\n", len(result.Body), path)
	return nil
}
