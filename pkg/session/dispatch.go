package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/notify"
	"github.com/amosWeiskopf/wpaudit/pkg/render"
	"github.com/amosWeiskopf/wpaudit/pkg/reporter"
	"github.com/amosWeiskopf/wpaudit/pkg/seo"
)

// Action names a user action
type Action string

const (
	ActionAnalyze       Action = "analyze"
	ActionSortSEO       Action = "sort-seo"
	ActionFilterSEO     Action = "filter-seo"
	ActionSEODetail     Action = "seo-detail"
	ActionFilterContent Action = "filter-content"
	ActionExport        Action = "export"
	ActionSave          Action = "save"
	ActionLoad          Action = "load"
	ActionListSaved     Action = "list-saved"
	ActionOpenSaved     Action = "open-saved"
	ActionDeleteSaved   Action = "delete-saved"
	ActionRender        Action = "render"
	ActionShow          Action = "show"
	ActionPrint         Action = "print"
	ActionReport        Action = "report"
	ActionSnapshot      Action = "snapshot"
)

// ErrUnknownAction is returned for actions missing from the dispatch table
var ErrUnknownAction = errors.New("unknown action")

// Handler executes an action with its positional arguments
type Handler func(ctx context.Context, args []string) error

type entry struct {
	usage   string
	handler Handler
}

// Dispatcher maps actions to session operations
type Dispatcher struct {
	session  *Session
	notifier notify.Notifier
	table    map[Action]entry
}

// NewDispatcher builds the dispatch table for s
func NewDispatcher(s *Session) *Dispatcher {
	d := &Dispatcher{session: s, notifier: s.notifier, table: map[Action]entry{}}

	d.register(ActionAnalyze, "analyze <url> [username] [password]", d.analyze)
	d.register(ActionSortSEO, "sort-seo asc|desc", d.sortSEO)
	d.register(ActionFilterSEO, "filter-seo <min score>", d.filterSEO)
	d.register(ActionSEODetail, "seo-detail <key>", d.seoDetail)
	d.register(ActionFilterContent, "filter-content [text]", d.filterContent)
	d.register(ActionExport, "export csv|json|markdown [path]", d.export)
	d.register(ActionSave, "save [url]", d.save)
	d.register(ActionLoad, "load <file>", d.load)
	d.register(ActionListSaved, "list-saved [url]", d.listSaved)
	d.register(ActionOpenSaved, "open-saved <filename> [url]", d.openSaved)
	d.register(ActionDeleteSaved, "delete-saved <filename> [url]", d.deleteSaved)
	d.register(ActionRender, "render [dashboard.html]", d.render)
	d.register(ActionShow, "show", d.show)
	d.register(ActionPrint, "print [section...]", d.print)
	d.register(ActionReport, "report json|html|markdown [path]", d.report)
	d.register(ActionSnapshot, "snapshot", d.snapshot)
	return d
}

func (d *Dispatcher) register(action Action, usage string, h Handler) {
	d.table[action] = entry{usage: usage, handler: h}
}

// Actions lists the registered actions in name order
func (d *Dispatcher) Actions() []Action {
	actions := make([]Action, 0, len(d.table))
	for a := range d.table {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// Usage returns the argument synopsis of action
func (d *Dispatcher) Usage(action Action) string {
	return d.table[action].usage
}

// Dispatch runs action with args
func (d *Dispatcher) Dispatch(ctx context.Context, action Action, args ...string) error {
	e, ok := d.table[action]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return e.handler(ctx, args)
}

// Execute parses a console line ("action arg...") and dispatches it
func (d *Dispatcher) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	return d.Dispatch(ctx, Action(strings.ToLower(fields[0])), fields[1:]...)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func requireArgs(action Action, args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("%s: missing arguments, usage: %s", action, usage)
	}
	return nil
}

func (d *Dispatcher) analyze(ctx context.Context, args []string) error {
	if err := requireArgs(ActionAnalyze, args, 1, d.Usage(ActionAnalyze)); err != nil {
		return err
	}
	_, err := d.session.Analyze(ctx, args[0], arg(args, 1), arg(args, 2))
	return err
}

func (d *Dispatcher) sortSEO(_ context.Context, args []string) error {
	order, err := seo.ParseOrder(arg(args, 0))
	if err != nil {
		return err
	}
	return d.session.SortSEO(order)
}

func (d *Dispatcher) filterSEO(_ context.Context, args []string) error {
	if err := requireArgs(ActionFilterSEO, args, 1, d.Usage(ActionFilterSEO)); err != nil {
		return err
	}
	minScore, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid minimum score %q", args[0])
	}
	return d.session.FilterSEO(minScore)
}

func (d *Dispatcher) seoDetail(_ context.Context, args []string) error {
	if err := requireArgs(ActionSEODetail, args, 1, d.Usage(ActionSEODetail)); err != nil {
		return err
	}
	_, err := d.session.SEODetail(args[0])
	return err
}

func (d *Dispatcher) filterContent(_ context.Context, args []string) error {
	return d.session.FilterContent(strings.Join(args, " "))
}

func (d *Dispatcher) export(ctx context.Context, args []string) error {
	if err := requireArgs(ActionExport, args, 1, d.Usage(ActionExport)); err != nil {
		return err
	}
	path, err := d.session.Export(ctx, args[0], arg(args, 1))
	if err != nil {
		return err
	}
	notify.Infof(d.notifier, "Exported %s", path)
	return nil
}

func (d *Dispatcher) save(ctx context.Context, args []string) error {
	_, err := d.session.Save(ctx, arg(args, 0))
	return err
}

func (d *Dispatcher) load(_ context.Context, args []string) error {
	if err := requireArgs(ActionLoad, args, 1, d.Usage(ActionLoad)); err != nil {
		return err
	}
	patch, err := d.session.LoadFile(args[0])
	if err != nil {
		return err
	}
	notify.Infof(d.notifier, "Loaded %d section(s) from %s", len(patch.Present()), args[0])
	return nil
}

func (d *Dispatcher) listSaved(ctx context.Context, args []string) error {
	saved, err := d.session.ListSaved(ctx, arg(args, 0))
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		notify.Infof(d.notifier, "No saved reports")
		return nil
	}
	for _, r := range saved {
		notify.Infof(d.notifier, "%s  %s", r.Filename, r.Timestamp)
	}
	return nil
}

func (d *Dispatcher) openSaved(ctx context.Context, args []string) error {
	if err := requireArgs(ActionOpenSaved, args, 1, d.Usage(ActionOpenSaved)); err != nil {
		return err
	}
	_, err := d.session.OpenSaved(ctx, arg(args, 1), args[0])
	return err
}

func (d *Dispatcher) deleteSaved(ctx context.Context, args []string) error {
	if err := requireArgs(ActionDeleteSaved, args, 1, d.Usage(ActionDeleteSaved)); err != nil {
		return err
	}
	if err := d.session.DeleteSaved(ctx, arg(args, 1), args[0]); err != nil {
		return err
	}
	notify.Infof(d.notifier, "Deleted %s", args[0])
	return nil
}

func (d *Dispatcher) render(_ context.Context, args []string) error {
	path := arg(args, 0)
	if err := d.session.Render(path); err != nil {
		return err
	}
	if path != "" {
		notify.Infof(d.notifier, "Dashboard written to %s", path)
	}
	return nil
}

func (d *Dispatcher) show(_ context.Context, _ []string) error {
	return d.session.Show()
}

func (d *Dispatcher) print(_ context.Context, args []string) error {
	fields := make([]models.Field, 0, len(args))
	for _, a := range args {
		f := models.Field(strings.ToLower(a))
		if !slices.Contains(render.AllFields, f) {
			return fmt.Errorf("unknown section %q", a)
		}
		fields = append(fields, f)
	}
	return d.session.Print(fields...)
}

func (d *Dispatcher) report(_ context.Context, args []string) error {
	format := arg(args, 0)
	if format == "" {
		format = reporter.FormatMarkdown
	}
	path, err := d.session.GenerateReport(format, arg(args, 1))
	if err != nil {
		return err
	}
	notify.Infof(d.notifier, "Report written to %s", path)
	return nil
}

func (d *Dispatcher) snapshot(_ context.Context, _ []string) error {
	path, err := d.session.Snapshot()
	if err != nil {
		return err
	}
	notify.Infof(d.notifier, "Snapshot written to %s", path)
	return nil
}
