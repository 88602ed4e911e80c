package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/aanand-mishra/school-admin/internal/export"
	"github.com/aanand-mishra/school-admin/internal/http/client"
	"github.com/aanand-mishra/school-admin/internal/types"
	"github.com/aanand-mishra/school-admin/internal/viewmodel"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp     = errors.New("help provided")
	errReported = errors.New("error already shown")
)

type commandLine struct {
	api   viewmodel.API
	log   *slog.Logger
	delay time.Duration

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.errOut, "Usage:")
	fmt.Fprintln(cli.errOut, "  school-admin [-config FILE] KIND COMMAND [flags]")
	fmt.Fprintln(cli.errOut, "")
	fmt.Fprintln(cli.errOut, "KIND is students or teachers.")
	fmt.Fprintln(cli.errOut, "  list                                                  - show every record")
	fmt.Fprintln(cli.errOut, "  add -fullname NAME -class N -gender G -age N          - add a record (students)")
	fmt.Fprintln(cli.errOut, "  edit -id ID [-fullname ..] [-class ..] [-gender ..] [-age ..] - change a record (students)")
	fmt.Fprintln(cli.errOut, "  delete -id ID [-yes]                                  - delete a record")
	fmt.Fprintln(cli.errOut, "  export -o FILE.xlsx                                   - write the list to a workbook")
}

// run executes args, which start with the program name.
func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 3 {
		cli.printUsage()
		return errHelp
	}

	kind, ok := parseKind(args[1])
	if !ok {
		cli.printUsage()
		return errHelp
	}
	res, _ := client.ResourceFor(kind)

	switch args[2] {
	case "list":
		return cli.list(ctx, res)

	case "add":
		cmd := flag.NewFlagSet("add", flag.ContinueOnError)
		cmd.SetOutput(cli.errOut)
		draft := draftFlags(cmd)
		if err := cmd.Parse(args[3:]); err != nil {
			return errHelp
		}
		return cli.add(ctx, res, fieldsSet(cmd, draft))

	case "edit":
		cmd := flag.NewFlagSet("edit", flag.ContinueOnError)
		cmd.SetOutput(cli.errOut)
		id := cmd.String("id", "", "The record's id.")
		draft := draftFlags(cmd)
		if err := cmd.Parse(args[3:]); err != nil {
			return errHelp
		}
		if *id == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.edit(ctx, res, *id, fieldsSet(cmd, draft))

	case "delete":
		cmd := flag.NewFlagSet("delete", flag.ContinueOnError)
		cmd.SetOutput(cli.errOut)
		id := cmd.String("id", "", "The record's id.")
		yes := cmd.Bool("yes", false, "Delete without asking.")
		if err := cmd.Parse(args[3:]); err != nil {
			return errHelp
		}
		return cli.remove(ctx, res, *id, *yes)

	case "export":
		cmd := flag.NewFlagSet("export", flag.ContinueOnError)
		cmd.SetOutput(cli.errOut)
		out := cmd.String("o", "", "Path of the .xlsx file to write.")
		if err := cmd.Parse(args[3:]); err != nil {
			return errHelp
		}
		if *out == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.export(ctx, res, *out)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) list(ctx context.Context, res client.Resource) error {
	st := viewmodel.NewRecordList(cli.api, res, cli.options()...).Load(ctx)
	if st.Phase == viewmodel.Failed {
		return errors.New(st.Err)
	}
	cli.printRecords(res.Kind, st.Records)
	return nil
}

func (cli *commandLine) add(ctx context.Context, res client.Resource, fields map[viewmodel.Field]string) error {
	done := make(chan struct{})
	form := viewmodel.NewAddForm(cli.api, res, cli.formOptions(done)...)
	defer form.Close()

	for field, value := range fields {
		if err := form.Set(field, value); err != nil {
			return err
		}
	}
	if err := form.Submit(ctx); err != nil {
		return submitError(err, form.State().Err)
	}

	fmt.Fprintf(cli.out, "%s added successfully! Redirecting...\n", res.Kind.Title())
	return cli.redirect(ctx, res, done)
}

func (cli *commandLine) edit(ctx context.Context, res client.Resource, id string, fields map[viewmodel.Field]string) error {
	done := make(chan struct{})
	form, err := viewmodel.OpenEditForm(ctx, cli.api, res, id, cli.formOptions(done)...)
	if err != nil {
		return errors.New(form.State().Err)
	}
	defer form.Close()

	for field, value := range fields {
		if err := form.Set(field, value); err != nil {
			return err
		}
	}
	if err := form.Submit(ctx); err != nil {
		return submitError(err, form.State().Err)
	}

	fmt.Fprintf(cli.out, "%s updated successfully! Redirecting...\n", res.Kind.Title())
	return cli.redirect(ctx, res, done)
}

func (cli *commandLine) remove(ctx context.Context, res client.Resource, id string, yes bool) error {
	confirm := viewmodel.ConfirmFunc(func(prompt string) bool {
		if yes {
			return true
		}
		return cli.ask(prompt)
	})

	list := viewmodel.NewRecordList(cli.api, res, append(cli.options(), viewmodel.WithConfirmer(confirm))...)
	err := list.Remove(ctx, id)
	switch {
	case errors.Is(err, viewmodel.ErrNotConfirmed):
		fmt.Fprintln(cli.out, "Cancelled.")
		return nil
	case err != nil:
		return errReported
	}

	fmt.Fprintf(cli.out, "%s deleted successfully!\n", res.Kind.Title())

	st := list.State()
	if st.Phase == viewmodel.Failed {
		return errors.New(st.Err)
	}
	cli.printRecords(res.Kind, st.Records)
	return nil
}

func (cli *commandLine) export(ctx context.Context, res client.Resource, path string) error {
	st := viewmodel.NewRecordList(cli.api, res, cli.options()...).Load(ctx)
	if st.Phase == viewmodel.Failed {
		return errors.New(st.Err)
	}
	if err := export.WriteFile(path, res.Kind, st.Records); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Exported %d %s to %s\n", len(st.Records), res.Kind.Plural(), path)
	return nil
}

// redirect waits for the form's navigation, then shows the list.
func (cli *commandLine) redirect(ctx context.Context, res client.Resource, done <-chan struct{}) error {
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return cli.list(ctx, res)
}

func (cli *commandLine) ask(prompt string) bool {
	if f, ok := cli.in.(*os.File); ok && !isTerminalFunc(int(f.Fd())) {
		fmt.Fprintln(cli.errOut, "stdin is not a terminal: pass -yes to delete")
		return false
	}

	fmt.Fprintf(cli.errOut, "%s [y/N] ", prompt)
	answer, err := bufio.NewReader(cli.in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (cli *commandLine) printRecords(kind types.Kind, records []types.Record) {
	if len(records) == 0 {
		fmt.Fprintf(cli.out, "No %s added yet\n", kind.Plural())
		return
	}

	tw := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFULL NAME\tCLASS\tGENDER\tAGE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.FullName, r.Class, r.Gender, strconv.Itoa(int(r.Age)))
	}
	_ = tw.Flush()
}

func (cli *commandLine) notifier() viewmodel.Notifier {
	return viewmodel.NotifyFunc(func(msg string) { fmt.Fprintln(cli.errOut, msg) })
}

func (cli *commandLine) options() []viewmodel.Option {
	return []viewmodel.Option{
		viewmodel.WithLogger(cli.log),
		viewmodel.WithNotifier(cli.notifier()),
	}
}

func (cli *commandLine) formOptions(done chan struct{}) []viewmodel.Option {
	return append(cli.options(),
		viewmodel.WithRedirectDelay(cli.delay),
		viewmodel.WithNavigate(func() { close(done) }),
	)
}

// submitError is what a failed Submit returns to main. Validation
// failures have already been shown by the notifier.
func submitError(err error, msg string) error {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return errReported
	}
	return errors.New(msg)
}

func parseKind(s string) (types.Kind, bool) {
	switch s {
	case "students", "student":
		return types.KindStudent, true
	case "teachers", "teacher":
		return types.KindTeacher, true
	default:
		return "", false
	}
}

type draftValues map[viewmodel.Field]*string

func draftFlags(cmd *flag.FlagSet) draftValues {
	return draftValues{
		viewmodel.FieldFullName: cmd.String("fullname", "", "Full name."),
		viewmodel.FieldClass:    cmd.String("class", "", "Class, 1 to 10."),
		viewmodel.FieldGender:   cmd.String("gender", "", "Male, Female or Other."),
		viewmodel.FieldAge:      cmd.String("age", "", "Age, 1 to 25."),
	}
}

// fieldsSet returns the draft flags given on the command line.
func fieldsSet(cmd *flag.FlagSet, values draftValues) map[viewmodel.Field]string {
	set := make(map[viewmodel.Field]string)
	cmd.Visit(func(f *flag.Flag) {
		if v, ok := values[viewmodel.Field(f.Name)]; ok {
			set[viewmodel.Field(f.Name)] = *v
		}
	})
	return set
}
