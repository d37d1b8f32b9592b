package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jsamuelsen/address-book/internal/app"
	"github.com/jsamuelsen/address-book/internal/domain"
	"github.com/jsamuelsen/address-book/internal/platform/logging"
)

const (
	menu = "|You can use following commands:\n" +
		"|hello - Greeting\n" +
		"|add - Add new contact\n" +
		"|find - Find contact in Address Book\n" +
		"|show all - Shows the entire Address Book\n" +
		"|birthdays, get birth - Show birthdays\n" +
		"|days to birthday - Days left until a contact's birthday\n" +
		"|change - Change contact\n" +
		"|del - Delete contact from address book\n" +
		"|del all - Clean Address Book\n" +
		"|help - Show this menu\n" +
		"|close, exit, good bye or . - Closing the program"

	changeMenu = "|add phone - press 1|\n" +
		"|change email - press 2|\n" +
		"|change birthday - press 3|\n" +
		"|change name - press 4|\n" +
		"|change phone number - press 5|"

	farewell = "Good bye!\nYour data has been successfully saved in the Address Book!"

	msgEmpty        = "The address book is empty."
	msgNoMatch      = "Contact with this name or phone number was not found."
	msgNoBirthdays  = "There are no birthdays in this range!"
	msgUnknown      = "Choose the right command!"
	msgSaved        = "Your contact saved!"
	msgBadDayCount  = "Enter a whole number of days, 0 or more."
	msgNameRequired = "Contact name is required"
)

var exitWords = map[string]bool{"good bye": true, "close": true, "exit": true, ".": true}

var fieldPrompts = map[domain.FieldKind]string{
	domain.FieldName:     "Enter contact name: ",
	domain.FieldPhone:    "Enter contact phone: ",
	domain.FieldEmail:    "Enter contact email: ",
	domain.FieldBirthday: "Enter contact Birthday: ",
}

// lineReader reads lines on a goroutine so a pending read can be abandoned
// when the context is cancelled.
type lineReader struct {
	lines chan string
	done  chan struct{}
	err   error
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{lines: make(chan string), done: make(chan struct{})}

	go func() {
		defer close(lr.lines)

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lr.lines <- sc.Text():
			case <-lr.done:
				return
			}
		}

		lr.err = sc.Err()
	}()

	return lr
}

// read returns the next line, io.EOF at end of input, or the context error.
func (lr *lineReader) read(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lr.lines:
		if !ok {
			if lr.err != nil {
				return "", lr.err
			}

			return "", io.EOF
		}

		return line, nil
	}
}

func (lr *lineReader) close() { close(lr.done) }

// Shell is the interactive command loop. It also answers re-prompts for
// rejected field values.
type Shell struct {
	svc      *app.ContactService
	in       *lineReader
	out      io.Writer
	pageSize int
	window   int
	logger   *slog.Logger
	handlers map[string]func(context.Context) error
}

// ShellConfig holds the shell dependencies.
type ShellConfig struct {
	Service *app.ContactService
	In      io.Reader
	Out     io.Writer

	// PageSize is how many contacts "show all" prints at a time.
	PageSize int

	// BirthdayWindow is used when the day count prompt is left empty.
	BirthdayWindow int

	Logger *slog.Logger
}

// NewShell creates a shell reading commands from cfg.In.
func NewShell(cfg ShellConfig) *Shell {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Shell{
		svc:      cfg.Service,
		in:       newLineReader(cfg.In),
		out:      cfg.Out,
		pageSize: cfg.PageSize,
		window:   cfg.BirthdayWindow,
		logger:   cfg.Logger.With(slog.String("component", "cli.Shell")),
	}

	s.handlers = map[string]func(context.Context) error{
		"hello":            s.hello,
		"help":             s.help,
		"add":              s.add,
		"find":             s.find,
		"show all":         s.showAll,
		"birthdays":        s.birthdays,
		"get birth":        s.birthdays,
		"days to birthday": s.daysToBirthday,
		"change":           s.change,
		"del":              s.del,
		"del all":          s.delAll,
	}

	return s
}

// Run prints the menu and handles commands until an exit word, end of input
// or cancellation. Every change is already saved when it returns.
func (s *Shell) Run(ctx context.Context) error {
	defer s.in.close()

	info(s.out, strings.Repeat("-", 52))
	info(s.out, menu)
	info(s.out, strings.Repeat("-", 52))

	for {
		command, err := s.choose(ctx, "Enter command: ")
		if err != nil {
			return s.stop(ctx, err)
		}

		if command == "" {
			continue
		}

		if exitWords[command] {
			info(s.out, farewell)
			return nil
		}

		handler, ok := s.handlers[command]
		if !ok {
			hint(s.out, msgUnknown)
			continue
		}

		cmdCtx := logging.WithCommand(ctx, command)
		if err := handler(cmdCtx); err != nil {
			if stopping(err) {
				return s.stop(ctx, err)
			}

			s.logger.DebugContext(cmdCtx, "command failed", slog.Any("error", err))
			failure(s.out, err)
		}
	}
}

func stopping(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// stop ends the loop on end of input or cancellation.
func (s *Shell) stop(ctx context.Context, err error) error {
	if !stopping(err) {
		return err
	}

	s.logger.DebugContext(ctx, "shell stopped", slog.String("reason", err.Error()))
	info(s.out, "")
	info(s.out, farewell)

	return nil
}

// prompt reads a line exactly as typed. Names and field values go to the
// service untouched.
func (s *Shell) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(s.out, label)

	return s.in.read(ctx)
}

// choose reads a menu answer, ignoring case and surrounding blanks.
func (s *Shell) choose(ctx context.Context, label string) (string, error) {
	line, err := s.prompt(ctx, label)
	if err != nil {
		return "", err
	}

	return strings.ToLower(strings.TrimSpace(line)), nil
}

// Ask reads the first value for a field of a new contact.
func (s *Shell) Ask(ctx context.Context, field domain.FieldKind) (string, error) {
	return s.prompt(ctx, fieldPrompts[field])
}

// Reprompt shows the format hint and reads a replacement value.
func (s *Shell) Reprompt(ctx context.Context, field domain.FieldKind, msg string) (string, error) {
	hint(s.out, msg)

	label, ok := fieldPrompts[field]
	if !ok {
		label = "Enter " + string(field) + ": "
	}

	s.logger.Log(ctx, logging.LevelTrace, "reprompt", slog.String("field", string(field)))

	return s.prompt(ctx, label)
}

func (s *Shell) hello(context.Context) error {
	info(s.out, "How can I help you?")
	return nil
}

func (s *Shell) help(context.Context) error {
	info(s.out, menu)
	return nil
}

func (s *Shell) add(ctx context.Context) error {
	name, err := s.prompt(ctx, fieldPrompts[domain.FieldName])
	if err != nil {
		return err
	}

	if name == "" {
		hint(s.out, msgNameRequired)
		return nil
	}

	res, err := s.svc.AddContactFrom(ctx, name, s, s)
	if err != nil {
		return err
	}

	for _, field := range res.Skipped {
		hint(s.out, "Too many invalid values; the "+string(field)+" was not saved.")
	}

	success(s.out, msgSaved)

	return nil
}

func (s *Shell) find(ctx context.Context) error {
	query, err := s.prompt(ctx, "Enter contact name or phone: ")
	if err != nil {
		return err
	}

	if len(s.svc.ListContacts()) == 0 {
		info(s.out, msgEmpty)
		return nil
	}

	found := s.svc.FindContacts(query)
	if len(found) == 0 {
		info(s.out, msgNoMatch)
		return nil
	}

	renderContacts(s.out, found)

	return nil
}

func (s *Shell) showAll(ctx context.Context) error {
	total := len(s.svc.ListContacts())
	if total == 0 {
		info(s.out, msgEmpty)
		return nil
	}

	shown := 0
	for page := range s.svc.Pages(s.pageSize) {
		renderContacts(s.out, page)

		shown += len(page)
		if shown >= total {
			break
		}

		answer, err := s.choose(ctx, "Press Enter for the next page or q to stop: ")
		if err != nil {
			return err
		}

		if answer == "q" {
			break
		}
	}

	return nil
}

func (s *Shell) birthdays(ctx context.Context) error {
	raw, err := s.choose(ctx, "Enter a number of days: ")
	if err != nil {
		return err
	}

	days := s.window
	if raw != "" {
		if days, err = strconv.Atoi(raw); err != nil || days < 0 {
			hint(s.out, msgBadDayCount)
			return nil
		}
	}

	matches, err := s.svc.UpcomingBirthdays(days)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		info(s.out, msgNoBirthdays)
		return nil
	}

	renderBirthdays(s.out, matches)

	return nil
}

func (s *Shell) daysToBirthday(ctx context.Context) error {
	name, err := s.prompt(ctx, fieldPrompts[domain.FieldName])
	if err != nil {
		return err
	}

	days, err := s.svc.DaysToBirthday(name)
	if err != nil {
		return err
	}

	if days == 0 {
		success(s.out, "Today is "+name+"'s birthday!")
		return nil
	}

	info(s.out, fmt.Sprintf("%d days until %s's birthday.", days, name))

	return nil
}

func (s *Shell) change(ctx context.Context) error {
	name, err := s.prompt(ctx, fieldPrompts[domain.FieldName])
	if err != nil {
		return err
	}

	if len(s.svc.ListContacts()) == 0 {
		info(s.out, msgEmpty)
		return nil
	}

	if _, err := s.svc.GetContact(name); err != nil {
		return err
	}

	info(s.out, strings.Repeat("-", 50))
	info(s.out, changeMenu)
	info(s.out, strings.Repeat("-", 50))

	choice, err := s.choose(ctx, "Enter your choice: ")
	if err != nil {
		return err
	}

	type fieldEdit struct {
		label string
		apply func(context.Context, app.FieldChange, domain.Prompter) (*domain.Record, error)
	}

	edits := map[string]fieldEdit{
		"1": {"Enter number: ", s.svc.AddPhone},
		"2": {"Enter new email: ", s.svc.ChangeEmail},
		"3": {"Enter new date: ", s.svc.ChangeBirthday},
		"5": {"Enter number: ", s.svc.ReplacePhone},
	}

	if choice == "4" {
		return s.rename(ctx, name)
	}

	c, ok := edits[choice]
	if !ok {
		hint(s.out, choice+" invalid choice")
		return nil
	}

	value, err := s.prompt(ctx, c.label)
	if err != nil {
		return err
	}

	record, err := c.apply(ctx, app.FieldChange{Name: name, Value: value}, s)
	if err != nil {
		return err
	}

	success(s.out, "Contact "+name+" updated.")
	renderContacts(s.out, []*domain.Record{record})

	return nil
}

func (s *Shell) rename(ctx context.Context, from string) error {
	to, err := s.prompt(ctx, "Enter new name: ")
	if err != nil {
		return err
	}

	record, err := s.svc.RenameContact(ctx, app.Rename{From: from, To: to})
	if err != nil {
		return err
	}

	success(s.out, "Contact "+from+" renamed to "+record.Name().Value()+".")

	return nil
}

func (s *Shell) del(ctx context.Context) error {
	name, err := s.prompt(ctx, "Enter the name of the contact to be deleted: ")
	if err != nil {
		return err
	}

	if err := s.svc.DeleteContact(ctx, name); err != nil {
		return err
	}

	success(s.out, "Contact "+name+" deleted.")

	return nil
}

func (s *Shell) delAll(ctx context.Context) error {
	info(s.out, "Are you sure you want to clear the Address Book?")

	answer, err := s.choose(ctx, "Y or N: ")
	if err != nil {
		return err
	}

	if answer != "y" {
		info(s.out, "The Address Book was not changed.")
		return nil
	}

	n, err := s.svc.ClearContacts(ctx)
	if err != nil {
		return err
	}

	success(s.out, fmt.Sprintf("The Address Book was cleared, %d contacts removed.", n))

	return nil
}
