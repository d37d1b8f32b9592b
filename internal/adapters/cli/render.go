package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jsamuelsen/address-book/internal/app"
	"github.com/jsamuelsen/address-book/internal/domain"
)

const dateLayout = "02.01.2006"

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)

	return t
}

func contactRow(r *domain.Record) table.Row {
	v := r.View()
	return table.Row{v.Name, strings.Join(v.Phones, ", "), v.Email, v.Birthday}
}

func renderContacts(w io.Writer, records []*domain.Record) {
	t := newTable(w, table.Row{"Name", "Phones", "Email", "Birthday"})
	for _, r := range records {
		t.AppendRow(contactRow(r))
	}

	t.Render()
}

func renderBirthdays(w io.Writer, matches []app.BirthdayMatch) {
	t := newTable(w, table.Row{"Name", "Phones", "Email", "Birthday", "Next", "Days"})
	for _, m := range matches {
		row := contactRow(m.Record)
		t.AppendRow(append(row, m.Next.Format(dateLayout), m.DaysUntil))
	}

	t.Render()
}

func info(w io.Writer, msg string) {
	fmt.Fprintln(w, msg)
}

func success(w io.Writer, msg string) {
	fmt.Fprintln(w, text.FgGreen.Sprint(msg))
}

func hint(w io.Writer, msg string) {
	fmt.Fprintln(w, text.FgYellow.Sprint(msg))
}

func failure(w io.Writer, err error) {
	fmt.Fprintln(w, text.FgRed.Sprint(Describe(err)))
}
