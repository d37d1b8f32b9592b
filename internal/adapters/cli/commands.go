package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/address-book/internal/app"
	"github.com/jsamuelsen/address-book/internal/domain"
)

func (r *root) runShell(cmd *cobra.Command, _ []string) error {
	shell := NewShell(ShellConfig{
		Service:        r.rt.Service,
		In:             cmd.InOrStdin(),
		Out:            cmd.OutOrStdout(),
		PageSize:       r.rt.PageSize,
		BirthdayWindow: r.rt.BirthdayWindow,
		Logger:         r.rt.Logger,
	})

	return shell.Run(cmd.Context())
}

func (r *root) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE:  r.run(r.runShell),
	}
}

// addFlags is checked with the contact field rules before anything is stored.
// Birthdays are measured against the address book's clock.
type addFlags struct {
	Name     string `name:"name"     validate:"required"`
	Phone    string `name:"phone"    validate:"omitempty,phone"`
	Email    string `name:"email"    validate:"omitempty,contact_email"`
	Birthday string `name:"birthday" validate:"omitempty,birthday_past"`
}

func (r *root) addCmd() *cobra.Command {
	var f addFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact, replacing one with the same name",
		Example: `  addressbook add --name Ann --phone +380991122333 --email ann@gmail.com --birthday 01.01.2000
  addressbook add --name Bob`,
		Args: cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string) error {
			if err := domain.ValidateStructAt(f, r.rt.Service.Now()); err != nil {
				return err
			}

			res, err := r.rt.Service.AddContact(cmd.Context(), app.ContactInput(f), nil)
			if err != nil {
				return err
			}

			success(cmd.OutOrStdout(), msgSaved)
			renderContacts(cmd.OutOrStdout(), []*domain.Record{res.Record})

			return nil
		}),
	}

	cmd.Flags().StringVarP(&f.Name, "name", "n", "", "contact name (required)")
	cmd.Flags().StringVar(&f.Phone, "phone", "", "phone number, e.g. +380991122333")
	cmd.Flags().StringVar(&f.Email, "email", "", "email address")
	cmd.Flags().StringVar(&f.Birthday, "birthday", "", "birthday as day.month.year")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (r *root) listCmd() *cobra.Command {
	var pageSize int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show every contact",
		Args:    cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if !cmd.Flags().Changed("page-size") {
				pageSize = r.rt.PageSize
			}

			if len(r.rt.Service.ListContacts()) == 0 {
				info(out, msgEmpty)
				return nil
			}

			n := 0
			for page := range r.rt.Service.Pages(pageSize) {
				n++
				info(out, fmt.Sprintf("Page %d", n))
				renderContacts(out, page)
			}

			return nil
		}),
	}

	cmd.Flags().IntVar(&pageSize, "page-size", 0, "contacts per page (default from config)")

	return cmd
}

func (r *root) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find QUERY",
		Short: "Find contacts by name or phone prefix",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(cmd *cobra.Command, args []string) error {
			found := r.rt.Service.FindContacts(args[0])
			if len(found) == 0 {
				info(cmd.OutOrStdout(), msgNoMatch)
				return nil
			}

			renderContacts(cmd.OutOrStdout(), found)

			return nil
		}),
	}
}

func (r *root) birthdaysCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "birthdays",
		Short: "Show birthdays in the coming days",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("days") {
				days = r.rt.BirthdayWindow
			}

			matches, err := r.rt.Service.UpcomingBirthdays(days)
			if err != nil {
				return err
			}

			if len(matches) == 0 {
				info(cmd.OutOrStdout(), msgNoBirthdays)
				return nil
			}

			renderBirthdays(cmd.OutOrStdout(), matches)

			return nil
		}),
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "number of days to look ahead (default from config)")

	return cmd
}

func (r *root) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"del"},
		Short:   "Delete a contact",
		Args:    cobra.ExactArgs(1),
		RunE: r.run(func(cmd *cobra.Command, args []string) error {
			if err := r.rt.Service.DeleteContact(cmd.Context(), args[0]); err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Contact "+args[0]+" deleted.")

			return nil
		}),
	}
}

func (r *root) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a contact",
		Args:  cobra.ExactArgs(2),
		RunE: r.run(func(cmd *cobra.Command, args []string) error {
			record, err := r.rt.Service.RenameContact(cmd.Context(), app.Rename{From: args[0], To: args[1]})
			if err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Contact "+args[0]+" renamed to "+record.Name().Value()+".")

			return nil
		}),
	}
}

func (r *root) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipBootstrap: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "addressbook %s\ncommit: %s\nbuilt: %s\ngo: %s\n",
				r.info.Version, r.info.Commit, r.info.BuildTime, r.info.GoVersion)
		},
	}
}
