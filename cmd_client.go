package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventx/client"
	"eventx/models"
)

var (
	eventsSearch   string
	eventsCategory string
	eventsDate     string

	authName     string
	authEmail    string
	authPassword string
	authPhone    string

	bookEvent   int64
	bookTickets string
	bookNotes   string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events from the API",
	Long: `List the event catalog. Filters combine.

Examples:
  eventx events
  eventx events --category music --date 2025-12-01
  eventx events --search cairo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := newAPIClient().ListEvents(cmd.Context(), models.EventFilter{
			Search:   eventsSearch,
			Category: eventsCategory,
			Date:     eventsDate,
		})
		if err != nil {
			return err
		}
		printEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		user, err := newAPIClient().Register(cmd.Context(), client.SignupRequest{
			Name:     authName,
			Email:    authEmail,
			Password: authPassword,
			Phone:    authPhone,
		})
		if err != nil {
			return err
		}
		if err := session.SignIn(*user); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registration successful! Signed in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		user, err := newAPIClient().Login(cmd.Context(), authEmail, authPassword)
		if err != nil {
			return err
		}
		if err := session.SignIn(*user); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Login successful! Welcome, %s\n", user.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the signed-in identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		if err := session.SignOut(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		u := session.User()
		if u == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s (id %d)\n", u.Name, u.Email, u.Phone, u.ID)
		return nil
	},
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book tickets for an event as the signed-in user",
	Long: `Book tickets for an event. Contact details come from the signed-in
identity; run "eventx login" first.

Examples:
  eventx book --event 3 --tickets 2
  eventx book --event 1 --tickets 4 --notes "wheelchair access"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		api := newAPIClient()
		return runBook(cmd.Context(), cmd.OutOrStdout(), client.NewBookingForm(api, session))
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd, signupCmd, loginCmd, logoutCmd, whoamiCmd, bookCmd)

	eventsCmd.Flags().StringVar(&eventsSearch, "search", "", "Match name or location")
	eventsCmd.Flags().StringVar(&eventsCategory, "category", "", "Exact category")
	eventsCmd.Flags().StringVar(&eventsDate, "date", "", "Exact date (YYYY-MM-DD)")

	signupCmd.Flags().StringVar(&authName, "name", "", "Full name")
	signupCmd.Flags().StringVar(&authPhone, "phone", "", "Egyptian mobile number (01XXXXXXXXX)")
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Email address")
		c.Flags().StringVar(&authPassword, "password", "", "Password")
	}

	bookCmd.Flags().Int64Var(&bookEvent, "event", 0, "Event id (see \"eventx events\")")
	bookCmd.Flags().StringVar(&bookTickets, "tickets", "1", "Number of tickets")
	bookCmd.Flags().StringVar(&bookNotes, "notes", "", "Optional notes for the organiser")
}

func newAPIClient() *client.Client {
	return client.New(cfg.Client.APIURL, cfg.Client.Timeout)
}

func openSession() (*client.Session, error) {
	path := cfg.Client.SessionFile
	if path == "" {
		var err error
		if path, err = client.DefaultStorePath(); err != nil {
			return nil, fmt.Errorf("failed to locate session file: %w", err)
		}
	}
	return client.LoadSession(client.NewFileStore(path))
}

func printEvents(w io.Writer, events []models.EventView) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDATE\tLOCATION\tCOST (EGP)\tCATEGORY")
	for _, e := range events {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%s\n", e.ID, e.Name, e.Date, e.Location, e.Cost, e.Category)
	}
	tw.Flush()
}

func runBook(ctx context.Context, w io.Writer, form *client.BookingForm) error {
	if bookEvent > 0 {
		form.Preselect(bookEvent)
	}
	if err := form.Set(client.FieldTickets, bookTickets); err != nil {
		return err
	}
	if err := form.Set(client.FieldNotes, bookNotes); err != nil {
		return err
	}

	conf, err := form.Submit(ctx)
	switch {
	case errors.Is(err, client.ErrInvalidForm):
		errs := form.Errors()
		for _, f := range client.RequiredFields {
			if msg, ok := errs[f]; ok {
				fmt.Fprintf(w, "  %s: %s\n", f, msg)
			}
		}
		return err
	case errors.Is(err, client.ErrLoginRequired):
		return fmt.Errorf("%w (run \"eventx login\")", err)
	case err != nil:
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(w, "Registration successful!\n\nEvent: %s\nTickets: %d\nTotal Cost: %s EGP\n",
		conf.EventName, conf.Tickets, conf.TotalCost)
	return nil
}
