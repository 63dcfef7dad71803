package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/autoniq-extractor/internal/credential"
	"github.com/nhle/autoniq-extractor/internal/model"
	"github.com/nhle/autoniq-extractor/internal/theme"
)

func loginCmd() *cobra.Command {
	var (
		flags  imapFlags
		forget bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the IMAP password in the system keyring",
		Long: `login prompts for the IMAP password, checks it against the server and
saves it in the system keyring so that run and watch need no password.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			if flags.emailAddress != "" {
				a.cfg.IMAP.Username = flags.emailAddress
			}
			if a.cfg.IMAP.Username == "" {
				return errors.New("no IMAP username; set imap.username or pass --email-address")
			}
			creds, err := credential.Open()
			if err != nil {
				return err
			}

			if forget {
				if err := creds.DeleteIMAPPassword(a.cfg.IMAP.Username); err != nil {
					return err
				}
				fmt.Println(theme.HelpStyle.Render("Removed password for " + a.cfg.IMAP.Username))
				return nil
			}

			pw := flags.password
			if pw == "" {
				if pw, err = promptPassword(a.cfg.IMAP.Username); err != nil {
					return err
				}
			}
			a.cfg.IMAP.Password = pw

			if a.cfg.IMAP.Host != "" {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				status, err := a.newIMAPSource().ValidateConnection(ctx)
				if err != nil {
					return err
				}
				fmt.Println(theme.HelpStyle.Render(status))
			}

			if err := creds.SetIMAPPassword(a.cfg.IMAP.Username, pw); err != nil {
				return err
			}
			fmt.Println(theme.HeaderStyle.Render("Saved password for " + a.cfg.IMAP.Username))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&forget, "forget", false, "Remove the stored password instead")
	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or update the configuration file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			c := &a.cfg.IMAP
			policy := a.cfg.Reports.Unclassified

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("IMAP host").
						Placeholder("imap.gmail.com").
						Value(&c.Host).
						Validate(validateRequired("Host")),
					huh.NewInput().
						Title("IMAP port").
						Value(&c.Port).
						Validate(validateRequired("Port")),
					huh.NewInput().
						Title("Email address").
						Value(&c.Username).
						Validate(validateRequired("Email address")),
					huh.NewInput().
						Title("Mailbox").
						Description("Folder holding the notifications").
						Value(&c.Mailbox).
						Validate(validateRequired("Mailbox")),
					huh.NewInput().
						Title("Sender").
						Description("Only messages from this address are read").
						Placeholder("alerts@autoniq.com").
						Value(&c.From),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("Start date").
						Description("Used for the first run, YYYY-MM-DD").
						Value(&c.StartDate).
						Validate(func(s string) error {
							_, err := model.IMAPConfig{StartDate: s}.StartTime()
							return err
						}),
					huh.NewInput().
						Title("Report directory").
						Value(&a.cfg.Reports.Dir),
					huh.NewSelect[string]().
						Title("Plain-text notifications").
						Options(
							huh.NewOption("Separate report (cars.unclassified.csv)", "separate"),
							huh.NewOption("Leave out of reports", "drop"),
							huh.NewOption("Report as bought", "bought"),
							huh.NewOption("Report as sold", "sold"),
							huh.NewOption("Report as back in stock", "backinstock"),
						).
						Value(&policy),
				),
			)
			if err := form.Run(); err != nil {
				return fmt.Errorf("running setup form: %w", err)
			}
			a.cfg.Reports.Unclassified = policy

			if err := model.SaveConfig(a.configPath, a.cfg); err != nil {
				return err
			}
			fmt.Println(theme.HeaderStyle.Render("Wrote " + a.configPath))
			fmt.Println(theme.HelpStyle.Render("Run `autoniq-extract login` to store the password."))
			return nil
		},
	}
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
