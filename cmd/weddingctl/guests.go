package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/wedding/internal/guestimport"
)

func newGuestsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guests",
		Short: "Guest list operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newGuestsLoadCommand(opts))
	cmd.AddCommand(newGuestsAddCommand(opts))
	cmd.AddCommand(newGuestsRegroupCommand(opts))
	cmd.AddCommand(newGuestsFixEmailsCommand(opts))
	return cmd
}

func newGuestsLoadCommand(opts *globalOptions) *cobra.Command {
	var (
		csvPath    string
		groupsPath string
		clearFirst bool
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load guests from a CSV guest list",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(csvPath)
			if err != nil {
				return err
			}
			defer f.Close()
			rows, err := guestimport.ReadCSV(f)
			if err != nil {
				return err
			}

			groups := guestimport.Groupings{}
			if groupsPath != "" {
				gf, err := os.Open(groupsPath)
				if err != nil {
					return err
				}
				defer gf.Close()
				if groups, err = guestimport.ReadGroupings(gf); err != nil {
					return err
				}
			}

			ctx := commandContext(cmd)
			store, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			im := guestimport.New(store.Guests, opts.logger)

			if clearFirst {
				n, err := im.Clear(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d existing guests\n", n)
			}

			report, err := im.Load(ctx, rows, groups)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d guests, %d already existed\n", report.Created, report.Existing)
			return err
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Guest list CSV with First Name and Last Name columns")
	cmd.Flags().StringVar(&groupsPath, "groups", "", "YAML file mapping family names to member full names")
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "Delete all guests before loading")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func newGuestsAddCommand(opts *globalOptions) *cobra.Command {
	var (
		first string
		last  string
		group string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a single guest",
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseGroup(group)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			store, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			guest, err := guestimport.New(store.Guests, opts.logger).Add(ctx, guestimport.Row{FirstName: first, LastName: last}, groupID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (#%d) to group %s\n", guest.FullName(), guest.ID, guest.GroupID)
			return nil
		},
	}

	cmd.Flags().StringVar(&first, "first", "", "First name")
	cmd.Flags().StringVar(&last, "last", "", "Last name")
	cmd.Flags().StringVar(&group, "group", "", "Existing group id to join (default: new group)")
	_ = cmd.MarkFlagRequired("first")
	_ = cmd.MarkFlagRequired("last")
	return cmd
}

func newGuestsRegroupCommand(opts *globalOptions) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   `regroup "First Last"...`,
		Short: "Move guests into one party",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseGroup(group)
			if err != nil {
				return err
			}
			names := make([]guestimport.Row, 0, len(args))
			for _, arg := range args {
				row, err := guestimport.ParseName(arg)
				if err != nil {
					return err
				}
				names = append(names, row)
			}

			ctx := commandContext(cmd)
			store, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			groupID, err = guestimport.New(store.Guests, opts.logger).Regroup(ctx, groupID, names)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d guests to group %s\n", len(names), groupID)
			return nil
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "Target group id (default: new group)")
	return cmd
}

func newGuestsFixEmailsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-emails",
		Short: "Fill blank emails with placeholder addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			store, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := guestimport.New(store.Guests, opts.logger).FixEmails(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d guest emails with placeholders\n", report.Updated)
			return err
		},
	}
}

func parseGroup(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid group id %q: %w", raw, err)
	}
	return id, nil
}
