package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kerhoff/wedding/internal/models"
)

func newStoriesCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stories",
		Short: "Story timeline operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newStoriesAddCommand(opts))
	return cmd
}

func newStoriesAddCommand(opts *globalOptions) *cobra.Command {
	var (
		title       string
		subtitle    string
		date        string
		description string
		image       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a milestone to the story timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return errors.New("--title must not be blank")
			}
			when, err := time.Parse(time.DateOnly, date)
			if err != nil {
				return fmt.Errorf("invalid --date %q, want YYYY-MM-DD: %w", date, err)
			}

			ctx := commandContext(cmd)
			store, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entry, err := store.Stories.Create(ctx, &models.StoryEntry{
				Title:       strings.TrimSpace(title),
				Subtitle:    strings.TrimSpace(subtitle),
				Date:        when,
				Description: strings.TrimSpace(description),
				ImageURL:    strings.TrimSpace(image),
			})
			if err != nil {
				return fmt.Errorf("failed to add story entry: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added story entry #%d %q\n", entry.ID, entry.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Milestone title")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "Optional subtitle")
	cmd.Flags().StringVar(&date, "date", "", "Milestone date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&description, "description", "", "Milestone description")
	cmd.Flags().StringVar(&image, "image", "", "Image URL")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
