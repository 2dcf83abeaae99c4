package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/garyjia/clinic-assistant/internal/application/service"
	"github.com/garyjia/clinic-assistant/internal/domain/entity"
	"github.com/garyjia/clinic-assistant/internal/snapshot"
	"github.com/garyjia/clinic-assistant/pkg/database"
)

func snapshotCmd(opts *rootOptions) *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the current operational snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := startCLI(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer c.Close()

			m, err := c.ReportService().Metrics(cmd.Context())
			if err != nil {
				return datastoreHint(err)
			}

			if xlsxPath == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), snapshot.Render(m))
				return err
			}

			f, err := os.Create(xlsxPath)
			if err != nil {
				return fmt.Errorf("failed to create workbook: %w", err)
			}
			if err := snapshot.WriteWorkbook(m, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s\n", xlsxPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an Excel workbook to this path instead of printing")
	return cmd
}

func digestCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the urgent-items digest to the team chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := startCLI(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer c.Close()

			if dryRun {
				m, err := c.ReportService().Metrics(cmd.Context())
				if err != nil {
					return datastoreHint(err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), snapshot.RenderDigest(m))
				return err
			}

			text, err := c.ReportService().SendDigest(cmd.Context())
			if err != nil {
				if errors.Is(err, service.ErrNotConfigured) {
					return fmt.Errorf("%w: set DATABASE_URL, LARK_APP_ID and LARK_APP_SECRET", err)
				}
				if errors.Is(err, service.ErrNoDigestChat) {
					return fmt.Errorf("%w: set LARK_DIGEST_CHAT_ID", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the digest without sending it")
	return cmd
}

func migrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := startCLI(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer c.Close()

			db := c.DB()
			if db == nil {
				return datastoreHint(service.ErrNotConfigured)
			}
			applied, err := database.NewMigrator(db, c.Logger()).RunMigrations(cmd.Context(), database.Migrations())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
			return nil
		},
	}
}

func checkCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report which collaborators are configured and send a test chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := startCLI(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			health := c.Health(cmd.Context())
			for _, name := range []string{"datastore", "model", "messenger"} {
				mark := "missing"
				if health[name] {
					mark = "ok"
				}
				fmt.Fprintf(out, "%-10s %s\n", name, mark)
			}

			reply, err := c.AssistantService().Chat(cmd.Context(), service.ChatRequest{
				RequestID: "check",
				Messages:  []entity.ChatMessage{{Role: entity.ChatRoleUser, Content: "Reply with the single word: ready"}},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "chat       %s: %s\n", reply.Outcome, reply.Text)
			if reply.Outcome != service.OutcomeAnswered {
				return fmt.Errorf("test chat did not succeed: %s", reply.Outcome)
			}
			return nil
		},
	}
}

func datastoreHint(err error) error {
	if errors.Is(err, service.ErrNotConfigured) {
		return fmt.Errorf("%w: set DATABASE_URL to the portal data store", err)
	}
	return err
}
