package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thinkscotty/minutes/internal/database"
	"github.com/thinkscotty/minutes/internal/models"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent publications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			db, err := database.New(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			pubs, err := db.ListPublications(limit)
			if err != nil {
				return fmt.Errorf("list publications: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(pubs) == 0 {
				fmt.Fprintln(out, "No publications yet.")
				return nil
			}
			fmt.Fprintln(out, renderPublications(pubs))

			stats, err := db.GetStats()
			if err != nil {
				return fmt.Errorf("load stats: %w", err)
			}
			fmt.Fprintf(out, "%d total, %d local, %d remote, %d with images\n",
				stats.TotalPublications, stats.LocalPublications, stats.RemotePublications, stats.WithImages)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of publications to show")
	return cmd
}

func renderPublications(pubs []models.Publication) string {
	rows := make([][]string, 0, len(pubs))
	for _, p := range pubs {
		version := p.VersionID
		if len(version) > 10 {
			version = version[:10]
		}
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
			p.Title,
			p.FilePath,
			p.Backend,
			p.Source,
			version,
		})
	}
	return renderTable(
		[]string{"ID", "Published", "Title", "File", "Backend", "Source", "Version"},
		rows,
		[]columnAlignment{alignRight},
	)
}
