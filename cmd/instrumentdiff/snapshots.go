package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/instrumentdiff/internal/core"
	"github.com/JonMunkholm/instrumentdiff/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("no database configured: set DATABASE_URL")

func (a *app) snapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Save, list, restore and delete table snapshots in PostgreSQL",
	}
	cmd.AddCommand(
		a.snapshotSaveCmd(),
		a.snapshotListCmd(),
		a.snapshotLoadCmd(),
		a.snapshotDeleteCmd(),
	)
	return cmd
}

// withStore opens a pool from the database config, ensures the schema and
// runs fn against the store.
func (a *app) withStore(ctx context.Context, fn func(*store.Store) error) error {
	if !a.cfg.HasDatabase() {
		return errNoDatabase
	}

	poolConfig, err := pgxpool.ParseConfig(a.cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(a.cfg.Database.MaxConns)
	poolConfig.MinConns = int32(a.cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = a.cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = a.cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if u, err := url.Parse(a.cfg.Database.URL); err == nil {
		slog.Debug("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	s := store.New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	return fn(s)
}

func (a *app) snapshotSaveCmd() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Store the current CSV table as a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := core.LoadCSV(a.cfg.Build.TablePath)
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(s *store.Store) error {
				id, err := s.Save(cmd.Context(), t, store.Meta{Label: label, DataRoot: a.cfg.Build.DataRoot})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s (%d instruments)\n", id, t.Len())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "free-form snapshot label")
	return cmd
}

func (a *app) snapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *store.Store) error {
				snaps, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tLABEL\tROWS\tCOLUMNS\tCREATED")
				for _, snap := range snaps {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
						snap.ID, snap.Label, snap.Rows, snap.Columns, snap.CreatedAt.Format(time.DateTime))
				}
				return tw.Flush()
			})
		},
	}
}

func (a *app) snapshotLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load ID",
		Short: "Restore a snapshot into the CSV table file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSnapshotID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(s *store.Store) error {
				t, err := s.Load(cmd.Context(), id)
				if err != nil {
					return err
				}
				if err := core.SaveCSV(a.cfg.Build.TablePath, t); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d instruments to %s\n", t.Len(), a.cfg.Build.TablePath)
				return nil
			})
		},
	}
}

func (a *app) snapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSnapshotID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(s *store.Store) error {
				if err := s.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", id)
				return nil
			})
		},
	}
}

func parseSnapshotID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid parameter %q: not a snapshot id: %w", raw, err)
	}
	return id, nil
}
