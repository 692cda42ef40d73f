package command

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"partsCatalog/internal/db"
)

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}
	cmd.AddCommand(
		migrateUpCommand(),
		migrateRollbackCommand(),
		migrateStatusCommand(),
	)
	return cmd
}

func migrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			rt, err := fromContext(cmd.Context())
			if err != nil {
				return err
			}
			// Opening applies whatever is pending.
			d, err := openDB(rt.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := d.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()
			versions, err := db.AppliedVersions(d)
			if err != nil {
				return err
			}
			rt.log.WithField("applied", versions).Info("database is up to date")
			return nil
		},
	}
}

func migrateRollbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rollback",
		Aliases: []string{"down"},
		Short:   "Roll back the most recent migration",
		Long: "Rolls back the most recently applied migration using its down script.\n" +
			"The next command that opens the database applies it again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			rt, err := fromContext(cmd.Context())
			if err != nil {
				return err
			}
			d, err := openDB(rt.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := d.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()
			version, err := db.RollbackLast(d)
			if err != nil {
				return err
			}
			if version == 0 {
				rt.log.Info("no migration to roll back")
				return nil
			}
			rt.log.WithField("version", version).Info("rolled back migration")
			return nil
		},
	}
}

func migrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List applied migration versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			rt, err := fromContext(cmd.Context())
			if err != nil {
				return err
			}
			d, err := openDB(rt.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := d.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()
			versions, err := db.AppliedVersions(d)
			if err != nil {
				return err
			}
			for _, v := range versions {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%04d\n", v); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
