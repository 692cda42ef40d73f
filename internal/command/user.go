package command

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"partsCatalog/internal/auth"
	"partsCatalog/internal/db"
	"partsCatalog/models"
	"partsCatalog/repository"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
		userRoleCommand("promote", "Grant the admin role", models.RoleAdmin),
		userRoleCommand("demote", "Revoke the admin role", models.RoleRegular),
		userSetRoleCommand(),
		userListCommand(),
	)
	return cmd
}

// withUsers opens the database for the duration of fn.
func withUsers(cmd *cobra.Command, fn func(rt *runtime, users *repository.UserRepository) error) (runErr error) {
	rt, err := fromContext(cmd.Context())
	if err != nil {
		return err
	}
	d, err := openDB(rt.cfg)
	if err != nil {
		return err
	}
	defer func(d *db.DB) {
		if err := d.Close(); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}(d)
	return fn(rt, repository.NewUserRepository(d))
}

func userCreateCommand() *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "create USERNAME EMAIL",
		Short: "Create user",
		Long: "Creates a user with the provided username and email. The password is\n" +
			"read from stdin or through the interactive prompt.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(rt *runtime, users *repository.UserRepository) error {
				password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				if password == "" {
					return errors.New("password must not be empty")
				}
				hash, err := auth.NewHasher(rt.cfg.Auth.BcryptCost).HashPassword(password)
				if err != nil {
					return err
				}
				role := models.RoleRegular
				if admin {
					role = models.RoleAdmin
				}
				u, err := users.Create(cmd.Context(), &models.User{Username: args[0], Email: args[1], PasswordHash: hash, Role: role})
				if err != nil {
					return err
				}
				rt.log.WithFields(logrus.Fields{"id": u.ID, "email": u.Email, "role": u.Role.String()}).Info("created user")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "create the user with the admin role")
	return cmd
}

func userRoleCommand(use, short string, role models.Role) *cobra.Command {
	return &cobra.Command{
		Use:   use + " EMAIL",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRole(cmd, args[0], role)
		},
	}
}

func userSetRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "role EMAIL ROLE",
		Short: "Set the role of a user",
		Long:  "Sets the role of a user. ROLE is a role name (admin, default) or its numeric id.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := models.ParseRole(args[1])
			if err != nil {
				return err
			}
			return setRole(cmd, args[0], role)
		},
	}
}

func setRole(cmd *cobra.Command, email string, role models.Role) error {
	return withUsers(cmd, func(rt *runtime, users *repository.UserRepository) error {
		if err := users.UpdateRoleByEmail(cmd.Context(), email, role); err != nil {
			return err
		}
		rt.log.WithFields(logrus.Fields{"email": email, "role": role.String()}).Info("updated user role")
		return nil
	})
}

func userListCommand() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUsers(cmd, func(_ *runtime, users *repository.UserRepository) error {
				list, err := users.List(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE")
				for _, u := range list {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of users to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of users to skip")
	return cmd
}
