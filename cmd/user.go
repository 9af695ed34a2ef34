package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	internalApp "github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/pkg/util"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword 从终端读取密码且不回显，非终端时读取一行
func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	defer fmt.Fprintln(cmd.ErrOrStderr())

	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func passwordHash(cmd *cobra.Command, password string) (string, error) {
	if password == "" {
		var err error
		if password, err = readPassword(cmd); err != nil {
			return "", err
		}
	}
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return util.GeneratePasswordHash(password)
}

// upsertUser 新增用户，同名用户只更新密码哈希
func upsertUser(cfg *internalApp.AppConfig, username, hash string) bool {
	for i := range cfg.Auth.Users {
		if cfg.Auth.Users[i].Username == username {
			cfg.Auth.Users[i].PasswordHash = hash
			return false
		}
	}
	cfg.Auth.Users = append(cfg.Auth.Users, internalApp.UserCredential{Username: username, PasswordHash: hash})
	return true
}

func init() {
	var password string
	hashCmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print the bcrypt hash of a password for auth.users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := passwordHash(cmd, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	hashCmd.Flags().StringVarP(&password, "password", "P", "", "password, prompted when empty")

	var config, username, userPassword string
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users allowed to sign in",
	}
	addCmd := &cobra.Command{
		Use:   "add -u username",
		Short: "Add a user or reset the password of an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config == "" {
				config = findConfig()
			}
			if config == "" {
				return fmt.Errorf("config file not found, pass -c")
			}
			cfg, _, err := internalApp.LoadConfig(config)
			if err != nil {
				return err
			}
			hash, err := passwordHash(cmd, userPassword)
			if err != nil {
				return err
			}
			added := upsertUser(cfg, username, hash)
			if err := cfg.Save(); err != nil {
				return err
			}
			if added {
				bootstrapLogger.Info("user added")
			} else {
				bootstrapLogger.Info("user password updated")
			}
			return nil
		},
	}
	addCmd.Flags().StringVarP(&config, "config", "c", "", "config file")
	addCmd.Flags().StringVarP(&username, "username", "u", "", "user name")
	addCmd.Flags().StringVarP(&userPassword, "password", "P", "", "password, prompted when empty")
	_ = addCmd.MarkFlagRequired("username")

	userCmd.AddCommand(addCmd)
	rootCmd.AddCommand(hashCmd, userCmd)
}
