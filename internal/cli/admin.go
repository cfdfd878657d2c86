package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/truthdare/truthdare-api/internal/auth"
)

var tokenTTLFlag time.Duration

func init() {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token",
		Long:  "Signs an admin JWT with TRUTH_DARE_ADMIN_JWT_SECRET, for scripts that call /admin/reload.",
		Args:  cobra.NoArgs,
		Run:   runToken,
	}
	tokenCmd.Flags().DurationVar(&tokenTTLFlag, "ttl", auth.DefaultTokenTTL, "Token lifetime")

	hashCmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for TRUTH_DARE_ADMIN_PASSWORD_HASH",
		Long:  "Hashes the password given as argument, or the first line of stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runHashPassword,
	}

	RootCmd.AddCommand(tokenCmd, hashCmd)
}

func runToken(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	if cfg.AdminJWTSecret == "" {
		exitErr("token", errors.New("TRUTH_DARE_ADMIN_JWT_SECRET is not set"))
	}
	if tokenTTLFlag <= 0 {
		exitErr("token", fmt.Errorf("--ttl must be positive, got %s", tokenTTLFlag))
	}

	tokens, err := auth.NewTokenService(cfg.AdminJWTSecret)
	if err != nil {
		exitErr("token", err)
	}
	token, err := tokens.GenerateWithDuration(auth.AdminSubject, tokenTTLFlag)
	if err != nil {
		exitErr("token", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
}

func runHashPassword(cmd *cobra.Command, args []string) {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := readLine(cmd.InOrStdin())
		if err != nil {
			exitErr("read password", err)
		}
		password = line
	}

	hash, err := auth.NewPasswordService().Hash(password)
	if err != nil {
		exitErr("hash password", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
}

// readLine returns the first line of r without its line ending.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password on stdin")
	}
	return line, nil
}
