package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/snapfile/snapfile/internal/cli/prompt"
	"github.com/snapfile/snapfile/pkg/config"
)

// minPasswordLength is enforced on the admin password at init time.
const minPasswordLength = 8

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration file",
	Long: `Initialize a snapfile configuration file interactively.

Prompts for the admin credentials, hashes the password with bcrypt and
generates a random JWT signing secret. By default the configuration file
is created at $XDG_CONFIG_HOME/snapfile/config.yaml; use --config to
specify a custom path.

Examples:
  # Initialize with default location
  snapfile init

  # Initialize with custom path
  snapfile init --config /etc/snapfile/config.yaml

  # Force overwrite existing config
  snapfile init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
	}

	username, err := prompt.Input("Admin username", "admin")
	if err != nil {
		return err
	}

	password, err := prompt.PasswordWithConfirmation("Admin password", "Confirm password", minPasswordLength)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	secret, err := generateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	cfg := config.GetDefaultConfig()
	cfg.Auth.AdminUsername = username
	cfg.Auth.AdminPasswordHash = string(hash)
	cfg.Auth.JWTSecret = secret

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: snapfile start")
	fmt.Printf("  3. Or specify custom config: snapfile start --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  A random JWT secret has been generated and stored in the config file.")
	fmt.Println("  To rotate it, set an environment variable instead:")
	fmt.Println("    export SNAPFILE_AUTH_JWT_SECRET=$(openssl rand -hex 32)")

	return nil
}

// generateSecret returns 32 bytes of entropy as a 64-character hex string.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
