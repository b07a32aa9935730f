package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lessonforge configuration",
}

func init() {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample config file",
		Run:   runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Run:   runConfigShow,
	}

	configCmd.AddCommand(initCmd, showCmd)
	RootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")

	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			exitErr("config path", err)
		}
	} else {
		var err error
		if path, err = config.ExpandPath(path); err != nil {
			exitErr("config path", err)
		}
	}
	if _, err := os.Stat(path); err == nil && !force {
		exitErr("config init", fmt.Errorf("%s already exists (use --force to overwrite)", path))
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		exitErr("config init", err)
	}
	if err := config.CreateSample(path); err != nil {
		exitErr("config init", err)
	}
	fmt.Printf(`{"ok":true,"path":%q}`+"\n", path)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	masked := *cfg
	masked.Passages.APIKey = mask(masked.Passages.APIKey)
	masked.LLM.APIKey = mask(masked.LLM.APIKey)
	masked.Narration.APIKey = mask(masked.Narration.APIKey)
	b, err := toml.Marshal(masked)
	if err != nil {
		exitErr("encode config", err)
	}
	fmt.Print(string(b))
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}
