package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <lesson-id>",
		Short: "Soft-delete a lesson",
		Long: "Marks a lesson deleted so its reference and translation can be generated again. " +
			"Items already mapped to it keep their mapping.",
		Args: cobra.ExactArgs(1),
		Run:  runRm,
	}

	lessonCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	if err := s.DeleteLesson(cmd.Context(), args[0]); err != nil {
		exitErr("rm", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", args[0])
}
