package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/scripture"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export lessons as JSON",
		Long:  "Export every active lesson as a JSON array. Filter by translation with -t.",
		Run:   runExport,
	}

	cmd.Flags().StringP("translation", "t", "", "Filter by translation")

	lessonCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	translation, _ := cmd.Flags().GetString("translation")

	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	lessons, err := s.ExportLessons(cmd.Context(), scripture.NormalizeTranslation(translation))
	if err != nil {
		exitErr("export", err)
	}
	printJSON(lessons)
}
