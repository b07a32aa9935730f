package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/scripture"
	"github.com/rcliao/lessonforge/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lessons, newest first",
		Run:   runList,
	}

	cmd.Flags().StringP("translation", "t", "", "Filter by translation")
	cmd.Flags().Bool("missing-audio", false, "Only lessons without audio")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	lessonCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	translation, _ := cmd.Flags().GetString("translation")
	missingAudio, _ := cmd.Flags().GetBool("missing-audio")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	lessons, err := s.ListLessons(cmd.Context(), store.ListLessonsParams{
		Translation:  scripture.NormalizeTranslation(translation),
		MissingAudio: missingAudio,
		Limit:        limit,
	})
	if err != nil {
		exitErr("list", err)
	}
	printLessons(lessons)
}
