package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/scripture"
	"github.com/rcliao/lessonforge/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search lessons by keyword",
		Long:  "Search lesson references, passage text, titles and teaching bodies. Reference matches rank first.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("translation", "t", "", "Filter by translation")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	lessonCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	translation, _ := cmd.Flags().GetString("translation")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	results, err := s.SearchLessons(cmd.Context(), store.SearchParams{
		Query:       query,
		Translation: scripture.NormalizeTranslation(translation),
		Limit:       limit,
	})
	if err != nil {
		exitErr("search", err)
	}
	printLessons(results)
}
