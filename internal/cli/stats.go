package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}
	if !textOutput() {
		printJSON(stats)
		return
	}

	fmt.Printf("%s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
	rows := [][]string{
		{"plans", humanize.Comma(int64(stats.Plans))},
		{"items", humanize.Comma(int64(stats.Items))},
		{"published items", humanize.Comma(int64(stats.PublishedItems))},
		{"lessons", humanize.Comma(int64(stats.Lessons))},
		{"lessons with audio", humanize.Comma(int64(stats.LessonsWithAudio))},
		{"deleted lessons", humanize.Comma(int64(stats.DeletedLessons))},
		{"mappings", humanize.Comma(int64(stats.Mappings))},
		{"reused / created", fmt.Sprintf("%d / %d", stats.Reused, stats.Created)},
		{"reuse ratio", strconv.FormatFloat(stats.ReuseRatio*100, 'f', 1, 64) + "%"},
	}
	fmt.Println(renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	if len(stats.PlanStats) > 0 {
		prow := make([][]string, 0, len(stats.PlanStats))
		for _, p := range stats.PlanStats {
			prow = append(prow, []string{p.PlanID, p.Title, fmt.Sprintf("%d/%d", p.Completed, p.Items)})
		}
		fmt.Println(renderTable([]string{"Plan", "Title", "Done"}, prow, []columnAlignment{alignLeft, alignLeft, alignRight}))
	}
}
