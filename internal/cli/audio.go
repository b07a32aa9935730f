package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/scripture"
)

var errNarrationDisabled = errors.New("narration is disabled or has no api key (set narration.enabled and TTS_API_KEY or OPENAI_API_KEY)")

var audioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Manage lesson narration",
}

func init() {
	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Narrate lessons that have no audio",
		Long:  "Synthesizes narration for lessons persisted without audio and attaches it. Lessons that already have audio are never touched.",
		Run:   runAudioBackfill,
	}
	backfillCmd.Flags().StringP("translation", "t", "", "Filter by translation")
	backfillCmd.Flags().IntP("limit", "l", 20, "Max lessons to narrate")

	audioCmd.AddCommand(backfillCmd)
	RootCmd.AddCommand(audioCmd)
}

func runAudioBackfill(cmd *cobra.Command, args []string) {
	translation, _ := cmd.Flags().GetString("translation")
	limit, _ := cmd.Flags().GetInt("limit")

	rt := newRuntime(cmd.Context(), false, true)
	defer rt.close()

	results, err := rt.pipeline.BackfillAudio(cmd.Context(), scripture.NormalizeTranslation(translation), limit)
	if err != nil {
		exitErr("audio backfill", err)
	}
	if !textOutput() {
		printJSON(results)
		return
	}
	rows := make([][]string, 0, len(results))
	attached := 0
	for _, r := range results {
		if r.Attached {
			attached++
		}
		rows = append(rows, []string{r.LessonID, r.Reference, yesNo(r.Attached), r.Error})
	}
	fmt.Println(renderTable([]string{"Lesson", "Reference", "Attached", "Error"}, rows, nil))
	fmt.Printf("%d of %d lessons narrated\n", attached, len(results))
}
