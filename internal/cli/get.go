package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <lesson-id|share-id>",
		Short: "Retrieve a lesson",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}
	cmd.Flags().Bool("story", false, "Print only the story manifest")

	lessonCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	storyOnly, _ := cmd.Flags().GetBool("story")

	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	l, err := s.GetLesson(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}
	if storyOnly {
		printJSON(l.Story)
		return
	}
	if !textOutput() {
		printJSON(l)
		return
	}
	printLessonText(l)
}

func printLessonText(l *model.Lesson) {
	fmt.Printf("%s · %s\n", l.CanonicalReference, l.Translation)
	fmt.Printf("id %s  share %s  created %s\n\n", l.ID, l.ShareID, ago(l.CreatedAt))
	if l.Content.Title != "" {
		fmt.Println(l.Content.Title)
	}
	fmt.Println(l.Content.Preview)
	fmt.Println()

	rows := make([][]string, 0, len(l.Story.Pages))
	for i, p := range l.Story.Pages {
		rows = append(rows, []string{fmt.Sprint(i), string(p.Type), p.Title, fmt.Sprint(len(p.Items))})
	}
	fmt.Println(renderTable([]string{"#", "Type", "Title", "Items"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))

	if audio, ok := l.Audio.Get(); ok {
		fmt.Printf("audio: %d pages, %s\n", len(audio.Pages), audio.TotalDuration().Round(100*time.Millisecond))
	} else {
		fmt.Println("audio: none")
	}
}
