package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/model"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Inspect and administer canonical lessons",
}

func init() {
	RootCmd.AddCommand(lessonCmd)
}

func printLessons(lessons []model.Lesson) {
	if !textOutput() {
		if lessons == nil {
			lessons = []model.Lesson{}
		}
		printJSON(lessons)
		return
	}
	rows := make([][]string, 0, len(lessons))
	for _, l := range lessons {
		rows = append(rows, []string{l.ID, l.CanonicalReference, l.Translation, l.Content.Title, yesNo(l.Audio.Present()), ago(l.CreatedAt)})
	}
	fmt.Println(renderTable([]string{"ID", "Reference", "Tr", "Title", "Audio", "Created"}, rows, nil))
}
