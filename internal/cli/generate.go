package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate lessons for plan items",
}

func init() {
	oneCmd := &cobra.Command{
		Use:   "one <item-id>",
		Short: "Generate or reuse the lesson for one item",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerateOne,
	}
	batchCmd := &cobra.Command{
		Use:   "batch <plan-id>",
		Short: "Process the next N pending items of a plan in sequence order",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerateBatch,
	}
	batchCmd.Flags().IntP("size", "n", 0, "Batch size (default: pipeline.batch_size)")
	nextCmd := &cobra.Command{
		Use:   "next <plan-id>",
		Short: "Process the lowest-sequence pending item",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerateNext,
	}

	generateCmd.AddCommand(oneCmd, batchCmd, nextCmd)
	RootCmd.AddCommand(generateCmd)
}

func runGenerateOne(cmd *cobra.Command, args []string) {
	rt := newRuntime(cmd.Context(), true, false)
	defer rt.close()

	prog, err := rt.pipeline.GenerateOne(cmd.Context(), args[0])
	if err != nil {
		exitErr("generate", err)
	}
	printProgress(prog)
}

func runGenerateBatch(cmd *cobra.Command, args []string) {
	size, _ := cmd.Flags().GetInt("size")
	rt := newRuntime(cmd.Context(), true, false)
	defer rt.close()
	if size <= 0 {
		size = rt.cfg.Pipeline.BatchSize
	}

	prog, err := rt.pipeline.GenerateBatch(cmd.Context(), args[0], size)
	if err != nil {
		exitErr("generate batch", err)
	}
	printProgress(prog)
}

func runGenerateNext(cmd *cobra.Command, args []string) {
	rt := newRuntime(cmd.Context(), true, false)
	defer rt.close()

	prog, err := rt.pipeline.GenerateNextPending(cmd.Context(), args[0])
	if err != nil {
		exitErr("generate next", err)
	}
	printProgress(prog)
}

func printProgress(prog pipeline.Progress) {
	if !textOutput() {
		printJSON(prog)
		return
	}
	if len(prog.Results) > 0 {
		rows := make([][]string, 0, len(prog.Results))
		for _, r := range prog.Results {
			note := r.Error
			if r.Existing {
				note = "already mapped"
			}
			rows = append(rows, []string{strconv.Itoa(r.Seq), r.ItemID, string(r.Outcome), r.LessonID, note})
		}
		fmt.Println(renderTable([]string{"Seq", "Item", "Outcome", "Lesson", "Note"}, rows, []columnAlignment{alignRight}))
	}
	fmt.Printf("%s: %d/%d completed, %d remaining\n", prog.PlanID, prog.Completed, prog.Total, prog.Remaining)
}
