package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/scripture"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Normalize scripture references",
}

func init() {
	normalizeCmd := &cobra.Command{
		Use:   "normalize <reference>...",
		Short: "Print the canonical form of each reference",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRefsNormalize,
	}
	repairCmd := &cobra.Command{
		Use:   "repair",
		Short: "Re-normalize stored references",
		Long: "Re-applies reference normalization to stored plan items and lesson keys. " +
			"Lessons whose new key is already taken are reported as collisions and left unchanged. " +
			"Nothing is written without --apply.",
		Run: runRefsRepair,
	}
	repairCmd.Flags().Bool("apply", false, "Write the changes")

	refsCmd.AddCommand(normalizeCmd, repairCmd)
	RootCmd.AddCommand(refsCmd)
}

func runRefsNormalize(cmd *cobra.Command, args []string) {
	type pair struct {
		Input     string `json:"input"`
		Canonical string `json:"canonical"`
	}
	out := make([]pair, 0, len(args))
	for _, a := range args {
		out = append(out, pair{Input: a, Canonical: scripture.Normalize(a)})
	}
	if !textOutput() {
		printJSON(out)
		return
	}
	for _, p := range out {
		fmt.Printf("%s\t%s\n", p.Input, p.Canonical)
	}
}

func runRefsRepair(cmd *cobra.Command, args []string) {
	apply, _ := cmd.Flags().GetBool("apply")

	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	report, err := s.RepairReferences(cmd.Context(), scripture.Normalize, apply)
	if err != nil {
		exitErr("repair", err)
	}
	if !textOutput() {
		printJSON(report)
		return
	}
	verb := "would change"
	if report.Applied {
		verb = "changed"
	}
	fmt.Printf("items: %d checked, %s %d\n", report.ItemsChecked, verb, len(report.ItemChanges))
	fmt.Printf("lessons: %d checked, %s %d\n", report.LessonsChecked, verb, len(report.LessonChanges))
	if len(report.Collisions) > 0 {
		rows := make([][]string, 0, len(report.Collisions))
		for _, c := range report.Collisions {
			rows = append(rows, []string{c.LessonID, c.CanonicalBefore, c.CanonicalAfter, c.ConflictsWith})
		}
		fmt.Println(renderTable([]string{"Lesson", "Before", "After", "Conflicts with"}, rows, nil))
	}
}
