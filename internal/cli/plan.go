package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/lessonforge/internal/model"
	"github.com/rcliao/lessonforge/internal/planfile"
	"github.com/rcliao/lessonforge/internal/store"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Import and inspect reading plans",
}

func init() {
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a plan from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		Run:   runPlanImport,
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List plans with progress",
		Run:   runPlanList,
	}
	showCmd := &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a plan's items and their lessons",
		Args:  cobra.ExactArgs(1),
		Run:   runPlanShow,
	}
	progressCmd := &cobra.Command{
		Use:   "progress <plan-id>",
		Short: "Show completed, total and remaining items",
		Args:  cobra.ExactArgs(1),
		Run:   runPlanProgress,
	}

	planCmd.AddCommand(importCmd, listCmd, showCmd, progressCmd)
	RootCmd.AddCommand(planCmd)
}

type planSummary struct {
	model.Plan
	Items     int `json:"items"`
	Completed int `json:"completed"`
}

func runPlanImport(cmd *cobra.Command, args []string) {
	f, err := planfile.Load(args[0])
	if err != nil {
		exitErr("read plan", err)
	}
	params, err := f.Params()
	if err != nil {
		exitErr("read plan", err)
	}

	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	plan, items, err := s.CreatePlan(cmd.Context(), params)
	if err != nil {
		exitErr("create plan", err)
	}
	if textOutput() {
		fmt.Printf("Created plan %s (%q) with %d items\n", plan.ID, plan.Title, len(items))
		return
	}
	printJSON(map[string]any{"plan": plan, "items": items})
}

func runPlanList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	plans, err := s.ListPlans(cmd.Context())
	if err != nil {
		exitErr("list plans", err)
	}
	out := make([]planSummary, 0, len(plans))
	for _, p := range plans {
		c, err := s.PlanCounts(cmd.Context(), p.ID)
		if err != nil {
			exitErr("plan counts", err)
		}
		out = append(out, planSummary{Plan: p, Items: c.Total, Completed: c.Completed})
	}

	if !textOutput() {
		printJSON(out)
		return
	}
	rows := make([][]string, 0, len(out))
	for _, p := range out {
		rows = append(rows, []string{p.ID, p.Title, p.Translation, fmt.Sprintf("%d/%d", p.Completed, p.Items), ago(p.CreatedAt)})
	}
	fmt.Println(renderTable([]string{"ID", "Title", "Translation", "Done", "Created"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
}

type itemView struct {
	model.PlanItem
	LessonID string        `json:"lesson_id,omitempty"`
	Outcome  model.Outcome `json:"outcome,omitempty"`
}

func runPlanShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	ctx := cmd.Context()
	plan, err := s.GetPlan(ctx, args[0])
	if err != nil {
		exitErr("get plan", err)
	}
	items, err := s.ListItems(ctx, plan.ID)
	if err != nil {
		exitErr("list items", err)
	}
	mappings, err := s.ListMappings(ctx, plan.ID)
	if err != nil {
		exitErr("list mappings", err)
	}
	byItem := make(map[string]model.Mapping, len(mappings))
	for _, m := range mappings {
		byItem[m.ItemID] = m
	}
	views := make([]itemView, 0, len(items))
	for _, it := range items {
		v := itemView{PlanItem: it}
		if m, ok := byItem[it.ID]; ok {
			v.LessonID, v.Outcome = m.LessonID, m.Outcome
		}
		views = append(views, v)
	}

	if !textOutput() {
		printJSON(map[string]any{"plan": plan, "items": views})
		return
	}
	fmt.Printf("%s  %s (%s)\n", plan.ID, plan.Title, plan.Translation)
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			strconv.Itoa(v.Seq), strings.Join(v.References, "; "), v.Translation, string(v.Status), string(v.Outcome), v.LessonID,
		})
	}
	fmt.Println(renderTable([]string{"Seq", "References", "Tr", "Status", "Outcome", "Lesson"}, rows,
		[]columnAlignment{alignRight}))
}

func runPlanProgress(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s := openStore(cfg)
	defer s.Close()

	c, err := s.PlanCounts(cmd.Context(), args[0])
	if err != nil {
		exitErr("plan progress", err)
	}
	printProgressCounts(args[0], c)
}

func printProgressCounts(planID string, c store.Counts) {
	remaining := c.Total - c.Completed
	if textOutput() {
		fmt.Printf("%s: %d/%d completed, %d remaining\n", planID, c.Completed, c.Total, remaining)
		return
	}
	printJSON(map[string]any{
		"plan_id":   planID,
		"completed": c.Completed,
		"total":     c.Total,
		"remaining": remaining,
		"done":      remaining == 0,
	})
}
