package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emilianohg/waypoint/internal/models"
	"github.com/emilianohg/waypoint/internal/planner"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a project",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		desc, _ := cmd.Flags().GetString("description")
		p, err := e.store.CreateProject(cmd.Context(), planner.ProjectInput{
			Title:       strings.Join(args, " "),
			Description: desc,
		})
		if err != nil {
			e.fail(cmd, err)
		}
		fmt.Printf("Created project %s (%s)\n", p.Title, p.ID)
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		projects, err := e.store.ListProjects(cmd.Context())
		if err != nil {
			e.fail(cmd, err)
		}
		if len(projects) == 0 {
			fmt.Println("No projects yet. Create one with 'waypoint project add <title>'.")
			return
		}
		for _, p := range projects {
			tasks := 0
			for _, m := range p.Milestones {
				tasks += len(m.Tasks)
			}
			fmt.Printf("%s  %s  (%d milestones, %d tasks)\n", p.ID, p.Title, len(p.Milestones), tasks)
		}
	},
}

var projectEditCmd = &cobra.Command{
	Use:   "edit <project-id>",
	Short: "Change a project's title or description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		var patch planner.ProjectPatch
		patch.Title = stringFlag(cmd, "title")
		patch.Description = stringFlag(cmd, "description")

		p, err := e.store.UpdateProject(cmd.Context(), args[0], patch)
		if err != nil {
			e.fail(cmd, err)
		}
		fmt.Printf("Updated project %s (%s)\n", p.Title, p.ID)
	},
}

var projectRmCmd = &cobra.Command{
	Use:     "rm <project-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a project with its milestones and tasks",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		removed, err := e.store.DeleteProject(cmd.Context(), args[0])
		if err != nil {
			e.fail(cmd, err)
		}
		if !removed {
			e.fail(cmd, &planner.NotFoundError{Kind: planner.KindProject, ID: args[0]})
		}
		fmt.Printf("Deleted project %s\n", args[0])
	},
}

var milestoneCmd = &cobra.Command{
	Use:   "milestone",
	Short: "Manage milestones",
}

var milestoneAddCmd = &cobra.Command{
	Use:   "add <project-id> <title>",
	Short: "Create a milestone in a project",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		in := planner.MilestoneInput{Title: strings.Join(args[1:], " ")}
		in.Description, _ = cmd.Flags().GetString("description")
		in.DueDate, _ = cmd.Flags().GetString("due")
		in.Stakeholders, _ = cmd.Flags().GetStringSlice("stakeholder")
		priority, _ := cmd.Flags().GetString("priority")
		in.Priority = models.MilestonePriority(priority)

		m, err := e.store.CreateMilestone(cmd.Context(), args[0], in)
		if err != nil {
			e.fail(cmd, err)
		}
		fmt.Printf("Created milestone %s (%s)\n", m.Title, m.ID)
	},
}

var milestoneListCmd = &cobra.Command{
	Use:     "list [project-id]",
	Aliases: []string{"ls"},
	Short:   "List milestones across projects",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		views, err := e.store.ListMilestonesFlat(cmd.Context())
		if err != nil {
			e.fail(cmd, err)
		}
		shown := 0
		for _, v := range views {
			if len(args) == 1 && v.Project.ID != args[0] {
				continue
			}
			shown++
			fmt.Printf("%s  %s / %s  priority=%s due=%s tasks=%d\n",
				v.ID, v.Project.Title, v.Title, orDash(string(v.Priority)), orDash(v.DueDate), v.TaskCount)
		}
		if shown == 0 {
			fmt.Println("No milestones.")
		}
	},
}

var milestoneEditCmd = &cobra.Command{
	Use:   "edit <project-id> <milestone-id>",
	Short: "Change a milestone",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		var patch planner.MilestonePatch
		patch.Title = stringFlag(cmd, "title")
		patch.Description = stringFlag(cmd, "description")
		patch.DueDate = stringFlag(cmd, "due")
		if p := stringFlag(cmd, "priority"); p != nil {
			priority := models.MilestonePriority(*p)
			patch.Priority = &priority
		}
		if cmd.Flags().Changed("stakeholder") {
			people, _ := cmd.Flags().GetStringSlice("stakeholder")
			patch.Stakeholders = &people
		}

		m, err := e.store.UpdateMilestone(cmd.Context(), args[0], args[1], patch)
		if err != nil {
			e.fail(cmd, err)
		}
		fmt.Printf("Updated milestone %s (%s)\n", m.Title, m.ID)
	},
}

var milestoneRmCmd = &cobra.Command{
	Use:     "rm <project-id> <milestone-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a milestone with its tasks",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		removed, err := e.store.DeleteMilestone(cmd.Context(), args[0], args[1])
		if err != nil {
			e.fail(cmd, err)
		}
		if !removed {
			e.fail(cmd, &planner.NotFoundError{Kind: planner.KindMilestone, ID: args[1]})
		}
		fmt.Printf("Deleted milestone %s\n", args[1])
	},
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <project-id> <milestone-id> <title>",
	Short: "Create a task in a milestone",
	Args:  cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		in := planner.TaskInput{Title: strings.Join(args[2:], " ")}
		in.Description, _ = cmd.Flags().GetString("description")
		in.AssignedResource, _ = cmd.Flags().GetString("assign")
		priority, _ := cmd.Flags().GetString("priority")
		in.Priority = models.TaskPriority(priority)
		effort, _ := cmd.Flags().GetString("effort")
		in.EffortLevel = models.EffortLevel(effort)

		t, err := e.store.CreateTask(cmd.Context(), args[0], args[1], in)
		if err != nil {
			e.fail(cmd, err)
		}
		fmt.Printf("Created task %s (%s)\n", t.Title, t.ID)
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks across projects",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		status, _ := cmd.Flags().GetString("status")
		project, _ := cmd.Flags().GetString("project")

		views, err := e.store.ListTasksFlat(cmd.Context())
		if err != nil {
			e.fail(cmd, err)
		}
		shown := 0
		for _, v := range views {
			if status != "" && string(v.Status) != status {
				continue
			}
			if project != "" && v.Project.ID != project {
				continue
			}
			shown++
			fmt.Printf("%s  %-11s  %s / %s / %s%s\n",
				v.ID, v.Status, v.Project.Title, v.Milestone.Title, v.Title, taskDates(v.Task))
		}
		if shown == 0 {
			fmt.Println("No tasks.")
		}
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <project-id> <milestone-id> <task-id>",
	Short: "Change a task",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		var patch planner.TaskPatch
		patch.Title = stringFlag(cmd, "title")
		patch.Description = stringFlag(cmd, "description")
		patch.AssignedResource = stringFlag(cmd, "assign")
		if p := stringFlag(cmd, "priority"); p != nil {
			priority := models.TaskPriority(*p)
			patch.Priority = &priority
		}
		if f := stringFlag(cmd, "effort"); f != nil {
			effort := models.EffortLevel(*f)
			patch.EffortLevel = &effort
		}

		t, err := e.store.UpdateTask(cmd.Context(), args[0], args[1], args[2], patch)
		if err != nil {
			e.fail(cmd, err)
		}
		fmt.Printf("Updated task %s (%s)\n", t.Title, t.ID)
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <project-id> <milestone-id> <task-id> <not-started|in-progress|completed>",
	Short: "Move a task to another status",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		status := models.TaskStatus(args[3])
		t, err := e.store.UpdateTask(cmd.Context(), args[0], args[1], args[2], planner.TaskPatch{Status: &status})
		if err != nil {
			e.fail(cmd, err)
		}
		fmt.Printf("%s is now %s%s\n", t.Title, t.Status, taskDates(*t))
	},
}

var taskRmCmd = &cobra.Command{
	Use:     "rm <project-id> <milestone-id> <task-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		removed, err := e.store.DeleteTask(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			e.fail(cmd, err)
		}
		if !removed {
			e.fail(cmd, &planner.NotFoundError{Kind: planner.KindTask, ID: args[2]})
		}
		fmt.Printf("Deleted task %s\n", args[2])
	},
}

// stringFlag returns the flag value only when it was given on the command
// line, so an unset flag leaves the field alone.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func taskDates(t models.Task) string {
	var parts []string
	if t.StartDate != nil {
		parts = append(parts, "started "+t.StartDate.Local().Format(time.DateOnly))
	}
	if t.CompletedDate != nil {
		parts = append(parts, "completed "+t.CompletedDate.Local().Format(time.DateOnly))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  (" + strings.Join(parts, ", ") + ")"
}

func init() {
	projectAddCmd.Flags().StringP("description", "d", "", "Project description")
	projectEditCmd.Flags().String("title", "", "New title")
	projectEditCmd.Flags().StringP("description", "d", "", "New description (empty clears it)")
	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectEditCmd, projectRmCmd)

	for _, c := range []*cobra.Command{milestoneAddCmd, milestoneEditCmd} {
		c.Flags().StringP("description", "d", "", "Milestone description")
		c.Flags().StringP("priority", "p", "", "Priority: low, medium or high")
		c.Flags().String("due", "", "Due date, e.g. 2025-03-31")
		c.Flags().StringSlice("stakeholder", nil, "Stakeholder (repeatable)")
	}
	milestoneEditCmd.Flags().String("title", "", "New title")
	milestoneCmd.AddCommand(milestoneAddCmd, milestoneListCmd, milestoneEditCmd, milestoneRmCmd)

	for _, c := range []*cobra.Command{taskAddCmd, taskEditCmd} {
		c.Flags().StringP("description", "d", "", "Task description")
		c.Flags().StringP("priority", "p", "", "Priority: low, medium, high or urgent")
		c.Flags().StringP("effort", "e", "", "Effort: small, medium, large or x-large")
		c.Flags().StringP("assign", "a", "", "Person or resource assigned")
	}
	taskEditCmd.Flags().String("title", "", "New title")
	taskListCmd.Flags().StringP("status", "s", "", "Only tasks with this status")
	taskListCmd.Flags().String("project", "", "Only tasks in this project")
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskEditCmd, taskStatusCmd, taskRmCmd)

	rootCmd.AddCommand(projectCmd, milestoneCmd, taskCmd)
}
