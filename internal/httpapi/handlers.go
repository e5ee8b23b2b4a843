package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilianohg/waypoint/internal/planner"
)

func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.store.ListProjects(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, "list_projects", err)
		return
	}
	respondSuccess(c, "list_projects", http.StatusOK, projects)
}

func (s *Server) handleGetProject(c *gin.Context) {
	project, err := s.store.GetProject(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		s.respondStoreError(c, "get_project", err)
		return
	}
	respondSuccess(c, "get_project", http.StatusOK, project)
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req planner.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "create_project", err)
		return
	}

	project, err := s.store.CreateProject(c.Request.Context(), req)
	if err != nil {
		s.respondStoreError(c, "create_project", err)
		return
	}
	respondSuccess(c, "create_project", http.StatusCreated, project)
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	var req planner.ProjectPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "update_project", err)
		return
	}

	project, err := s.store.UpdateProject(c.Request.Context(), c.Param("projectId"), req)
	if err != nil {
		s.respondStoreError(c, "update_project", err)
		return
	}
	respondSuccess(c, "update_project", http.StatusOK, project)
}

// handleDeleteProject removes a project with its milestones and tasks.
func (s *Server) handleDeleteProject(c *gin.Context) {
	id := c.Param("projectId")
	removed, err := s.store.DeleteProject(c.Request.Context(), id)
	s.respondDeleted(c, "delete_project", removed, err,
		&planner.NotFoundError{Kind: planner.KindProject, ID: id})
}

func (s *Server) handleCreateMilestone(c *gin.Context) {
	var req planner.MilestoneInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "create_milestone", err)
		return
	}

	milestone, err := s.store.CreateMilestone(c.Request.Context(), c.Param("projectId"), req)
	if err != nil {
		s.respondStoreError(c, "create_milestone", err)
		return
	}
	respondSuccess(c, "create_milestone", http.StatusCreated, milestone)
}

func (s *Server) handleUpdateMilestone(c *gin.Context) {
	var req planner.MilestonePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "update_milestone", err)
		return
	}

	milestone, err := s.store.UpdateMilestone(c.Request.Context(), c.Param("projectId"), c.Param("milestoneId"), req)
	if err != nil {
		s.respondStoreError(c, "update_milestone", err)
		return
	}
	respondSuccess(c, "update_milestone", http.StatusOK, milestone)
}

func (s *Server) handleDeleteMilestone(c *gin.Context) {
	id := c.Param("milestoneId")
	removed, err := s.store.DeleteMilestone(c.Request.Context(), c.Param("projectId"), id)
	s.respondDeleted(c, "delete_milestone", removed, err,
		&planner.NotFoundError{Kind: planner.KindMilestone, ID: id})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req planner.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "create_task", err)
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), c.Param("projectId"), c.Param("milestoneId"), req)
	if err != nil {
		s.respondStoreError(c, "create_task", err)
		return
	}
	respondSuccess(c, "create_task", http.StatusCreated, task)
}

// handleUpdateTask merges the payload into the task; a status change also
// moves its start and completion dates.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req planner.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, "update_task", err)
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(),
		c.Param("projectId"), c.Param("milestoneId"), c.Param("taskId"), req)
	if err != nil {
		s.respondStoreError(c, "update_task", err)
		return
	}
	respondSuccess(c, "update_task", http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id := c.Param("taskId")
	removed, err := s.store.DeleteTask(c.Request.Context(), c.Param("projectId"), c.Param("milestoneId"), id)
	s.respondDeleted(c, "delete_task", removed, err,
		&planner.NotFoundError{Kind: planner.KindTask, ID: id})
}

func (s *Server) handleListMilestones(c *gin.Context) {
	milestones, err := s.store.ListMilestonesFlat(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, "list_milestones", err)
		return
	}
	respondSuccess(c, "list_milestones", http.StatusOK, milestones)
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.ListTasksFlat(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, "list_tasks", err)
		return
	}
	respondSuccess(c, "list_tasks", http.StatusOK, tasks)
}

func (s *Server) handleSummary(c *gin.Context) {
	summary, err := s.store.Summary(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, "summary", err)
		return
	}
	respondSuccess(c, "summary", http.StatusOK, summary)
}
