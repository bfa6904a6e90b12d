package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"incubation-backend/internal/models"
	"incubation-backend/internal/workflow"
)

type ProjectsHandler struct {
	base
}

func NewProjectsHandler(service *workflow.Service, logger *slog.Logger) *ProjectsHandler {
	return &ProjectsHandler{base: newBase(service, logger)}
}

// CreateProject godoc
// @Summary     Create project
// @Description Creates a startup project. Accepts JSON or multipart with an optional requirements document.
// @Tags        projects
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       request body models.ProjectRequest true "Project"
// @Param       requirements formData file false "Requirements document"
// @Success     201 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req models.ProjectRequest
	if !bind(c, &req) {
		return
	}
	requirements, ok := upload(c, "requirements")
	if !ok {
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), userID, req, requirements)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// ListProjects godoc
// @Summary     List projects
// @Description Startups get their own projects. Freelancers get open projects (scope=available) or projects assigned to them (scope=assigned).
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       scope query string false "available or assigned"
// @Success     200 {object} models.ProjectListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	projects, err := h.service.ListProjects(c.Request.Context(), userID, c.Query("scope"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: nonNil(projects)})
}

// GetProject godoc
// @Summary     Get project
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.Project
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	project, err := h.service.GetProject(c.Request.Context(), userID, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProject godoc
// @Summary     Update project
// @Description Partially updates a project owned by the caller. Status ASSIGNED is reserved for proposal approval.
// @Tags        projects
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.ProjectUpdateRequest true "Fields to change"
// @Param       requirements formData file false "Replacement requirements document"
// @Success     200 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id} [patch]
func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req models.ProjectUpdateRequest
	if !bind(c, &req) {
		return
	}
	requirements, ok := upload(c, "requirements")
	if !ok {
		return
	}

	project, err := h.service.UpdateProject(c.Request.Context(), userID, projectID, req, requirements)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject godoc
// @Summary     Delete project
// @Description Deletes the project together with its proposals, assignment and milestones
// @Tags        projects
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     204
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [delete]
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	if err := h.service.DeleteProject(c.Request.Context(), userID, projectID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteProject godoc
// @Summary     Complete project
// @Description Marks a project assigned to the calling freelancer as completed and notifies the startup
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.Project
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/complete [post]
func (h *ProjectsHandler) CompleteProject(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	project, err := h.service.CompleteProject(c.Request.Context(), userID, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// AssignEmployee godoc
// @Summary     Assign employee
// @Description Assigns one of the startup's internal employees to the project
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.AssignEmployeeRequest true "Employee"
// @Success     200 {object} models.Assignment
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/assignment [post]
func (h *ProjectsHandler) AssignEmployee(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req models.AssignEmployeeRequest
	if !bind(c, &req) {
		return
	}

	assignment, err := h.service.AssignEmployee(c.Request.Context(), userID, projectID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// DeactivateAssignment godoc
// @Summary     Deactivate assignment
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.Assignment
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/assignment [delete]
func (h *ProjectsHandler) DeactivateAssignment(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	assignment, err := h.service.DeactivateAssignment(c.Request.Context(), userID, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// CreateEmployee godoc
// @Summary     Create employee
// @Tags        employees
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       request body models.EmployeeRequest true "Employee"
// @Param       profile_picture formData file false "Profile picture"
// @Success     201 {object} models.Employee
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /employees [post]
func (h *ProjectsHandler) CreateEmployee(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req models.EmployeeRequest
	if !bind(c, &req) {
		return
	}
	picture, ok := upload(c, "profile_picture")
	if !ok {
		return
	}

	employee, err := h.service.CreateEmployee(c.Request.Context(), userID, req, picture)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// ListEmployees godoc
// @Summary     List employees
// @Tags        employees
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.EmployeeListResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /employees [get]
func (h *ProjectsHandler) ListEmployees(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	employees, err := h.service.ListEmployees(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.EmployeeListResponse{Employees: nonNil(employees)})
}
