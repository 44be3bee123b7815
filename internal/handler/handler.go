package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"adminpanel/internal/admin"
	"adminpanel/internal/httpmiddleware"
	"adminpanel/internal/model"
)

const (
	tabStudents = "students"
	tabTeams    = "teams"
)

// Page is the controller behind the admin page.
type Page interface {
	Visible(f model.Filter) []model.Student
	Snapshot() admin.State
	Loaded() (students, teams bool)
	ToggleStatus(ctx context.Context, id string, current model.Status) (model.Status, error)
	Refresh(ctx context.Context) error
}

type Handler struct {
	log         *slog.Logger
	page        Page
	feedHealthy func(ctx context.Context) bool // nil when the feed needs no broker
}

func New(log *slog.Logger, page Page, feedHealthy func(ctx context.Context) bool) *Handler {
	return &Handler{log: log, page: page, feedHealthy: feedHealthy}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	students, teams := h.page.Loaded()
	body := gin.H{"status": "ok", "students_loaded": students, "teams_loaded": teams}
	status := http.StatusOK
	if h.feedHealthy != nil {
		feed := h.feedHealthy(c.Request.Context())
		body["feed"] = feed
		if !feed {
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, body)
}

// ---------- Page ----------

type view struct {
	Tab      string
	Filter   model.Filter
	Students []model.Student
	Teams    []model.Team
}

// AdminPage renders the students or teams tab. The student list is filtered on every render.
func (h *Handler) AdminPage(c *gin.Context) {
	tab, filter := readView(c)
	v := view{Tab: tab, Filter: filter}

	switch tab {
	case tabTeams:
		v.Teams = h.page.Snapshot().Teams
	default:
		v.Students = h.page.Visible(filter)
	}
	c.HTML(http.StatusOK, "admin.tmpl", v)
}

// ---------- Actions ----------

// ToggleStatus flips one student's status and sends the browser back to the page.
// Failures are logged by the controller and never shown.
func (h *Handler) ToggleStatus(c *gin.Context) {
	id := c.Param("id")
	current := model.Status(c.PostForm("status"))

	if _, err := h.page.ToggleStatus(c.Request.Context(), id, current); err != nil {
		httpmiddleware.Logger(c, h.log).Debug("toggle not applied", slog.String("student_id", id))
	}
	h.backToPage(c)
}

// Refresh reloads both collections on explicit request.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.page.Refresh(c.Request.Context()); err != nil {
		httpmiddleware.Logger(c, h.log).Debug("refresh incomplete")
	}
	h.backToPage(c)
}

func (h *Handler) backToPage(c *gin.Context) {
	tab, filter := readView(c)
	c.Redirect(http.StatusSeeOther, "/?"+viewQuery(tab, filter).Encode())
}

// ---------- JSON ----------

func (h *Handler) ListStudents(c *gin.Context) {
	_, filter := readView(c)
	c.JSON(http.StatusOK, h.page.Visible(filter))
}

func (h *Handler) ListTeams(c *gin.Context) {
	c.JSON(http.StatusOK, h.page.Snapshot().Teams)
}

// readView reads tab and filters from the query string or a posted form.
func readView(c *gin.Context) (string, model.Filter) {
	get := c.Query
	if c.Request.Method == http.MethodPost {
		get = c.PostForm
	}
	tab := get("tab")
	if tab != tabTeams {
		tab = tabStudents
	}
	return tab, model.Filter{Team: get("team"), Event: get("event")}
}

func viewQuery(tab string, f model.Filter) url.Values {
	q := url.Values{"tab": {tab}}
	if f.Team != "" {
		q.Set("team", f.Team)
	}
	if f.Event != "" {
		q.Set("event", f.Event)
	}
	return q
}
