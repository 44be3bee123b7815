package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"adminpanel/internal/logger"
	"adminpanel/internal/metrics"
	"adminpanel/internal/model"
	"adminpanel/internal/queue"
)

// Roster is the external service holding students and teams.
type Roster interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
	UpdateStudentStatus(ctx context.Context, id string, status model.Status) error
}

// State is everything the admin page shows, as last fetched.
type State struct {
	Students []model.Student
	Teams    []model.Team
}

// Controller owns the page state. Collections are replaced wholesale on load
// and patched one record at a time on toggle; failures leave state as it was.
type Controller struct {
	log     *slog.Logger
	roster  Roster
	feed    queue.Queue
	metrics *metrics.Metrics
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	start  sync.Once

	mu             sync.RWMutex
	state          State
	studentsLoaded bool
	teamsLoaded    bool
}

// Option customizes a Controller.
type Option func(*Controller)

// WithFeed publishes confirmed toggles to q.
func WithFeed(q queue.Queue) Option {
	return func(c *Controller) { c.feed = q }
}

// WithMetrics records upstream calls on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// NewController creates a controller with empty collections.
func NewController(log *slog.Logger, roster Roster, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		log:    log,
		roster: roster,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		state: State{
			Students: []model.Student{},
			Teams:    []model.Team{},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start issues the two initial loads concurrently. Only the first call does anything.
func (c *Controller) Start() error {
	err := errors.New("already started")
	c.start.Do(func() {
		err = c.loadAll(c.ctx)
	})
	return err
}

// Refresh reloads both collections on explicit request.
func (c *Controller) Refresh(ctx context.Context) error {
	ctx, done := c.detach(ctx)
	defer done()
	return c.loadAll(ctx)
}

func (c *Controller) loadAll(ctx context.Context) error {
	g := new(errgroup.Group)
	g.Go(func() error { return c.LoadStudents(ctx) })
	g.Go(func() error { return c.LoadTeams(ctx) })
	return g.Wait()
}

// LoadStudents replaces the student collection with a fresh fetch.
func (c *Controller) LoadStudents(ctx context.Context) error {
	const op = "admin.LoadStudents"

	started := time.Now()
	students, err := c.roster.ListStudents(ctx)
	c.metrics.ObserveUpstream("list_students", started, err)
	if err != nil {
		c.log.Error("error fetching students", slog.String("op", op), logger.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.state.Students = students
	c.studentsLoaded = true
	c.mu.Unlock()

	c.metrics.SetCollectionSize("students", len(students))
	c.log.Debug("students loaded", slog.String("op", op), slog.Int("count", len(students)))
	return nil
}

// LoadTeams replaces the team collection with a fresh fetch.
func (c *Controller) LoadTeams(ctx context.Context) error {
	const op = "admin.LoadTeams"

	started := time.Now()
	teams, err := c.roster.ListTeams(ctx)
	c.metrics.ObserveUpstream("list_teams", started, err)
	if err != nil {
		c.log.Error("error fetching teams", slog.String("op", op), logger.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.state.Teams = teams
	c.teamsLoaded = true
	c.mu.Unlock()

	c.metrics.SetCollectionSize("teams", len(teams))
	c.log.Debug("teams loaded", slog.String("op", op), slog.Int("count", len(teams)))
	return nil
}

// ToggleStatus sends the opposite of current for student id and, once the
// service confirms, patches that one record locally. It returns the status
// the record now has.
func (c *Controller) ToggleStatus(ctx context.Context, id string, current model.Status) (model.Status, error) {
	const op = "admin.ToggleStatus"

	next := current.Opposite()
	log := c.log.With(
		slog.String("op", op),
		slog.String("student_id", id),
		slog.String("status", string(next)),
	)

	ctx, done := c.detach(ctx)
	defer done()

	started := time.Now()
	err := c.roster.UpdateStudentStatus(ctx, id, next)
	c.metrics.ObserveUpstream("update_status", started, err)
	if err != nil {
		log.Error("failed to update student status", logger.Err(err))
		return current, fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	for i := range c.state.Students {
		if c.state.Students[i].ID == id {
			c.state.Students[i].Status = next
			break
		}
	}
	c.mu.Unlock()

	c.metrics.TrackToggle(string(next))
	log.Info("student status updated")

	c.publish(ctx, StatusChange{StudentID: id, From: current, To: next, At: c.now().UTC()})
	return next, nil
}

func (c *Controller) publish(ctx context.Context, change StatusChange) {
	if c.feed == nil {
		return
	}
	msg, err := queue.NewMessage(StatusChangeType, change)
	if err == nil {
		pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = c.feed.Publish(pubCtx, msg)
		cancel()
	}
	if errors.Is(err, queue.ErrClosed) {
		return
	}
	c.metrics.TrackPublish(err)
	if err != nil {
		c.log.Warn("status change not published", slog.String("student_id", change.StudentID), logger.Err(err))
	}
}

// Visible returns the students passing f, computed from current state on every call.
func (c *Controller) Visible(f model.Filter) []model.Student {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return f.Apply(c.state.Students)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	students := make([]model.Student, len(c.state.Students))
	copy(students, c.state.Students)
	teams := make([]model.Team, len(c.state.Teams))
	copy(teams, c.state.Teams)
	return State{Students: students, Teams: teams}
}

// Loaded reports which collections have been fetched at least once.
func (c *Controller) Loaded() (students, teams bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.studentsLoaded, c.teamsLoaded
}

// Close cancels every in-flight request started by the controller.
func (c *Controller) Close() {
	c.cancel()
}

// detach ties work to the controller lifetime rather than to the caller:
// a client going away does not abort an update, but Close does.
func (c *Controller) detach(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
