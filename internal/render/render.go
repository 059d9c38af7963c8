// Package render turns targets and statistics into terminal text.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/evanschultz/achiever/internal/app"
	"github.com/evanschultz/achiever/internal/domain"
)

// CategoryLabeler resolves category and subcategory ids to display text.
type CategoryLabeler interface {
	Label(categoryID, subcategoryID string) string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth sets the wrap width used for descriptions.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// WithClock overrides the time used for "days until" labels.
func WithClock(clock func() time.Time) Option {
	return func(r *Renderer) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithMarkdownStyle selects a glamour standard style such as "dark", "light" or "notty".
func WithMarkdownStyle(style string) Option {
	return func(r *Renderer) {
		if strings.TrimSpace(style) != "" {
			r.markdown.style = style
		}
	}
}

// Renderer holds styles and lookups shared by every view.
type Renderer struct {
	categories CategoryLabeler
	clock      func() time.Time
	width      int
	markdown   markdownRenderer

	title  lipgloss.Style
	muted  lipgloss.Style
	accent lipgloss.Style
	done   lipgloss.Style
	warn   lipgloss.Style
}

// New constructs a Renderer. categories may be nil.
func New(categories CategoryLabeler, opts ...Option) *Renderer {
	r := &Renderer{
		categories: categories,
		clock:      time.Now,
		width:      80,
		markdown:   markdownRenderer{style: "dark"},
		title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		accent:     lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		done:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warn:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProgressBar draws a fixed-width bar followed by the percentage.
func ProgressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	if width < 1 {
		width = 10
	}
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + " " + strconv.Itoa(percent) + "%"
}

// ShortID trims generated ids for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func (r *Renderer) categoryLabel(t domain.Target) string {
	if r.categories == nil {
		return t.CategoryID
	}
	return r.categories.Label(t.CategoryID, t.SubcategoryID)
}

// TargetList renders targets as a table.
func (r *Renderer) TargetList(targets []domain.Target) string {
	if len(targets) == 0 {
		return r.muted.Render("No targets yet.")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("ID", "Title", "Category", "Progress", "Actions").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, target := range targets {
		t.Row(ShortID(target.ID), target.Title, r.categoryLabel(target), ProgressBar(target.Progress, 10), strconv.Itoa(len(target.Actions)))
	}
	return t.String()
}

// Target renders one target with its description and its action tree.
func (r *Renderer) Target(target domain.Target) string {
	var b strings.Builder
	b.WriteString(r.title.Render(target.Title))
	b.WriteString(" " + r.muted.Render(ShortID(target.ID)))
	b.WriteString("\n")
	if label := r.categoryLabel(target); label != "" {
		b.WriteString(r.accent.Render(label) + "\n")
	}
	b.WriteString(ProgressBar(target.Progress, 20) + "\n")
	if desc := r.markdown.render(target.Description, r.width); desc != "" {
		b.WriteString("\n" + desc + "\n")
	}
	if len(target.Actions) > 0 {
		b.WriteString("\n" + r.actionTree(target).String() + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) actionTree(target domain.Target) *tree.Tree {
	root := tree.New().Enumerator(tree.RoundedEnumerator).EnumeratorStyle(r.muted)
	for _, action := range target.Actions {
		label := fmt.Sprintf("%s %s %s",
			action.Title,
			r.muted.Render(fmt.Sprintf("[%s] u:%s i:%s", ShortID(action.ID), action.Urgency, action.Impact)),
			ProgressBar(action.Progress(), 10),
		)
		node := tree.Root(label)
		for _, step := range action.Steps {
			stepNode := tree.Root(r.check(domain.StepComplete(step)) + " " + step.Description + " " + r.muted.Render(ShortID(step.ID)))
			for _, task := range step.Tasks {
				stepNode.Child(r.taskLine(task))
			}
			node.Child(stepNode)
		}
		for _, obstacle := range action.Obstacles {
			node.Child(r.obstacleLine(obstacle))
		}
		root.Child(node)
	}
	return root
}

func (r *Renderer) check(done bool) string {
	if done {
		return r.done.Render("[x]")
	}
	return "[ ]"
}

func (r *Renderer) taskLine(task domain.Task) string {
	line := r.check(task.Completed) + " " + task.Description + " " + r.muted.Render(ShortID(task.ID))
	if task.Deadline != nil {
		line += " " + r.deadlineLabel(*task.Deadline, task.Completed)
	}
	return line
}

func (r *Renderer) obstacleLine(o domain.Obstacle) string {
	if !o.Resolved {
		return r.warn.Render("! "+o.Description) + " " + r.muted.Render(ShortID(o.ID))
	}
	line := r.done.Render("✓ ") + o.Description + " " + r.muted.Render(ShortID(o.ID))
	if o.Resolution != "" {
		line += r.muted.Render(" (" + o.Resolution + ")")
	}
	return line
}

// deadlineLabel shows the date and how far away it is.
func (r *Renderer) deadlineLabel(deadline time.Time, completed bool) string {
	date := deadline.Format("Jan 2, 2006")
	if completed {
		return r.muted.Render(date)
	}
	days := app.DaysUntil(deadline, r.clock())
	switch {
	case days < 0:
		return r.warn.Render(fmt.Sprintf("%s (%d days overdue)", date, -days))
	case days == 0:
		return r.warn.Render(date + " (due today)")
	case days == 1:
		return r.accent.Render(date + " (1 day left)")
	default:
		return r.muted.Render(fmt.Sprintf("%s (%d days left)", date, days))
	}
}

// Statistics renders the overview for one user.
func (r *Renderer) Statistics(stats app.Statistics) string {
	var b strings.Builder
	b.WriteString(r.title.Render("Overall progress") + "\n")
	b.WriteString(ProgressBar(stats.TotalProgress, 30) + "\n")
	b.WriteString(r.muted.Render(fmt.Sprintf("%d targets · %d/%d tasks done · %d open obstacles",
		stats.TargetCount, stats.CompletedTasks, len(stats.Tasks), stats.OpenObstacles)) + "\n\n")

	priorities := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("Priority", "Tasks", "Done")
	for _, level := range domain.Levels() {
		refs := stats.ByPriority[level]
		done := 0
		for _, ref := range refs {
			if ref.Task.Completed {
				done++
			}
		}
		priorities.Row(string(level), strconv.Itoa(len(refs)), strconv.Itoa(done))
	}
	b.WriteString(priorities.String() + "\n\n")

	b.WriteString(r.title.Render("Upcoming tasks") + "\n")
	if len(stats.Upcoming) == 0 {
		b.WriteString(r.muted.Render("Nothing pending."))
		return b.String()
	}
	upcoming := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("Task", "Target", "Action", "Priority", "Deadline")
	for _, ref := range stats.Upcoming {
		deadline := "-"
		if ref.Task.Deadline != nil {
			deadline = r.deadlineLabel(*ref.Task.Deadline, false)
		}
		upcoming.Row(ref.Task.Description, ref.Target.Title, ref.Action.Title, string(ref.Priority()), deadline)
	}
	b.WriteString(upcoming.String())
	return b.String()
}
