package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/trezcool/nacos/client/gateway"
	"github.com/trezcool/nacos/client/navigation"
	"github.com/trezcool/nacos/core/complaint"
)

// API is the part of the gateway the section controllers read from.
type API interface {
	Dashboard(ctx context.Context) (complaint.Dashboard, error)
	Complaints(ctx context.Context, q gateway.ComplaintQuery) ([]complaint.Complaint, error)
	Stats(ctx context.Context) (complaint.Stats, error)
	Categories(ctx context.Context) ([]complaint.Category, error)
}

const (
	dateLayout = "02 Jan 2006"
	barWidth   = 30
)

// RegisterSections registers the controllers that fill the sections with API data.
// onUnauthorized is called instead of reporting the failure when the API rejects the session.
func RegisterSections(reg *navigation.Registry, api API, screen *Screen, onUnauthorized func(ctx context.Context)) {
	register := func(section string, load func(ctx context.Context) (string, error)) {
		fill := func(ctx context.Context) error {
			text, err := load(ctx)
			if gateway.IsUnauthorized(err) && onUnauthorized != nil {
				onUnauthorized(ctx)
				return nil
			}
			if err != nil {
				return err
			}
			screen.SetPanel(section, text)
			return nil
		}
		reg.Register(section, navigation.Lifecycle{
			Init:    fill,
			Refresh: fill,
			Cleanup: func(context.Context) error {
				screen.ClearPanel(section)
				return nil
			},
		})
	}

	register("dashboard", func(ctx context.Context) (string, error) {
		dash, err := api.Dashboard(ctx)
		if err != nil {
			return "", err
		}
		return renderDashboard(dash), nil
	})
	register("complaints", func(ctx context.Context) (string, error) {
		cs, err := api.Complaints(ctx, gateway.ComplaintQuery{Ordering: []string{"-created_at"}})
		if err != nil {
			return "", err
		}
		return renderComplaints(cs), nil
	})
	register("analytics", func(ctx context.Context) (string, error) {
		stats, err := api.Stats(ctx)
		if err != nil {
			return "", err
		}
		return renderStats(stats), nil
	})
	register("complaintform", func(ctx context.Context) (string, error) {
		cats, err := api.Categories(ctx)
		if err != nil {
			return "", err
		}
		lines := make([]string, len(cats))
		for i, c := range cats {
			lines[i] = fmt.Sprintf("  %-10s %s", c.Value, c.Name)
		}
		return headingStyle.Render("Categories") + "\n" + strings.Join(lines, "\n"), nil
	})
}

func renderDashboard(dash complaint.Dashboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total complaints: %d   Pending: %d   In progress: %d   Resolved: %d\n\n",
		dash.Stats.Total,
		dash.Stats.ByStatus[complaint.StatusPending],
		dash.Stats.ByStatus[complaint.StatusInProgress],
		dash.Stats.ByStatus[complaint.StatusResolved],
	)
	b.WriteString(headingStyle.Render("Recent complaints") + "\n")
	b.WriteString(renderComplaints(dash.Recent))
	return b.String()
}

func renderComplaints(cs []complaint.Complaint) string {
	if len(cs) == 0 {
		return mutedStyle.Render("No complaints yet.")
	}
	lines := make([]string, 0, len(cs)+1)
	lines = append(lines, fmt.Sprintf("%-20s %-14s %-10s %-12s %s", "Student", "Matric No.", "Category", "Status", "Date"))
	for _, c := range cs {
		lines = append(lines, fmt.Sprintf("%-20s %-14s %-10s %-12s %s",
			truncate(c.StudentName, 20),
			truncate(c.MatricNumber, 14),
			c.Category,
			c.Status,
			c.CreatedAt.Format(dateLayout),
		))
		lines = append(lines, "  "+mutedStyle.Render(truncate(c.Subject, 60)))
	}
	return strings.Join(lines, "\n")
}

// renderStats draws the counts a chart would plot as horizontal bars.
func renderStats(stats complaint.Stats) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Complaints by status") + "\n")
	for _, s := range complaint.AllStatuses {
		b.WriteString(bar(string(s), stats.ByStatus[s], stats.Total) + "\n")
	}

	b.WriteString("\n" + headingStyle.Render("Complaints by category") + "\n")
	cats := make([]string, 0, len(stats.ByCategory))
	for c := range stats.ByCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		b.WriteString(bar(c, stats.ByCategory[c], stats.Total) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func bar(label string, n, total int) string {
	width := 0
	if total > 0 {
		width = n * barWidth / total
	}
	return fmt.Sprintf("%-12s %s %d", label, strings.Repeat("█", width), n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
