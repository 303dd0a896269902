package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/nacos/client/navigation"
)

func TestPageTitle(t *testing.T) {
	tests := map[string]string{
		"dashboard":     "Dashboard - NACOS Complaint System",
		"complaintform": "Submit a Complaint - NACOS Complaint System",
		"user-roles":    "User Roles - NACOS Complaint System",
	}
	for section, want := range tests {
		assert.Equal(t, want, navigation.PageTitle(section), section)
	}
}

func TestBreadcrumbs(t *testing.T) {
	root := navigation.Breadcrumbs("dashboard", "dashboard")
	assert.Equal(t, []navigation.Crumb{{Label: "Dashboard", Section: "dashboard"}}, root)
	assert.Equal(t, "Dashboard", navigation.FormatBreadcrumbs(root))

	crumbs := navigation.Breadcrumbs("reports", "dashboard")
	assert.Equal(t, []navigation.Crumb{
		{Label: "Dashboard", Section: "dashboard", Link: true},
		{Label: "Reports", Section: "reports"},
	}, crumbs)
	assert.Equal(t, "Dashboard › Reports", navigation.FormatBreadcrumbs(crumbs))
}

func TestIsNarrow(t *testing.T) {
	tests := []struct {
		width, breakpoint int
		want              bool
	}{
		{width: 767, want: true},
		{width: 768, want: false},
		{width: 1280, want: false},
		{width: 0, want: false},
		{width: 500, breakpoint: 400, want: false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, navigation.IsNarrow(tc.width, tc.breakpoint), "width=%d", tc.width)
	}
}
