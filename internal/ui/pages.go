// Package ui holds the navigation model, user-facing messages and the
// per-page state reducers of the web dashboard.
package ui

import "strings"

// Page identifies one screen of the dashboard.
type Page int

const (
	Dashboard Page = iota
	ChartAnalyzer
	FutureAI
	Generator1M
	FutureList1M
	HowToUse
	MoneyManagement
	Community
	AboutUs
)

type pageInfo struct {
	slug        string
	title       string
	heading     string
	description string
}

var pages = [...]pageInfo{
	Dashboard: {
		slug:        "dashboard",
		title:       "Dashboard",
		heading:     "Welcome to LR - CHART AI",
		description: "Your all-in-one AI-powered suite for binary trading analysis in the OTC market.",
	},
	ChartAnalyzer: {
		slug:        "ai-chart-analyzer",
		title:       "AI Chart Analyzer",
		heading:     "AI Chart Analyzer",
		description: "Upload a chart image and our advanced AI will provide an immediate trading signal with detailed reasoning for a 1-minute expiry.",
	},
	FutureAI: {
		slug:        "ai-future-signals",
		title:       "AI Future Signals",
		heading:     "AI Future Signals",
		description: "Upload a chart for a selected pair. The AI will analyze the market structure and predict potential signals for the next 30 minutes.",
	},
	Generator1M: {
		slug:        "signal-generator-1m",
		title:       "Signal Generator 1M",
		heading:     "Signals Generator 1M",
		description: "Select a pair and timeframe to get the next immediate signal. This tool uses a predictive algorithm based on time and volatility.",
	},
	FutureList1M: {
		slug:        "future-signals-1m",
		title:       "Future Signals 1M",
		heading:     "Future Signals 1M",
		description: "Generate a list of future signals for multiple pairs with a 1-minute timeframe. Signals have a 3-5 minute interval.",
	},
	HowToUse: {
		slug:        "how-to-use",
		title:       "How To Use",
		heading:     "How To Use",
		description: "A quick guide to get started with the LR - CHART AI tools.",
	},
	MoneyManagement: {
		slug:        "money-management",
		title:       "Money Management",
		heading:     "Money Management",
		description: "Effective risk management is the key to long-term success in trading.",
	},
	Community: {
		slug:        "community",
		title:       "Community",
		heading:     "Join Our Community",
		description: "Connect with other traders, share strategies, and get the latest updates.",
	},
	AboutUs: {
		slug:        "about-us",
		title:       "About Us",
		heading:     "About Us",
		description: "Pioneering the future of trading with artificial intelligence.",
	},
}

// NavItems are the pages shown directly in the header, in order.
var NavItems = []Page{Dashboard, ChartAnalyzer, FutureAI, Generator1M, FutureList1M}

// MoreItems are the pages under the "More" dropdown, in order.
var MoreItems = []Page{HowToUse, MoneyManagement, Community, AboutUs}

// AllPages returns every page in navigation order.
func AllPages() []Page {
	out := make([]Page, 0, len(NavItems)+len(MoreItems))
	out = append(out, NavItems...)
	return append(out, MoreItems...)
}

func (p Page) valid() bool { return p >= Dashboard && p <= AboutUs }

func (p Page) info() pageInfo {
	if !p.valid() {
		return pages[Dashboard]
	}
	return pages[p]
}

// Title is the navigation label.
func (p Page) Title() string { return p.info().title }

// Heading is the title printed at the top of the page body.
func (p Page) Heading() string { return p.info().heading }

// Description is the subtitle under the heading.
func (p Page) Description() string { return p.info().description }

// Slug is the URL path segment of the page.
func (p Page) Slug() string { return p.info().slug }

// Path is the URL of the page. The dashboard lives at the root.
func (p Page) Path() string {
	if p == Dashboard {
		return "/"
	}
	return "/" + p.Slug()
}

func (p Page) String() string { return p.Title() }

// InMore reports whether the page sits under the "More" dropdown.
func (p Page) InMore() bool { return p >= HowToUse && p <= AboutUs }

// ParsePage resolves a slug or title, ignoring case and surrounding
// slashes. Unknown values fall back to Dashboard.
func ParsePage(s string) Page {
	s = strings.Trim(strings.TrimSpace(s), "/")
	for i, info := range pages {
		if strings.EqualFold(s, info.slug) || strings.EqualFold(s, info.title) {
			return Page(i)
		}
	}
	return Dashboard
}
