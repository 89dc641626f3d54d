// Package templates holds the server-rendered dashboard shell. The shell is
// static: panel content arrives through the datastar SSE endpoints whenever
// the filter signals change.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const dashboardShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Hypermart Analytics Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f8f9fa; color: #424242; }
header { background: #1e88e5; color: #fff; padding: 1rem 2rem; }
main { padding: 1rem 2rem; display: grid; gap: 1rem; }
.panel { background: #fff; border-radius: 10px; padding: 1rem; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.filters { display: flex; gap: 1rem; flex-wrap: wrap; align-items: end; }
.insight { background: #e3f2fd; border-left: 5px solid #2196F3; padding: 0.75rem; border-radius: 6px; }
.modern-table { width: 100%; border-collapse: collapse; }
.modern-table th, .modern-table td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #eee; }
</style>
</head>
<body data-signals="{department: '', category: '', nationality: '', ageMin: '', ageMax: ''}">
<header><h1>Hypermart Analytics Dashboard</h1></header>
<main>
<section class="panel filters">
<label>Department <select data-bind-department><option value="">All</option></select></label>
<label>Category <select data-bind-category><option value="">All</option></select></label>
<label>Nationality <select data-bind-nationality><option value="">All</option></select></label>
<label>Age min <input type="number" min="0" data-bind-age-min/></label>
<label>Age max <input type="number" min="0" data-bind-age-max/></label>
<button data-on-click="@get('/sse/refresh?department='+$department+'&category='+$category+'&nationality='+$nationality+'&age_min='+$ageMin+'&age_max='+$ageMax)">Apply</button>
</section>
<section class="panel" id="monthly-content">Loading monthly trend…</section>
<section class="panel" id="channel-content">Loading channel split…</section>
<section class="panel" id="weekday-content">Loading weekday breakdown…</section>
<section class="panel" id="geo-content">Loading geography…</section>
</main>
</body>
</html>`

// Dashboard returns the shell component rendered at GET /.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardShell)
		return err
	})
}
