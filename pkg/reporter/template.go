package reporter

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Audit Report - {{.Target}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 2rem;
            border-radius: 10px;
            margin-bottom: 2rem;
        }
        .score-card {
            background: white;
            border-radius: 10px;
            padding: 1.5rem;
            margin-bottom: 1.5rem;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        .score-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 1rem;
            margin: 1rem 0;
        }
        .score-item {
            text-align: center;
            padding: 1rem;
            background: #f8f9fa;
            border-radius: 8px;
        }
        .score-value {
            font-size: 2rem;
            font-weight: bold;
            color: #667eea;
        }
        .score-label {
            color: #666;
            font-size: 0.9rem;
            margin-top: 0.5rem;
        }
        .grade {
            display: inline-block;
            padding: 0.5rem 1rem;
            background: #28a745;
            color: white;
            border-radius: 5px;
            font-weight: bold;
            font-size: 1.2rem;
        }
        .finding {
            background: white;
            border-left: 4px solid #ffc107;
            padding: 1rem;
            margin: 1rem 0;
            border-radius: 4px;
        }
        .finding.high {
            border-left-color: #dc3545;
        }
        .finding.low {
            border-left-color: #28a745;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Audit Report for {{.Target}}</h1>
        <p>Generated on {{.GeneratedAt.Format "January 2, 2006"}}</p>
    </div>

    <div class="score-card">
        <h2>Executive Summary</h2>
        <p>Overall Grade: <span class="grade">{{.Scorecard.Grade}}</span></p>

        <div class="score-grid">
            {{range .Scorecard.Scores}}
            <div class="score-item">
                <div class="score-value">{{printf "%.0f" .Score}}</div>
                <div class="score-label">{{.Area}}</div>
            </div>
            {{end}}
            <div class="score-item">
                <div class="score-value">{{printf "%.0f" .Scorecard.Overall}}</div>
                <div class="score-label">Overall Score</div>
            </div>
        </div>

        {{if .Scorecard.Strengths}}
        <h3>Strengths</h3>
        <ul>
            {{range .Scorecard.Strengths}}
            <li>{{.}}</li>
            {{end}}
        </ul>
        {{end}}

        {{if .Scorecard.Weaknesses}}
        <h3>Areas for Improvement</h3>
        <ul>
            {{range .Scorecard.Weaknesses}}
            <li>{{.}}</li>
            {{end}}
        </ul>
        {{end}}
    </div>

    {{if .Scorecard.Findings}}
    <div class="score-card">
        <h2>Key Findings</h2>
        {{range .Scorecard.Findings}}
        <div class="finding {{.Severity}}">
            <h4>{{.Category}}</h4>
            <p>{{.Description}}</p>
        </div>
        {{end}}
    </div>
    {{end}}

    {{if .Report.Groups}}
    <div class="score-card">
        <h2>Content</h2>
        {{range .Report.Groups}}
        <h3>{{.Category}} ({{len .Items}})</h3>
        <ul>
            {{range .Items}}
            <li><a href="{{.Link}}">{{.Title}}</a> ({{.Status}})</li>
            {{end}}
        </ul>
        {{end}}
    </div>
    {{end}}

    {{if .Report.Broken}}
    <div class="score-card">
        <h2>Broken Links</h2>
        <ul>
            {{range .Report.Broken}}
            <li>{{.}}</li>
            {{end}}
        </ul>
    </div>
    {{end}}

    {{if .Report.Users}}
    <div class="score-card">
        <h2>Exposed Users</h2>
        <ul>
            {{range .Report.Users}}
            <li>{{.Name}} ({{.ProfileLink}})</li>
            {{end}}
        </ul>
    </div>
    {{end}}
</body>
</html>
`
