package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mcpdesk/mcpdesk/internal/api"
	pkgstrings "github.com/mcpdesk/mcpdesk/pkg/strings"
)

const maxCellWidth = 60

func newTable(w io.Writer, headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = text.FgHiCyan.Sprint(h)
	}
	t.AppendHeader(row)
	return t
}

func truncate(s string) string {
	return pkgstrings.Clip(s, maxCellWidth)
}

// Target summarizes what a profile connects to.
func Target(p api.ServerProfile) string {
	switch p.Kind {
	case api.KindHTTP:
		transport := p.Config.Transport
		if transport == "" {
			transport = api.TransportSSE
		}
		return fmt.Sprintf("%s (%s)", p.Config.BaseURL, transport)
	case api.KindCommand:
		return p.Config.Command
	case api.KindPackage:
		manager := p.Config.PackageManager
		if manager == "" {
			manager = api.DefaultPackageManager
		}
		return strings.TrimSpace(strings.Join(append([]string{string(manager), p.Config.PackageName}, p.Config.Args...), " "))
	default:
		return ""
	}
}

// RenderProfiles prints stored profiles, marking the active one.
func RenderProfiles(o *Output, profiles []api.ServerProfile, active string) {
	if len(profiles) == 0 {
		o.Empty("No server profiles. Add one with 'add'.")
		return
	}
	t := newTable(o.Writer(), "", "ID", "NAME", "TYPE", "TARGET")
	for _, p := range profiles {
		marker := ""
		if p.ID == active {
			marker = text.FgGreen.Sprint("●")
		}
		t.AppendRow(table.Row{marker, p.ID, p.Name, string(p.Kind), truncate(Target(p))})
	}
	t.Render()
}

// RenderServices prints the services of the connected server.
func RenderServices(o *Output, services []api.Service) {
	if len(services) == 0 {
		o.Empty("No services found")
		return
	}
	t := newTable(o.Writer(), "ID", "NAME", "DESCRIPTION")
	for _, s := range services {
		t.AppendRow(table.Row{s.ID, s.Name, truncate(s.Description)})
	}
	t.Render()
}

// RenderServiceDetail prints a service and its tool calls.
func RenderServiceDetail(o *Output, d *api.ServiceDetail) {
	o.Line("%s %s", text.FgHiCyan.Sprint("Service:"), d.ID)
	if d.Name != d.ID {
		o.Line("%s %s", text.FgHiCyan.Sprint("Name:"), d.Name)
	}
	if d.Description != "" {
		o.Line("%s %s", text.FgHiCyan.Sprint("Description:"), d.Description)
	}
	if len(d.ToolCalls) == 0 {
		return
	}
	t := newTable(o.Writer(), "NAME", "REQUIRED", "DESCRIPTION")
	for _, c := range d.ToolCalls {
		required := ""
		if c.Required {
			required = "yes"
		}
		t.AppendRow(table.Row{c.Name, required, truncate(c.Description)})
	}
	t.Render()
}

// RenderResponse prints an invocation result or its error, with timing.
func RenderResponse(o *Output, resp api.ServiceResponse) {
	if resp.Error != nil {
		o.Error("Error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if resp.Result != nil {
		switch v := resp.Result.(type) {
		case string:
			o.Line("%s", v)
		default:
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				o.Line("%v", v)
			} else {
				o.Line("%s", data)
			}
		}
	}
	if resp.Elapsed > 0 {
		o.Line("%s", text.FgHiBlack.Sprintf("(%s)", resp.Elapsed.Round(time.Millisecond)))
	}
}

// RenderProcesses prints running child processes.
func RenderProcesses(o *Output, procs []api.ProcessInfo) {
	if len(procs) == 0 {
		o.Empty("No running processes")
		return
	}
	t := newTable(o.Writer(), "ID", "PID", "COMMAND")
	for _, p := range procs {
		t.AppendRow(table.Row{p.ID, p.PID, truncate(strings.Join(p.Argv, " "))})
	}
	t.Render()
}
