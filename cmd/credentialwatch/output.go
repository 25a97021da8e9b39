package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rhuss/credentialwatch/pkg/api"
	"github.com/rhuss/credentialwatch/pkg/sweep"
	"github.com/rhuss/credentialwatch/pkg/tools"
	"github.com/rhuss/credentialwatch/pkg/tools/mcp"
)

func writeJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printSweepResult(res sweep.Result, jsonOutput bool) error {
	if jsonOutput {
		if res.Errors == nil {
			res.Errors = []string{}
		}
		return writeJSON(res)
	}
	fmt.Println(res.Summary)
	fmt.Printf("run=%s window_days=%d scanned=%d alerts=%d\n", res.RunID, res.WindowDays, res.ItemsScanned, res.AlertsCreated)
	for _, e := range res.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	return nil
}

func printTools(st mcp.Status, catalog []tools.Descriptor, jsonOutput bool) error {
	if jsonOutput {
		resp := api.ToolsResponse{Connected: st.Connected, MockMode: st.MockMode}
		for _, ep := range st.Endpoints {
			resp.Endpoints = append(resp.Endpoints, api.EndpointInfo{
				Name: ep.Name, URL: ep.URL, Connected: ep.Connected, Tools: ep.Tools, Error: ep.Error,
			})
		}
		for _, d := range catalog {
			resp.Tools = append(resp.Tools, api.ToolInfo{
				Name: d.Name, Endpoint: d.Endpoint, Description: d.Description, InputSchema: d.InputSchema,
			})
		}
		return writeJSON(resp)
	}

	fmt.Printf("connected=%v mock_mode=%v\n", st.Connected, st.MockMode)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENDPOINT\tURL\tCONNECTED\tTOOLS\tERROR")
	for _, ep := range st.Endpoints {
		fmt.Fprintf(w, "%s\t%s\t%v\t%d\t%s\n", ep.Name, ep.URL, ep.Connected, ep.Tools, ep.Error)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "TOOL\tENDPOINT\tDESCRIPTION")
	for _, d := range catalog {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Endpoint, d.Description)
	}
	return w.Flush()
}
