package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/gateway"
	"github.com/webpos/posdash/internal/pos"
)

type stubReports struct {
	err         error
	serverCalls int
}

func (s *stubReports) Snapshot(ctx context.Context) (analytics.Report, error) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return analytics.Aggregate([]pos.Sale{{SaleDate: now, PaymentMethod: "cash"}}, now, time.UTC), s.err
}

func (s *stubReports) ServerReport(ctx context.Context) (analytics.Report, error) {
	s.serverCalls++
	return analytics.Report{Source: analytics.SourceServer}, s.err
}

func TestReportCommandCSV(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := NewReportCLI(&stubReports{}).ReportCommand(context.Background(), ReportOptions{Stdout: stdout, Stderr: stderr})
	require.Equal(t, 0, code, stderr.String())
	require.True(t, strings.HasPrefix(stdout.String(), "Date,Sales,Revenue"))
	require.Contains(t, stdout.String(), "Mar 10,1,0.00")
}

func TestReportCommandServerJSON(t *testing.T) {
	stub := &stubReports{}
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := NewReportCLI(stub).ReportCommand(context.Background(), ReportOptions{
		Format: "json", Source: "server", Stdout: stdout, Stderr: stderr,
	})
	require.Equal(t, 0, code, stderr.String())
	require.Equal(t, 1, stub.serverCalls)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	require.Equal(t, "server", decoded["source"])
}

func TestReportCommandRejectsFlags(t *testing.T) {
	stderr := new(bytes.Buffer)
	cli := NewReportCLI(&stubReports{})
	require.Equal(t, 2, cli.ReportCommand(context.Background(), ReportOptions{Format: "pdf", Stdout: new(bytes.Buffer), Stderr: stderr}))
	require.Contains(t, stderr.String(), "unsupported format")
	require.Equal(t, 2, cli.ReportCommand(context.Background(), ReportOptions{Source: "cache", Stdout: new(bytes.Buffer), Stderr: stderr}))
}

func TestReportCommandUpstreamFailure(t *testing.T) {
	stderr := new(bytes.Buffer)
	stub := &stubReports{err: &gateway.RetrievalError{Op: "list sales", StatusCode: 502}}
	code := NewReportCLI(stub).ReportCommand(context.Background(), ReportOptions{Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "502")
}
