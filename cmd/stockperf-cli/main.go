package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"stockperf/internal/analysis"
	"stockperf/internal/api"
	"stockperf/internal/domain"
	"stockperf/internal/httpapi"
	"stockperf/pkg/stockperf"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: stockperf-cli <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  version    Print the CLI version\n")
	fmt.Fprintf(os.Stderr, "  status     Show stockperf-server status\n")
	fmt.Fprintf(os.Stderr, "  periods    List periods and which have data\n")
	fmt.Fprintf(os.Stderr, "  chart      Print the top returns for a period and grouping\n")
	fmt.Fprintf(os.Stderr, "  reload     Ask the server to reload its data set\n")
	fmt.Fprintf(os.Stderr, "\nServer address from STOCKPERF_ADDR (default http://localhost:8080).\n")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	addr := "http://localhost:8080"
	if a := os.Getenv("STOCKPERF_ADDR"); a != "" {
		addr = a
	}
	client := stockperf.NewClient(addr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("stockperf-cli %s\n", version)

	case "status":
		var h *httpapi.HealthResponse
		if h, err = client.Health(ctx); err == nil {
			fmt.Printf("status: %s  records: %s  loaded: %s\n", h.Status, analysis.FormatInt(h.Records), h.LoadedAt)
		}

	case "periods":
		var p *httpapi.PeriodsResponse
		if p, err = client.GetPeriods(ctx); err == nil {
			printPeriods(os.Stdout, p)
		}

	case "chart":
		err = runChart(ctx, client, os.Args[2:])

	case "reload":
		var r *httpapi.ReloadResponse
		if r, err = client.Reload(ctx); err == nil {
			fmt.Printf("reloaded %s records across %d periods at %s\n", analysis.FormatInt(r.Records), r.Periods, r.LoadedAt)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runChart(ctx context.Context, client *stockperf.Client, args []string) error {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	period := fs.String("period", string(domain.Period1Month), `period: "1 month", "3 months" or "6 months"`)
	grouping := fs.String("grouping", string(domain.GroupByCompany), "grouping: company or industry")
	grpcAddr := fs.String("grpc", "", "query the gRPC chart service at host:port instead of HTTP")
	fs.Parse(args)

	p, g := domain.Period(*period), domain.Grouping(*grouping)

	var (
		resp *httpapi.ChartResponse
		err  error
	)
	if *grpcAddr != "" {
		conn, derr := grpc.NewClient(*grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if derr != nil {
			return fmt.Errorf("dialing %s: %w", *grpcAddr, derr)
		}
		defer conn.Close()
		resp, err = api.GetChart(ctx, conn, p, g)
	} else {
		resp, err = client.GetChart(ctx, p, g)
	}
	if err != nil {
		return err
	}
	printChart(os.Stdout, resp)
	return nil
}

func printPeriods(w io.Writer, p *httpapi.PeriodsResponse) {
	have := make(map[domain.Period]bool, len(p.Available))
	for _, a := range p.Available {
		have[a] = true
	}
	for _, period := range p.Periods {
		mark := "-"
		if have[period] {
			mark = "data"
		}
		fmt.Fprintf(w, "%-10s %s\n", period, mark)
	}
}

func printChart(w io.Writer, resp *httpapi.ChartResponse) {
	fmt.Fprintf(w, "%s by %s\n", resp.Period, resp.Grouping)
	if resp.Stale {
		fmt.Fprintf(w, "(no data for %s)\n", resp.Period)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "#\t%s\t%s\t\n", resp.XKey, resp.YLabel)
	for i, e := range resp.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", i+1, e.Key(resp.Grouping), analysis.FormatReturn(e.Returns))
	}
	tw.Flush()
}
