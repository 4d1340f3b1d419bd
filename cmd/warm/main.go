package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/tradelens/chartdata/internal/types"
	"github.com/tradelens/chartdata/internal/version"
)

// warmAction requests a window for each symbol from a running candle service
// so its server-side cache is populated ahead of traffic.
func warmAction(ctx context.Context, cmd *cli.Command) error {
	symbols := strings.Split(cmd.String("symbols"), ",")
	startDate := cmd.Timestamp("start").Format(types.DateOnly)
	endDate := cmd.Timestamp("end").Format(types.DateOnly)
	interval := types.ParseInterval(cmd.String("interval"))

	client := resty.New().
		SetBaseURL(cmd.String("server")).
		SetTimeout(30 * time.Second)

	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionSetDescription("Warming candle cache"),
		progressbar.OptionShowCount())

	warmed := 0

	for _, symbol := range symbols {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}

		resp, err := client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"symbol":    symbol,
				"startDate": startDate,
				"endDate":   endDate,
				"interval":  string(interval),
			}).
			Get("/api/ohlc")

		switch {
		case err != nil:
			log.Printf("Request for %s failed: %v", symbol, err)
		case resp.StatusCode() == http.StatusNotFound:
			log.Printf("No data for %s", symbol)
		case resp.IsError():
			log.Printf("Service returned status %d for %s", resp.StatusCode(), symbol)
		default:
			warmed++
		}

		bar.Add(1)
	}

	bar.Finish()
	log.Printf("Finished warming %d of %d symbols.", warmed, len(symbols))

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "chartdata-warm",
		Usage:   "Pre-populate a candle service's cache for a set of symbols",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Usage: "Base URL of the candle service",
				Value: "http://localhost:8087",
			},
			&cli.StringFlag{
				Name:     "symbols",
				Aliases:  []string{"s"},
				Usage:    "Comma-separated instrument codes (e.g. EURUSD,XAUUSD)",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:     "start",
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:     "end",
				Usage:    "End date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   fmt.Sprintf("Candle interval (default %s)", types.DefaultInterval),
				Value:   string(types.DefaultInterval),
			},
		},
		Action: warmAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
