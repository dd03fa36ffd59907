// Command indicatorcheck connects to the indicator gateway and lights the given
// squares once, printing connection state changes.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/indicator"
	"github.com/park285/cheese-board/internal/rules"
)

func main() {
	wsURL := flag.String("ws", os.Getenv("INDICATOR_WS_URL"), "gateway websocket URL")
	httpURL := flag.String("http", os.Getenv("INDICATOR_HTTP_URL"), "gateway REST base URL")
	squares := flag.String("squares", "e2,e4", "comma separated squares to light")
	hold := flag.Duration("hold", 3*time.Second, "how long to keep the connection open")
	flag.Parse()

	if *wsURL == "" && *httpURL == "" {
		log.Fatal("INDICATOR_WS_URL or INDICATOR_HTTP_URL is required")
	}
	token := os.Getenv("INDICATOR_TOKEN")

	frame := indicator.Frame{Type: indicator.FrameSelect, Session: "indicatorcheck"}
	for _, name := range strings.Split(*squares, ",") {
		pos, err := rules.ParsePosition(name)
		if err != nil {
			log.Fatal(err)
		}
		frame.Indicators = append(frame.Indicators, pos.Row*rules.Size+pos.Col)
		frame.Squares = append(frame.Squares, pos.Name())
	}

	if *httpURL != "" {
		hp := indicator.NewHTTPPublisher(*httpURL, indicator.WithHTTPToken(token), indicator.WithHTTPTimeout(5*time.Second))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := hp.Publish(ctx, frame); err != nil {
			log.Printf("HTTP publish error: %v", err)
		} else {
			log.Printf("HTTP publish ok: %v", frame.Squares)
		}
		cancel()
	}

	if *wsURL == "" {
		return
	}
	ws := indicator.NewBridge(*wsURL, indicator.WithToken(token), indicator.WithMaxReconnect(0))
	ws.OnStateChange(func(s indicator.State) {
		log.Printf("WS state: %s", s)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		log.Printf("WS connect error: %v", err)
		return
	}
	if err := ws.Publish(cctx, frame); err != nil {
		log.Printf("WS publish error: %v", err)
	} else {
		log.Printf("WS publish ok: %v", frame.Squares)
	}

	time.Sleep(*hold)
	off := indicator.Frame{Type: indicator.FrameClear, Session: frame.Session, Indicators: []int{}}
	_ = ws.Publish(context.Background(), off)
	_ = ws.Close(context.Background())
}
