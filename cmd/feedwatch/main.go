// Package main watches the listing feed, either printing events from a single
// subscriber or holding many subscribers open as a load test.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the run results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	EventsReceived       int64
	DropNotices          int64
	Errors               int64
}

var metrics Metrics

type feedEvent struct {
	Type     string `json:"type"`
	Property *struct {
		ID       string  `json:"_id"`
		Title    string  `json:"title"`
		Location string  `json:"location"`
		Price    float64 `json:"price"`
	} `json:"property"`
	Payload struct {
		Reason string `json:"reason"`
	} `json:"payload"`
}

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	secure := flag.Bool("tls", false, "Use wss")
	clients := flag.Int("clients", 1, "Number of concurrent subscribers")
	duration := flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	flag.Parse()

	scheme := "ws"
	if *secure {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: *host, Path: "/api/ws/listings"}
	verbose := *clients == 1

	log.Printf("Watching %s with %d subscriber(s)", u.String(), *clients)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(u.String(), verbose, stopChan, &wg)
		if *clients > 1 {
			time.Sleep(10 * time.Millisecond)
		}
	}

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}
	select {
	case <-timeout:
		log.Println("Duration reached")
	case <-interrupt:
		log.Println("Interrupted")
	}

	close(stopChan)
	wg.Wait()

	printMetrics()
}

func runClient(feedURL string, verbose bool, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	c, resp, err := websocket.DefaultDialer.Dial(feedURL, nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		if verbose {
			log.Printf("dial failed: %v", err)
		}
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					atomic.AddInt64(&metrics.Errors, 1)
				}
				return
			}
			handleMessage(msg, verbose)
		}
	}()

	select {
	case <-stopChan:
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		<-done
	case <-done:
	}
}

func handleMessage(msg []byte, verbose bool) {
	var ev feedEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	switch ev.Type {
	case "listing_created":
		atomic.AddInt64(&metrics.EventsReceived, 1)
		if verbose && ev.Property != nil {
			log.Printf("new listing %s: %q in %s at %.0f/night", ev.Property.ID, ev.Property.Title, ev.Property.Location, ev.Property.Price)
		}
	case "messages_dropped":
		atomic.AddInt64(&metrics.DropNotices, 1)
		if verbose {
			log.Printf("server dropped messages for this subscriber: %s", ev.Payload.Reason)
		}
	}
}

func printMetrics() {
	log.Println("Results")
	log.Println("=======")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Listing Events Received: %d", atomic.LoadInt64(&metrics.EventsReceived))
	log.Printf("Drop Notices: %d", atomic.LoadInt64(&metrics.DropNotices))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
