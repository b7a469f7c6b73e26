// Package main provides a load testing tool for the blog API. Writer clients
// create posts, comment and search over HTTP while listener clients count the
// events delivered on the /api/events WebSocket.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	Requests         int64
	RequestsFailed   int64
	ListenersOpen    int64
	ListenersFailed  int64
	EventsReceived   int64
	SearchLatencySum int64 // microseconds
	Searches         int64
}

var metrics Metrics

var tags = []string{"go", "postgres", "redis", "testing", "devops"}

func main() {
	host := flag.String("host", "localhost:8080", "API server host")
	writers := flag.Int("writers", 10, "Number of concurrent writer clients")
	listeners := flag.Int("listeners", 5, "Number of event stream listeners")
	interval := flag.Duration("interval", time.Second, "Delay between writer iterations")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	flag.Parse()

	log.Printf("Starting blog load test against %s (%d writers, %d listeners, %v)", *host, *writers, *listeners, *duration)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *listeners; i++ {
		wg.Add(1)
		go runListener(*host, stopChan, &wg)
	}
	client := &http.Client{Timeout: 5 * time.Second}
	for i := 0; i < *writers; i++ {
		wg.Add(1)
		go runWriter(client, *host, i, *interval, stopChan, &wg)
	}

	select {
	case <-time.After(*duration):
		log.Println("Test duration reached")
	case <-interrupt:
		log.Println("Interrupted by user")
	}

	close(stopChan)
	log.Println("Waiting for clients to stop...")
	wg.Wait()

	printMetrics()
}

func runListener(host string, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/events"}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ListenersFailed, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	atomic.AddInt64(&metrics.ListenersOpen, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
			atomic.AddInt64(&metrics.EventsReceived, 1)
		}
	}()

	<-stopChan
	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.Close()
	<-done
}

func runWriter(client *http.Client, host string, id int, interval time.Duration, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id))) //nolint:gosec // load generator

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
		}

		tag := tags[rng.Intn(len(tags))]
		postID, err := createPost(client, host, fmt.Sprintf("load test %d/%d", id, n), tag)
		if err != nil {
			atomic.AddInt64(&metrics.RequestsFailed, 1)
			continue
		}
		if err := post(client, fmt.Sprintf("http://%s/api/posts/%d/comments", host, postID), map[string]any{
			"text": fmt.Sprintf("comment from writer %d", id),
		}, nil); err != nil {
			atomic.AddInt64(&metrics.RequestsFailed, 1)
		}
		if err := post(client, fmt.Sprintf("http://%s/api/posts/%d/likes", host, postID), nil, nil); err != nil {
			atomic.AddInt64(&metrics.RequestsFailed, 1)
		}
		search(client, host, "#"+tag)
	}
}

func createPost(client *http.Client, host, title, tag string) (uint, error) {
	var created struct {
		ID uint `json:"id"`
	}
	err := post(client, fmt.Sprintf("http://%s/api/posts", host), map[string]any{
		"title": title,
		"text":  "generated by the load test",
		"tags":  []string{tag},
	}, &created)
	return created.ID, err
}

func post(client *http.Client, target string, payload, out any) error {
	atomic.AddInt64(&metrics.Requests, 1)
	var body []byte
	if payload != nil {
		body, _ = json.Marshal(payload)
	}

	resp, err := client.Post(target, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed with status %d", target, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func search(client *http.Client, host, query string) {
	atomic.AddInt64(&metrics.Requests, 1)
	q := url.Values{"search": {query}, "pageSize": {"20"}}
	start := time.Now()
	resp, err := client.Get(fmt.Sprintf("http://%s/api/posts?%s", host, q.Encode()))
	if err != nil {
		atomic.AddInt64(&metrics.RequestsFailed, 1)
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		atomic.AddInt64(&metrics.RequestsFailed, 1)
		return
	}
	atomic.AddInt64(&metrics.Searches, 1)
	atomic.AddInt64(&metrics.SearchLatencySum, time.Since(start).Microseconds())
}

func printMetrics() {
	log.Println("Test Results")
	log.Println("============")
	log.Printf("Requests: %d", atomic.LoadInt64(&metrics.Requests))
	log.Printf("Requests Failed: %d", atomic.LoadInt64(&metrics.RequestsFailed))
	log.Printf("Listeners Open: %d", atomic.LoadInt64(&metrics.ListenersOpen))
	log.Printf("Listeners Failed: %d", atomic.LoadInt64(&metrics.ListenersFailed))
	log.Printf("Events Received: %d", atomic.LoadInt64(&metrics.EventsReceived))
	if n := atomic.LoadInt64(&metrics.Searches); n > 0 {
		avg := time.Duration(atomic.LoadInt64(&metrics.SearchLatencySum)/n) * time.Microsecond
		log.Printf("Average Search Latency: %v", avg)
	}
}
