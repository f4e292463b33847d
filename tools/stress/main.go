// Command stress load-tests a running bridge server over framed TCP.
// Each worker keeps one connection, builds one schema from the
// pre-registered field proxies, and hammers lookups against it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arrowmex/arrowmex-bridge/network"
)

// StressConfig holds configuration for the stress run.
type StressConfig struct {
	Address     string
	Concurrency int
	Duration    time.Duration
	FieldIDs    []uint64
	AuthToken   string
	ReportFile  string
}

// StressResult holds the aggregated results.
type StressResult struct {
	TotalRequests  int64
	SuccessfulReqs int64
	FailedReqs     int64
	TotalDuration  time.Duration
	AvgLatency     time.Duration
	RequestsPerSec float64
}

func main() {
	config := parseFlags()

	fmt.Println("=== ArrowMex Bridge Stress Test ===")
	fmt.Printf("Target: %s\n", config.Address)
	fmt.Printf("Concurrency: %d workers\n", config.Concurrency)
	fmt.Printf("Duration: %v\n", config.Duration)
	fmt.Println()

	result := runStress(config)

	printResults(result)

	if config.ReportFile != "" {
		saveReport(config, result)
	}
}

func parseFlags() StressConfig {
	config := StressConfig{}

	var fieldCount int
	flag.StringVar(&config.Address, "addr", "127.0.0.1:50052", "Bridge server address")
	flag.IntVar(&config.Concurrency, "c", 10, "Number of concurrent workers")
	flag.DurationVar(&config.Duration, "d", 30*time.Second, "Duration of test")
	flag.IntVar(&fieldCount, "fields", 3, "Number of pre-registered field proxies (ids 1..n)")
	flag.StringVar(&config.AuthToken, "token", "", "Authentication token")
	flag.StringVar(&config.ReportFile, "o", "", "Output report file (JSON)")

	flag.Parse()

	for id := uint64(1); id <= uint64(fieldCount); id++ {
		config.FieldIDs = append(config.FieldIDs, id)
	}

	return config
}

func runStress(config StressConfig) StressResult {
	var (
		totalReqs    int64
		successReqs  int64
		failedReqs   int64
		totalLatency int64
		wg           sync.WaitGroup
		stopChan     = make(chan struct{})
	)

	startTime := time.Now()

	for i := 0; i < config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runWorker(config, stopChan, &totalReqs, &successReqs, &failedReqs, &totalLatency)
		}()
	}

	time.Sleep(config.Duration)
	close(stopChan)
	wg.Wait()

	duration := time.Since(startTime)
	total := atomic.LoadInt64(&totalReqs)
	success := atomic.LoadInt64(&successReqs)

	var avgLatency time.Duration
	if success > 0 {
		avgLatency = time.Duration(atomic.LoadInt64(&totalLatency) / success)
	}

	return StressResult{
		TotalRequests:  total,
		SuccessfulReqs: success,
		FailedReqs:     atomic.LoadInt64(&failedReqs),
		TotalDuration:  duration,
		AvgLatency:     avgLatency,
		RequestsPerSec: float64(total) / duration.Seconds(),
	}
}

func runWorker(config StressConfig, stop chan struct{}, totalReqs, successReqs, failedReqs, totalLatency *int64) {
	conn, err := net.DialTimeout("tcp", config.Address, 5*time.Second)
	if err != nil {
		log.Printf("Worker failed to connect: %v", err)
		return
	}
	defer conn.Close()

	schemaID, err := makeSchema(conn, config)
	if err != nil {
		log.Printf("Worker failed to build schema: %v", err)
		return
	}

	n := int32(len(config.FieldIDs))
	index := int32(1)

	for {
		select {
		case <-stop:
			return
		default:
			req := network.Request{
				ProxyID: schemaID,
				Method:  "getFieldByIndex",
				Token:   config.AuthToken,
				Args: map[string]network.Value{
					"Index": {Type: network.TypeInt32, Int32s: []int32{index}},
				},
			}
			if n > 0 {
				index = index%n + 1
			}

			start := time.Now()
			resp, err := call(conn, req)
			latency := time.Since(start)

			atomic.AddInt64(totalReqs, 1)
			if err != nil || resp.ErrorID != "" {
				atomic.AddInt64(failedReqs, 1)
				if err != nil {
					return
				}
			} else {
				atomic.AddInt64(successReqs, 1)
				atomic.AddInt64(totalLatency, int64(latency))
			}
		}
	}
}

func makeSchema(conn net.Conn, config StressConfig) (uint64, error) {
	resp, err := call(conn, network.Request{
		Method: network.MakeMethod,
		Token:  config.AuthToken,
		Args: map[string]network.Value{
			"FieldProxyIDs": {Type: network.TypeUint64, Uint64s: config.FieldIDs},
		},
	})
	if err != nil {
		return 0, err
	}
	if resp.ErrorID != "" {
		return 0, fmt.Errorf("%s: %s", resp.ErrorID, resp.Message)
	}
	return resp.ProxyID, nil
}

func call(conn net.Conn, req network.Request) (network.Response, error) {
	var resp network.Response

	data, err := json.Marshal(req)
	if err != nil {
		return resp, err
	}

	if err := conn.SetDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return resp, err
	}
	if err := network.WriteFrame(conn, data); err != nil {
		return resp, err
	}

	raw, err := network.ReadFrame(conn)
	if err != nil {
		return resp, err
	}
	return resp, json.Unmarshal(raw, &resp)
}

func printResults(result StressResult) {
	fmt.Println("=== Results ===")
	fmt.Printf("Duration:        %v\n", result.TotalDuration.Round(time.Millisecond))
	fmt.Printf("Total Requests:  %d\n", result.TotalRequests)
	fmt.Printf("Successful:      %d\n", result.SuccessfulReqs)
	fmt.Printf("Failed:          %d\n", result.FailedReqs)
	fmt.Printf("Requests/sec:    %.2f\n", result.RequestsPerSec)
	fmt.Printf("Avg Latency:     %v\n", result.AvgLatency.Round(time.Microsecond))
}

func saveReport(config StressConfig, result StressResult) {
	report := map[string]interface{}{
		"config": map[string]interface{}{
			"address":     config.Address,
			"concurrency": config.Concurrency,
			"duration":    config.Duration.String(),
		},
		"results": map[string]interface{}{
			"total_requests":   result.TotalRequests,
			"successful":       result.SuccessfulReqs,
			"failed":           result.FailedReqs,
			"requests_per_sec": result.RequestsPerSec,
			"avg_latency_ms":   float64(result.AvgLatency.Microseconds()) / 1000,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	}

	data, _ := json.MarshalIndent(report, "", "  ")
	if err := os.WriteFile(config.ReportFile, data, 0o644); err != nil {
		log.Printf("Failed to write report: %v", err)
	} else {
		fmt.Printf("Report saved to: %s\n", config.ReportFile)
	}
}
