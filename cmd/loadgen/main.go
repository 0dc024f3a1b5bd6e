// loadgen hammers an httpserver's /echo/:value route from many goroutines and
// checks that every client gets its own value back.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shravanasati/waypoint/internal/logging"
	"github.com/valyala/fasthttp"
)

func main() {
	target := flag.String("target", "http://127.0.0.1:4221", "base URL of the server")
	clients := flag.Int("clients", 64, "number of concurrent clients")
	requests := flag.Int("requests", 100, "requests per client")
	timeout := flag.Duration("timeout", 5*time.Second, "per request timeout")
	flag.Parse()

	logger := logging.New(logging.Options{Color: true})

	client := &fasthttp.Client{
		MaxConnsPerHost: *clients,
		ReadTimeout:     *timeout,
		WriteTimeout:    *timeout,
	}

	var ok, mismatched, failed atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()

	for c := range *clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range *requests {
				want := fmt.Sprintf("client-%d/req-%d", c, i)

				req := fasthttp.AcquireRequest()
				resp := fasthttp.AcquireResponse()
				req.SetRequestURI(*target + "/echo/" + want)
				// the server closes after every response
				req.SetConnectionClose()

				err := client.DoTimeout(req, resp, *timeout)
				switch {
				case err != nil:
					failed.Add(1)
					logger.Debug().Err(err).Str("want", want).Msg("request failed")
				case resp.StatusCode() != fasthttp.StatusOK || string(resp.Body()) != want:
					mismatched.Add(1)
					logger.Warn().Int("status", resp.StatusCode()).Str("want", want).Str("got", string(resp.Body())).Msg("unexpected response")
				default:
					ok.Add(1)
				}

				fasthttp.ReleaseRequest(req)
				fasthttp.ReleaseResponse(resp)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := ok.Load() + mismatched.Load() + failed.Load()
	logger.Info().
		Int64("ok", ok.Load()).
		Int64("mismatched", mismatched.Load()).
		Int64("failed", failed.Load()).
		Dur("elapsed", elapsed).
		Float64("req_per_sec", float64(total)/elapsed.Seconds()).
		Msg("load test finished")

	if mismatched.Load() > 0 || failed.Load() > 0 {
		os.Exit(1)
	}
}
