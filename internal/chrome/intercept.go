package chrome

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/gustavo-meilus/flowgate/internal/archive"
)

// enableRecording pauses every response of the tab at the fetch domain,
// stores it in the archive, and lets it through. Capture failures never
// block the page: the pause is always released.
func enableRecording(tabCtx context.Context, arch *archive.Archive, session string, log *slog.Logger) error {
	c := chromedp.FromContext(tabCtx)

	chromedp.ListenTarget(tabCtx, func(ev any) {
		pause, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		// Handlers run on the target's event loop; commands issued
		// from it must move to a goroutine or the tab deadlocks.
		go func() {
			ectx := cdp.WithExecutor(tabCtx, c.Target)

			if pause.ResponseErrorReason != "" {
				if err := fetch.FailRequest(pause.RequestID, pause.ResponseErrorReason).Do(ectx); err != nil {
					log.Debug("fail request", "url", pause.Request.URL, "error", err)
				}
				return
			}

			defer func() {
				if err := fetch.ContinueResponse(pause.RequestID).Do(ectx); err != nil {
					log.Debug("continue response", "url", pause.Request.URL, "error", err)
				}
			}()

			status := int(pause.ResponseStatusCode)

			// Redirect responses carry no retrievable body; their
			// Location header is what matters on replay.
			var body []byte
			if status < 300 || status >= 400 {
				b, err := fetch.GetResponseBody(pause.RequestID).Do(ectx)
				if err != nil {
					log.Warn("read response body",
						"method", pause.Request.Method,
						"url", pause.Request.URL,
						"error", err)
				} else {
					body = b
				}
			}

			reqBody := requestBody(pause.Request)
			ex := archive.Exchange{
				Session:     session,
				Method:      pause.Request.Method,
				URL:         pause.Request.URL,
				RequestHash: archive.RequestHash(pause.Request.Method, pause.Request.URL, reqBody),
				Status:      status,
				Header:      headerFromEntries(pause.ResponseHeaders),
				Body:        body,
			}

			// The tab may be tearing down while late captures land, so
			// the write is not bound to its context.
			seq, err := arch.Record(context.Background(), ex)
			if err != nil {
				log.Error("record exchange",
					"method", ex.Method,
					"url", ex.URL,
					"error", err)
				return
			}
			log.Debug("recorded exchange",
				"method", ex.Method,
				"url", ex.URL,
				"status", ex.Status,
				"seq", seq)
		}()
	})

	return chromedp.Run(tabCtx,
		fetch.Enable().WithPatterns(interceptPatterns(fetch.RequestStageResponse)))
}

// enableReplay pauses every request of the tab before it leaves the
// browser and answers it from the archive. Requests with no recorded
// exchange pass through to the network.
func enableReplay(tabCtx context.Context, arch *archive.Archive, session string, log *slog.Logger) error {
	c := chromedp.FromContext(tabCtx)

	chromedp.ListenTarget(tabCtx, func(ev any) {
		pause, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			ectx := cdp.WithExecutor(tabCtx, c.Target)

			method := pause.Request.Method
			url := pause.Request.URL
			hash := archive.RequestHash(method, url, requestBody(pause.Request))

			ex, found, err := arch.Lookup(context.Background(), session, method, url, hash)
			if err != nil || !found {
				if err != nil {
					log.Error("archive lookup", "method", method, "url", url, "error", err)
				} else {
					log.Warn("no recorded exchange, passing through", "method", method, "url", url)
				}
				if cerr := fetch.ContinueRequest(pause.RequestID).Do(ectx); cerr != nil {
					log.Debug("continue request", "url", url, "error", cerr)
				}
				return
			}

			fulfill := fetch.FulfillRequest(pause.RequestID, int64(ex.Status)).
				WithResponseHeaders(entriesFromHeader(ex.Header)).
				WithBody(base64.StdEncoding.EncodeToString(ex.Body))
			if err := fulfill.Do(ectx); err != nil {
				log.Debug("fulfill request", "url", url, "error", err)
				return
			}
			log.Debug("replayed exchange",
				"method", method,
				"url", url,
				"status", ex.Status,
				"seq", ex.Seq)
		}()
	})

	return chromedp.Run(tabCtx,
		fetch.Enable().WithPatterns(interceptPatterns(fetch.RequestStageRequest)))
}

func interceptPatterns(stage fetch.RequestStage) []*fetch.RequestPattern {
	return []*fetch.RequestPattern{{URLPattern: "*", RequestStage: stage}}
}

// requestBody reassembles the outgoing request body. Entry bytes travel
// base64-encoded over the protocol.
func requestBody(req *network.Request) []byte {
	if len(req.PostDataEntries) == 0 {
		return nil
	}
	var body []byte
	for _, entry := range req.PostDataEntries {
		if entry == nil || entry.Bytes == "" {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(entry.Bytes)
		if err != nil {
			body = append(body, entry.Bytes...)
			continue
		}
		body = append(body, raw...)
	}
	return body
}

// replaySkipHeaders are dropped when serving archived responses: bodies
// are stored decoded, so the recorded encoding and length no longer
// describe what goes over the wire.
var replaySkipHeaders = map[string]bool{
	"content-encoding":  true,
	"content-length":    true,
	"transfer-encoding": true,
}

func headerFromEntries(entries []*fetch.HeaderEntry) http.Header {
	h := http.Header{}
	for _, e := range entries {
		if e == nil {
			continue
		}
		h.Add(e.Name, e.Value)
	}
	return h
}

// entriesFromHeader flattens an http.Header into protocol header
// entries, sorted for deterministic fulfillment.
func entriesFromHeader(h http.Header) []*fetch.HeaderEntry {
	entries := make([]*fetch.HeaderEntry, 0, len(h))
	for name, values := range h {
		if replaySkipHeaders[strings.ToLower(name)] {
			continue
		}
		for _, v := range values {
			entries = append(entries, &fetch.HeaderEntry{Name: name, Value: v})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Value < entries[j].Value
	})
	return entries
}
