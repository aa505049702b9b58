package ragflow

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
)

// maxEventSize bounds a single SSE line. Answers accumulate inside one
// event, so lines grow with the full answer text.
const maxEventSize = 4 << 20 // 4 MiB

// dataPrefix starts every SSE payload line.
var dataPrefix = []byte("data:")

// Ask sends a question to a session and returns the streamed answer as a
// fragment sequence. Each fragment carries the full answer generated so
// far; the final fragment usually also carries the citation references.
//
// The sequence ends when the server sends its completion sentinel, the
// context is canceled, or an error is yielded. Iteration stops cleanly if
// the consumer breaks early.
func (c *Client) Ask(ctx context.Context, chatID, sessionID, question string) iter.Seq2[Fragment, error] {
	return func(yield func(Fragment, error) bool) {
		if err := c.limiter.Wait(ctx); err != nil {
			yield(Fragment{}, err)
			return
		}

		body, err := json.Marshal(completionRequest{
			Question:  question,
			Stream:    true,
			SessionID: sessionID,
		})
		if err != nil {
			yield(Fragment{}, fmt.Errorf("marshaling completion request: %w", err))
			return
		}

		url := fmt.Sprintf("%s%s/chats/%s/completions", c.baseURL, apiBase, chatID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			yield(Fragment{}, fmt.Errorf("creating completion request: %w", err))
			return
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")

		resp, err := c.streamClient.Do(req)
		if err != nil {
			yield(Fragment{}, fmt.Errorf("%w: %v", ErrUnreachable, err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			yield(Fragment{}, ErrUnauthorized)
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			yield(Fragment{}, fmt.Errorf("ragflow completion error (status %d): %s", resp.StatusCode, msg))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64<<10), maxEventSize)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if !bytes.HasPrefix(line, dataPrefix) {
				continue // comments, blank keep-alive lines
			}
			payload := bytes.TrimSpace(line[len(dataPrefix):])
			if len(payload) == 0 {
				continue
			}

			var env envelope
			if err := json.Unmarshal(payload, &env); err != nil {
				yield(Fragment{}, fmt.Errorf("malformed stream event: %w", err))
				return
			}
			if env.Code != 0 {
				yield(Fragment{}, fmt.Errorf("ragflow completion failed (code %d): %s", env.Code, env.Message))
				return
			}

			// The terminal event carries data:true instead of a snapshot.
			if bytes.Equal(bytes.TrimSpace(env.Data), []byte("true")) {
				return
			}

			var data completionData
			if err := json.Unmarshal(env.Data, &data); err != nil {
				yield(Fragment{}, fmt.Errorf("malformed completion snapshot: %w", err))
				return
			}

			frag := Fragment{
				Answer:     data.Answer,
				References: parseReferences(data.Reference),
			}
			if !yield(frag, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			// Context cancellation surfaces here as a read error.
			if ctx.Err() != nil {
				yield(Fragment{}, ctx.Err())
				return
			}
			yield(Fragment{}, fmt.Errorf("%w: reading stream: %v", ErrUnreachable, err))
		}
	}
}
