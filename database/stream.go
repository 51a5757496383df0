package database

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// The Admin SDK has no subscription API, so Watch speaks the Realtime
// Database REST streaming protocol (text/event-stream with put/patch events)
// and reassembles the full value of the watched node locally, so callbacks
// always see one coherent snapshot per change.

const streamReconnectDelay = 2 * time.Second

func (c *FirebaseClient) Watch(ctx context.Context, path string, fn func(Snapshot)) (UnsubscribeFunc, error) {
	wctx, cancel := context.WithCancel(ctx)
	go c.stream(wctx, path, fn)
	return UnsubscribeFunc(cancel), nil
}

func (c *FirebaseClient) stream(ctx context.Context, path string, fn func(Snapshot)) {
	for {
		err := c.streamOnce(ctx, path, fn)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			zap.L().Warn("realtime stream dropped, reconnecting",
				zap.String("path", path), zap.Error(err))
		}
		select {
		case <-time.After(streamReconnectDelay):
		case <-ctx.Done():
			return
		}
	}
}

type streamEvent struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

func (c *FirebaseClient) streamOnce(ctx context.Context, path string, fn func(Snapshot)) error {
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("failed to mint stream token: %w", err)
	}

	url := fmt.Sprintf("%s/%s.json?access_token=%s",
		strings.TrimSuffix(c.databaseURL, "/"), strings.Trim(path, "/"), token.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream request rejected: %s", resp.Status)
	}

	var state any
	var event, data string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if event == "" {
				continue
			}
			done, err := c.dispatch(path, event, data, &state, fn)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			event, data = "", ""
		}
	}
	return scanner.Err()
}

// dispatch applies one protocol event to the local state and emits a snapshot.
func (c *FirebaseClient) dispatch(path, event, data string, state *any, fn func(Snapshot)) (bool, error) {
	switch event {
	case "put", "patch":
		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return false, fmt.Errorf("malformed stream event: %w", err)
		}
		var value any
		if len(ev.Data) > 0 {
			if err := json.Unmarshal(ev.Data, &value); err != nil {
				return false, fmt.Errorf("malformed stream payload: %w", err)
			}
		}
		*state = applyAt(*state, ev.Path, value, event == "patch")
		raw, err := json.Marshal(*state)
		if err != nil {
			return false, err
		}
		fn(Snapshot{Path: path, Data: raw})
		return false, nil
	case "keep-alive":
		return false, nil
	case "cancel", "auth_revoked":
		// Reconnect with a fresh token.
		return false, fmt.Errorf("stream terminated by server: %s", event)
	default:
		return false, nil
	}
}

// applyAt writes value at the relative path inside state, merging instead of
// replacing when patch is true. A nil value deletes the subtree.
func applyAt(state any, relPath string, value any, patch bool) any {
	segments := splitPath(relPath)
	if len(segments) == 0 {
		if patch {
			return mergeMaps(state, value)
		}
		return value
	}

	root, ok := state.(map[string]any)
	if !ok {
		root = make(map[string]any)
	}
	node := root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}

	leaf := segments[len(segments)-1]
	if patch {
		node[leaf] = mergeMaps(node[leaf], value)
	} else if value == nil {
		delete(node, leaf)
	} else {
		node[leaf] = value
	}
	return root
}

func mergeMaps(dst, src any) any {
	dstMap, dok := dst.(map[string]any)
	srcMap, sok := src.(map[string]any)
	if !dok || !sok {
		return src
	}
	for k, v := range srcMap {
		if v == nil {
			delete(dstMap, k)
			continue
		}
		dstMap[k] = v
	}
	return dstMap
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
