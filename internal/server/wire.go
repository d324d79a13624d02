package server

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/dispatch"
	"github.com/roach88/nestedjson/internal/doc"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

// ErrBadFrame is returned for a frame that is not a request envelope.
var ErrBadFrame = errors.New("malformed request frame")

// DecodeRequest reads one request envelope:
//
//	{"operation": "...", "correlationId": "...", "payload": {...}}
//
// The frame is parsed with codec.Parse so documents inside the payload keep
// their key order. On error the returned request still carries whatever
// operation and correlation id could be read, so the reply can be matched.
func DecodeRequest(frame []byte, opts ...codec.Option) (dispatch.Request, error) {
	var req dispatch.Request

	root, err := codec.ParseBytes(frame, opts...)
	if err != nil {
		return req, err
	}
	env, ok := root.(*doc.Mapping)
	if !ok {
		return req, fmt.Errorf("%w: envelope must be an object", ErrBadFrame)
	}

	req.CorrelationID, err = optString(env, "correlationId")
	if err != nil {
		return req, err
	}
	op, err := requireString(env, "operation")
	if err != nil {
		return req, err
	}
	req.Operation = dispatch.Operation(op)
	if req.CorrelationID == "" {
		return req, fmt.Errorf("%w: correlationId is required", ErrBadFrame)
	}

	payload := doc.EmptyMapping()
	if v, ok := env.Get("payload"); ok {
		m, isMap := v.(*doc.Mapping)
		if !isMap {
			return req, fmt.Errorf("%w: payload must be an object", ErrBadFrame)
		}
		payload = m
	}

	req.Payload, err = decodePayload(req.Operation, payload)
	return req, err
}

func decodePayload(op dispatch.Operation, p *doc.Mapping) (any, error) {
	switch op {
	case dispatch.OpParse:
		text, err := requireString(p, "text")
		if err != nil {
			return nil, err
		}
		return dispatch.ParsePayload{Text: text}, nil

	case dispatch.OpFlatten:
		root, err := requireNode(p, "root")
		if err != nil {
			return nil, err
		}
		return dispatch.FlattenPayload{Root: root}, nil

	case dispatch.OpDiff, dispatch.OpAnalyze:
		baseline, err := requireNode(p, "baseline")
		if err != nil {
			return nil, err
		}
		current, err := requireNode(p, "current")
		if err != nil {
			return nil, err
		}
		if op == dispatch.OpDiff {
			return dispatch.DiffPayload{Baseline: baseline, Current: current}, nil
		}
		return dispatch.AnalyzePayload{Baseline: baseline, Current: current}, nil

	case dispatch.OpAddOrUpdate:
		root, err := requireNode(p, "root")
		if err != nil {
			return nil, err
		}
		segs, err := segments(p)
		if err != nil {
			return nil, err
		}
		value, err := requireNode(p, "value")
		if err != nil {
			return nil, err
		}
		overwrite, err := optBool(p, "allowOverwrite")
		if err != nil {
			return nil, err
		}
		return dispatch.AddOrUpdatePayload{
			Root:           root,
			Segments:       segs,
			Value:          value,
			AllowOverwrite: overwrite,
		}, nil

	case dispatch.OpSerialize:
		root, err := requireNode(p, "root")
		if err != nil {
			return nil, err
		}
		indent := codec.DefaultIndent
		if v, ok := p.Get("indent"); ok {
			n, isNum := v.(doc.Number)
			if !isNum {
				return nil, fmt.Errorf("%w: indent must be a number", ErrBadFrame)
			}
			indent, err = strconv.Atoi(string(n))
			if err != nil {
				return nil, fmt.Errorf("%w: indent must be an integer", ErrBadFrame)
			}
		}
		return dispatch.SerializePayload{Root: root, Indent: indent}, nil

	case dispatch.OpPeek:
		text, err := requireString(p, "text")
		if err != nil {
			return nil, err
		}
		segs, err := segments(p)
		if err != nil {
			return nil, err
		}
		return dispatch.PeekPayload{Text: text, Segments: segs}, nil
	}
	return nil, fmt.Errorf("%w: %q", dispatch.ErrUnknownOperation, op)
}

// segments reads "segments" (an array of strings) or, failing that, "path"
// in any notation.
func segments(p *doc.Mapping) ([]string, error) {
	if v, ok := p.Get("segments"); ok {
		seq, isSeq := v.(doc.Sequence)
		if !isSeq {
			return nil, fmt.Errorf("%w: segments must be an array of strings", ErrBadFrame)
		}
		out := make([]string, len(seq))
		for i, s := range seq {
			str, isStr := s.(doc.String)
			if !isStr {
				return nil, fmt.Errorf("%w: segments[%d] must be a string", ErrBadFrame, i)
			}
			out[i] = string(str)
		}
		return out, nil
	}
	path, err := requireString(p, "path")
	if err != nil {
		return nil, err
	}
	return pathfmt.ParseAuto(path)
}

func requireNode(m *doc.Mapping, key string) (doc.Node, error) {
	v, ok := m.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s is required", ErrBadFrame, key)
	}
	return v, nil
}

func requireString(m *doc.Mapping, key string) (string, error) {
	v, ok := m.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %s is required", ErrBadFrame, key)
	}
	s, isStr := v.(doc.String)
	if !isStr {
		return "", fmt.Errorf("%w: %s must be a string", ErrBadFrame, key)
	}
	return string(s), nil
}

func optString(m *doc.Mapping, key string) (string, error) {
	if !m.Has(key) {
		return "", nil
	}
	return requireString(m, key)
}

func optBool(m *doc.Mapping, key string) (bool, error) {
	v, ok := m.Get(key)
	if !ok {
		return false, nil
	}
	b, isBool := v.(doc.Bool)
	if !isBool {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrBadFrame, key)
	}
	return bool(b), nil
}
