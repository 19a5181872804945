package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/mitchellh/mapstructure"

	"lunargen/core"
)

// decodeParams overlays fields onto base. Input is weakly typed so values
// typed into forms ("0.5", "42") decode into their numeric fields, and
// unknown fields are rejected.
func decodeParams(base core.GenerationParams, fields map[string]any) (core.GenerationParams, error) {
	params := base
	if base.Seed != nil {
		seed := *base.Seed
		params.Seed = &seed
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &params,
	})
	if err != nil {
		return base, err
	}
	if err := decoder.Decode(fields); err != nil {
		return base, fmt.Errorf("%w: %w", core.ErrInvalidParameter, err)
	}
	return params, nil
}

// readJSONFields decodes a JSON object keeping numbers exact, so 64-bit
// seeds survive.
func readJSONFields(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		if err == io.EOF {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidParameter, err)
	}
	return fields, nil
}

// queryFields turns URL query values into decodable fields
func queryFields(values url.Values) map[string]any {
	fields := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}

// clientMessage is what websocket clients send
type clientMessage struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

func parseClientMessage(data []byte) (clientMessage, error) {
	var msg clientMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&msg); err != nil {
		return msg, fmt.Errorf("%w: %w", core.ErrInvalidParameter, err)
	}
	return msg, nil
}
