package reindeer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// wireReindeer uses pointers so absent and null keys can be told apart from zero values.
type wireReindeer struct {
	Name                  *string  `json:"name"`
	Strength              *uint32  `json:"strength"`
	Speed                 *float32 `json:"speed"`
	Height                *uint32  `json:"height"`
	AntlerWidth           *uint32  `json:"antler_width"`
	SnowMagicPower        *uint32  `json:"snow_magic_power"`
	FavoriteFood          *string  `json:"favorite_food"`
	CandiesEatenYesterday *uint32  `json:"cAnD13s_3ATeN-yesT3rdAy"`
}

// DecodeHerd parses a JSON array of reindeer. Every field is required.
// Syntax errors wrap ErrMalformed; shape and type errors wrap ErrInvalidHerd.
func DecodeHerd(data []byte) ([]Reindeer, error) {
	var wire []*wireReindeer
	if err := json.Unmarshal(data, &wire); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidHerd, err)
	}
	if wire == nil && bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("%w: expected an array, got null", ErrInvalidHerd)
	}
	if err := duplicateKey(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHerd, err)
	}

	herd := make([]Reindeer, 0, len(wire))
	for i, w := range wire {
		r, err := w.reindeer()
		if err != nil {
			return nil, fmt.Errorf("%w: reindeer %d: %w", ErrInvalidHerd, i, err)
		}
		herd = append(herd, r)
	}
	return herd, nil
}

func (w *wireReindeer) reindeer() (Reindeer, error) {
	if w == nil {
		return Reindeer{}, errors.New("expected an object, got null")
	}
	switch {
	case w.Name == nil:
		return Reindeer{}, missing("name")
	case w.Strength == nil:
		return Reindeer{}, missing("strength")
	case w.Speed == nil:
		return Reindeer{}, missing("speed")
	case w.Height == nil:
		return Reindeer{}, missing("height")
	case w.AntlerWidth == nil:
		return Reindeer{}, missing("antler_width")
	case w.SnowMagicPower == nil:
		return Reindeer{}, missing("snow_magic_power")
	case w.FavoriteFood == nil:
		return Reindeer{}, missing("favorite_food")
	case w.CandiesEatenYesterday == nil:
		return Reindeer{}, missing("cAnD13s_3ATeN-yesT3rdAy")
	}
	return Reindeer{
		Name:                  *w.Name,
		Strength:              *w.Strength,
		Speed:                 *w.Speed,
		Height:                *w.Height,
		AntlerWidth:           *w.AntlerWidth,
		SnowMagicPower:        *w.SnowMagicPower,
		FavoriteFood:          *w.FavoriteFood,
		CandiesEatenYesterday: *w.CandiesEatenYesterday,
	}, nil
}

func missing(field string) error {
	return fmt.Errorf("missing field %q", field)
}

// objectFrame tracks the keys seen in one JSON object.
type objectFrame struct {
	object  bool
	wantKey bool
	keys    map[string]struct{}
}

// duplicateKey reports the first object holding the same key twice. Keys are
// compared case-insensitively, as encoding/json matches them to fields that way.
// data must already be valid JSON.
func duplicateKey(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	var stack []*objectFrame

	valueDone := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].wantKey = true
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				stack = append(stack, &objectFrame{object: true, wantKey: true, keys: make(map[string]struct{})})
			case '[':
				stack = append(stack, &objectFrame{})
			default:
				stack = stack[:len(stack)-1]
				valueDone()
			}
			continue
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].wantKey {
				top := stack[n-1]
				key := strings.ToLower(t)
				if _, dup := top.keys[key]; dup {
					return fmt.Errorf("duplicate field %q", t)
				}
				top.keys[key] = struct{}{}
				top.wantKey = false
				continue
			}
		}
		valueDone()
	}
}
